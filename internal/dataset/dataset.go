// Package dataset synthesizes student productivity sessions and encodes them
// as a four-column CSV.
package dataset

import "fmt"

// Defaults for a generation run.
const (
	DefaultRows     = 1000
	DefaultUsers    = 120
	DefaultSeed     = 42
	DefaultFileName = "productivity_P_T_F_y_1000.csv"

	// MaxRows bounds a single run; rows are buffered in memory.
	MaxRows = 1_000_000
)

// Scoring constants.
const (
	productiveStdFraction = 0.3
	overheadMinSeconds    = 300
	overheadMaxSeconds    = 1800 // exclusive

	weightProductive = 0.4
	weightTasks      = 0.3
	weightFocus      = 0.2
	weightJitter     = 0.1

	// RawMax is the theoretical ceiling of the weighted score:
	// 0.4*3 + 0.3*3 + 0.2*1 + 0.1*1 = 2.4.
	RawMax = weightProductive*3 + weightTasks*3 + weightFocus*1 + weightJitter*1

	noiseStd       = 5.0
	ScoreMin       = 0.0
	ScoreMax       = 100.0
	secondsPerHour = 3600.0
	taskScoreScale = 10.0
)

// Activity is the dominant activity of a session.
type Activity string

const (
	Reading        Activity = "reading"
	NoteTaking     Activity = "note_taking"
	ProblemSolving Activity = "problem_solving"
	Coding         Activity = "coding"
	Research       Activity = "research"
	TaskManagement Activity = "task_management"
	VideoLecture   Activity = "video_lecture"
	Forum          Activity = "forum"
	Mixed          Activity = "mixed"
)

// Activities lists every activity in sampling order.
var Activities = []Activity{
	Reading, NoteTaking, ProblemSolving, Coding, Research,
	TaskManagement, VideoLecture, Forum, Mixed,
}

var baseSeconds = map[Activity]float64{
	Reading:        1200,
	NoteTaking:     1500,
	ProblemSolving: 3000,
	Coding:         3200,
	Research:       1800,
	TaskManagement: 900,
	VideoLecture:   1600,
	Forum:          600,
	Mixed:          1400,
}

// BaseSeconds returns the mean productive duration for an activity.
func (a Activity) BaseSeconds() float64 {
	return baseSeconds[a]
}

// TaskRate returns the Poisson rate of completed tasks for an activity.
func (a Activity) TaskRate() float64 {
	switch a {
	case TaskManagement:
		return 2.0
	case ProblemSolving, Coding:
		return 1.5
	default:
		return 0.6
	}
}

// TaskKind is a type of completed task.
type TaskKind struct {
	Name   string
	Weight int
}

// TaskKinds lists the task kinds in sampling order.
var TaskKinds = []TaskKind{
	{Name: "midterm", Weight: 5},
	{Name: "project", Weight: 4},
	{Name: "homework", Weight: 2},
	{Name: "tiny", Weight: 1},
}

// Columns is the CSV header, in field order.
var Columns = []string{
	"productive_seconds",
	"task_score",
	"focus_index",
	"self_report_productivity",
}

// Row is one synthesized session. Only the four Columns fields are written;
// User, Activity, DurationSeconds and NumTasks stay in memory.
type Row struct {
	ProductiveSeconds      int
	TaskScore              float64
	FocusIndex             float64
	SelfReportProductivity float64

	User            string
	Activity        Activity
	DurationSeconds int
	NumTasks        int
}

// UserLabel formats the i-th user of the pool.
func UserLabel(i int) string {
	return fmt.Sprintf("user_%03d", i)
}
