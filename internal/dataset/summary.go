package dataset

import (
	"fmt"
	"strings"
)

// Summary holds descriptive statistics for a generated dataset.
type Summary struct {
	// Rows is the number of data rows (header excluded)
	Rows int `json:"rows"`

	MeanProductiveSeconds float64 `json:"mean_productive_seconds"`
	MeanTaskScore         float64 `json:"mean_task_score"`
	MeanFocusIndex        float64 `json:"mean_focus_index"`
	MeanSelfReport        float64 `json:"mean_self_report_productivity"`

	// MinSelfReport and MaxSelfReport are zero for an empty dataset
	MinSelfReport float64 `json:"min_self_report_productivity"`
	MaxSelfReport float64 `json:"max_self_report_productivity"`

	// ZeroTaskRows counts rows whose Poisson draw was zero
	ZeroTaskRows int `json:"zero_task_rows"`

	// ClippedLow and ClippedHigh count labels pinned at ScoreMin and ScoreMax
	ClippedLow  int `json:"clipped_low"`
	ClippedHigh int `json:"clipped_high"`

	// ActivityCounts is keyed by activity name
	ActivityCounts map[Activity]int `json:"activity_counts"`
}

// Summarize computes a Summary over rows.
func Summarize(rows []Row) Summary {
	s := Summary{
		Rows:           len(rows),
		ActivityCounts: make(map[Activity]int, len(Activities)),
	}
	if len(rows) == 0 {
		return s
	}

	var sumP, sumT, sumF, sumY float64
	s.MinSelfReport = rows[0].SelfReportProductivity
	s.MaxSelfReport = rows[0].SelfReportProductivity

	for _, r := range rows {
		sumP += float64(r.ProductiveSeconds)
		sumT += r.TaskScore
		sumF += r.FocusIndex
		sumY += r.SelfReportProductivity

		s.MinSelfReport = min(s.MinSelfReport, r.SelfReportProductivity)
		s.MaxSelfReport = max(s.MaxSelfReport, r.SelfReportProductivity)

		if r.NumTasks == 0 {
			s.ZeroTaskRows++
		}
		switch r.SelfReportProductivity {
		case ScoreMin:
			s.ClippedLow++
		case ScoreMax:
			s.ClippedHigh++
		}
		if r.Activity != "" {
			s.ActivityCounts[r.Activity]++
		}
	}

	n := float64(len(rows))
	s.MeanProductiveSeconds = sumP / n
	s.MeanTaskScore = sumT / n
	s.MeanFocusIndex = sumF / n
	s.MeanSelfReport = sumY / n
	return s
}

// Markdown renders the summary as a Markdown report.
func (s Summary) Markdown() string {
	var b strings.Builder

	b.WriteString("## Dataset summary\n\n")
	fmt.Fprintf(&b, "%d rows.\n\n", s.Rows)

	b.WriteString("| Column | Mean |\n|---|---|\n")
	fmt.Fprintf(&b, "| productive_seconds | %.1f |\n", s.MeanProductiveSeconds)
	fmt.Fprintf(&b, "| task_score | %.3f |\n", s.MeanTaskScore)
	fmt.Fprintf(&b, "| focus_index | %.4f |\n", s.MeanFocusIndex)
	fmt.Fprintf(&b, "| self_report_productivity | %.2f |\n\n", s.MeanSelfReport)

	b.WriteString("## Label\n\n")
	fmt.Fprintf(&b, "- range: %.2f to %.2f\n", s.MinSelfReport, s.MaxSelfReport)
	fmt.Fprintf(&b, "- clipped at %.0f: %d\n", ScoreMin, s.ClippedLow)
	fmt.Fprintf(&b, "- clipped at %.0f: %d\n", ScoreMax, s.ClippedHigh)
	fmt.Fprintf(&b, "- rows without tasks: %d\n\n", s.ZeroTaskRows)

	b.WriteString("## Dominant activity\n\n")
	b.WriteString("| Activity | Rows |\n|---|---|\n")
	for _, a := range Activities {
		fmt.Fprintf(&b, "| %s | %d |\n", a, s.ActivityCounts[a])
	}

	return b.String()
}
