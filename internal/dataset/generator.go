package dataset

import (
	"context"
	"math"
)

// Options configures a Generator.
type Options struct {
	Users int
	Seed  uint64
}

// Generator produces independent rows from a seeded Sampler.
// It is not safe for concurrent use.
type Generator struct {
	sampler *Sampler
	users   []string
}

// NewGenerator returns a Generator for opts. A non-positive Users falls back
// to DefaultUsers.
func NewGenerator(opts Options) *Generator {
	n := opts.Users
	if n <= 0 {
		n = DefaultUsers
	}
	users := make([]string, n)
	for i := range users {
		users[i] = UserLabel(i)
	}
	return &Generator{
		sampler: NewSampler(opts.Seed),
		users:   users,
	}
}

// Next samples one row. Draw order: user, activity, productive time,
// overhead, task count, task kinds, jitter, noise.
func (g *Generator) Next() Row {
	s := g.sampler

	user := g.users[s.Index(len(g.users))]
	activity := Activities[s.Index(len(Activities))]

	base := activity.BaseSeconds()
	productive := int(math.Max(0, s.Normal(base, base*productiveStdFraction)))
	duration := productive + s.IntRange(overheadMinSeconds, overheadMaxSeconds)
	focus := float64(productive) / float64(duration)

	numTasks := s.Poisson(activity.TaskRate())
	taskScore := 0.0
	for i := 0; i < numTasks; i++ {
		taskScore += float64(TaskKinds[s.Index(len(TaskKinds))].Weight)
	}

	jitter := s.Float64()
	noise := s.Normal(0, noiseStd)

	return Row{
		ProductiveSeconds:      productive,
		TaskScore:              taskScore,
		FocusIndex:             focus,
		SelfReportProductivity: SelfReport(productive, taskScore, focus, jitter, noise),
		User:                   user,
		Activity:               activity,
		DurationSeconds:        duration,
		NumTasks:               numTasks,
	}
}

// Generate samples n rows, checking ctx between rows.
func (g *Generator) Generate(ctx context.Context, n int) ([]Row, error) {
	rows := make([]Row, 0, max(n, 0))
	for i := 0; i < n; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rows = append(rows, g.Next())
	}
	return rows, nil
}

// RawScore is the weighted blend of the three features and a uniform jitter.
func RawScore(productiveSeconds int, taskScore, focusIndex, jitter float64) float64 {
	return weightProductive*(float64(productiveSeconds)/secondsPerHour) +
		weightTasks*(taskScore/taskScoreScale) +
		weightFocus*focusIndex +
		weightJitter*jitter
}

// SelfReport normalizes the raw score to a percentage of RawMax, adds noise
// and clips to [ScoreMin, ScoreMax].
func SelfReport(productiveSeconds int, taskScore, focusIndex, jitter, noise float64) float64 {
	raw := RawScore(productiveSeconds, taskScore, focusIndex, jitter)
	return Clip(raw/RawMax*100+noise, ScoreMin, ScoreMax)
}

// Clip bounds v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
