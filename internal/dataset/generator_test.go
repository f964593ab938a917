package dataset

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, seed uint64, n int) []Row {
	t.Helper()
	rows, err := NewGenerator(Options{Users: DefaultUsers, Seed: seed}).Generate(context.Background(), n)
	require.NoError(t, err)
	require.Len(t, rows, n)
	return rows
}

// reachableTaskScores returns every sum of exactly k task weights.
func reachableTaskScores(k int) map[int]bool {
	sums := map[int]bool{0: true}
	for i := 0; i < k; i++ {
		next := make(map[int]bool)
		for s := range sums {
			for _, kind := range TaskKinds {
				next[s+kind.Weight] = true
			}
		}
		sums = next
	}
	return sums
}

func TestGenerate_RowInvariants(t *testing.T) {
	rows := generate(t, DefaultSeed, DefaultRows)

	for i, r := range rows {
		assert.GreaterOrEqual(t, r.SelfReportProductivity, ScoreMin, "row %d label below range", i)
		assert.LessOrEqual(t, r.SelfReportProductivity, ScoreMax, "row %d label above range", i)

		assert.GreaterOrEqual(t, r.ProductiveSeconds, 0, "row %d", i)
		assert.Greater(t, r.DurationSeconds, r.ProductiveSeconds, "row %d", i)
		overhead := r.DurationSeconds - r.ProductiveSeconds
		assert.GreaterOrEqual(t, overhead, overheadMinSeconds, "row %d overhead", i)
		assert.Less(t, overhead, overheadMaxSeconds, "row %d overhead", i)

		assert.GreaterOrEqual(t, r.FocusIndex, 0.0, "row %d", i)
		assert.Less(t, r.FocusIndex, 1.0, "row %d", i)
		assert.InDelta(t, float64(r.ProductiveSeconds)/float64(r.DurationSeconds), r.FocusIndex, 1e-12)

		score := int(r.TaskScore)
		require.Equal(t, float64(score), r.TaskScore, "row %d task_score must be integral", i)
		assert.True(t, reachableTaskScores(r.NumTasks)[score],
			"row %d: task_score %v not a sum of %d weights", i, r.TaskScore, r.NumTasks)

		assert.Contains(t, Activities, r.Activity)
		assert.Regexp(t, `^user_\d{3}$`, r.User)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := generate(t, 7, 250)
	b := generate(t, 7, 250)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different rows (-first +second):\n%s", diff)
	}

	c := generate(t, 8, 250)
	if cmp.Equal(a, c) {
		t.Error("different seeds produced identical rows")
	}
}

func TestGenerate_PrefixStable(t *testing.T) {
	// A shorter run is a prefix of a longer one with the same seed.
	short := generate(t, DefaultSeed, 10)
	long := generate(t, DefaultSeed, 100)

	if diff := cmp.Diff(short, long[:10]); diff != "" {
		t.Errorf("prefix mismatch (-short +long):\n%s", diff)
	}
}

func TestGenerate_ZeroRows(t *testing.T) {
	rows := generate(t, DefaultSeed, 0)
	assert.Empty(t, rows)
}

func TestGenerate_NegativeRows(t *testing.T) {
	rows, err := NewGenerator(Options{Seed: 1}).Generate(context.Background(), -3)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(Options{Seed: 1}).Generate(ctx, 10)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_SingleRowFinite(t *testing.T) {
	r := generate(t, DefaultSeed, 1)[0]

	for name, v := range map[string]float64{
		"productive_seconds":       float64(r.ProductiveSeconds),
		"task_score":               r.TaskScore,
		"focus_index":              r.FocusIndex,
		"self_report_productivity": r.SelfReportProductivity,
	} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s = %v", name, v)
	}
	assert.GreaterOrEqual(t, r.SelfReportProductivity, 0.0)
	assert.LessOrEqual(t, r.SelfReportProductivity, 100.0)
}

func TestNewGenerator_UserPool(t *testing.T) {
	g := NewGenerator(Options{Users: 3, Seed: 1})
	require.Len(t, g.users, 3)
	assert.Equal(t, []string{"user_000", "user_001", "user_002"}, g.users)

	g = NewGenerator(Options{Seed: 1})
	assert.Len(t, g.users, DefaultUsers)
	assert.Equal(t, "user_119", g.users[DefaultUsers-1])
}

func TestGenerate_TaskRatesByActivity(t *testing.T) {
	rows := generate(t, 99, 20000)

	counts := make(map[Activity]int)
	tasks := make(map[Activity]int)
	for _, r := range rows {
		counts[r.Activity]++
		tasks[r.Activity] += r.NumTasks
	}

	for _, a := range Activities {
		require.NotZero(t, counts[a], "activity %s never sampled", a)
		mean := float64(tasks[a]) / float64(counts[a])
		assert.InDelta(t, a.TaskRate(), mean, 0.15, "mean tasks for %s", a)
	}
}

func TestActivity_TaskRate(t *testing.T) {
	tests := []struct {
		activity Activity
		want     float64
	}{
		{TaskManagement, 2.0},
		{ProblemSolving, 1.5},
		{Coding, 1.5},
		{Reading, 0.6},
		{Forum, 0.6},
		{Mixed, 0.6},
	}

	for _, tt := range tests {
		t.Run(string(tt.activity), func(t *testing.T) {
			if got := tt.activity.TaskRate(); got != tt.want {
				t.Errorf("TaskRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActivity_BaseSeconds(t *testing.T) {
	require.Len(t, Activities, 9)
	for _, a := range Activities {
		assert.Positive(t, a.BaseSeconds(), "activity %s", a)
	}
	assert.Equal(t, 3200.0, Coding.BaseSeconds())
	assert.Equal(t, 600.0, Forum.BaseSeconds())
}

func TestRawMax(t *testing.T) {
	assert.InDelta(t, 2.4, RawMax, 1e-12)
}

func TestSelfReport(t *testing.T) {
	tests := []struct {
		name       string
		productive int
		taskScore  float64
		focus      float64
		jitter     float64
		noise      float64
		want       float64
	}{
		{name: "all zero", want: 0},
		{
			name:       "at theoretical max",
			productive: 3 * 3600, taskScore: 30, focus: 1, jitter: 1,
			want: 100,
		},
		{
			name:       "clipped high",
			productive: 5 * 3600, taskScore: 40, focus: 1, jitter: 1, noise: 10,
			want: 100,
		},
		{
			name:  "clipped low",
			focus: 0.1, noise: -50,
			want: 0,
		},
		{
			name:       "mid range",
			productive: 3600, taskScore: 10, focus: 0.5, jitter: 0.5,
			// raw = 0.4 + 0.3 + 0.1 + 0.05 = 0.85
			want: 0.85 / 2.4 * 100,
		},
		{
			name:       "noise shifts",
			productive: 3600, taskScore: 10, focus: 0.5, jitter: 0.5, noise: -2.5,
			want: 0.85/2.4*100 - 2.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelfReport(tt.productive, tt.taskScore, tt.focus, tt.jitter, tt.noise)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestClip(t *testing.T) {
	assert.Equal(t, 0.0, Clip(-1, 0, 100))
	assert.Equal(t, 100.0, Clip(101, 0, 100))
	assert.Equal(t, 42.5, Clip(42.5, 0, 100))
}
