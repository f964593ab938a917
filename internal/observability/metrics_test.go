package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordGenerated(t *testing.T) {
	datasets := testutil.ToFloat64(datasetsGenerated)
	rows := testutil.ToFloat64(rowsGenerated)
	at := time.Unix(1_700_000_000, 0)

	RecordGenerated(250, 15*time.Millisecond, at)

	assert.Equal(t, datasets+1, testutil.ToFloat64(datasetsGenerated))
	assert.Equal(t, rows+250, testutil.ToFloat64(rowsGenerated))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(lastSuccessGauge))
}

func TestRecordFailure(t *testing.T) {
	before := testutil.ToFloat64(generateFailures)
	RecordFailure()
	assert.Equal(t, before+1, testutil.ToFloat64(generateFailures))
}

func TestMetricsRegistered(t *testing.T) {
	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer,
		"prodsynth_generate_datasets_total",
		"prodsynth_generate_failures_total",
	)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}
