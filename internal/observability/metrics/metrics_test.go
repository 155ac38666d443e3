package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestAvailabilityMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAvailabilityMetrics(reg)
	m.ObserveCheck(true, nil)
	m.ObserveCheck(false, []string{"collision", "too_short"})
	m.ObserveCheck(false, []string{"collision"})
	for i := 0; i < 10; i++ {
		m.ObserveEvaluation("check", 0.002)
	}

	summary := Summarize(reg)
	assert.Equal(t, int64(1), summary.Checks["reservable"])
	assert.Equal(t, int64(2), summary.Checks["rejected"])
	assert.Equal(t, int64(2), summary.Rejections["collision"])
	assert.Equal(t, int64(1), summary.Rejections["too_short"])

	latency := summary.Latency["check"]
	assert.Equal(t, int64(10), latency.Total)
	assert.InDelta(t, 1.75, latency.P50Ms, 0.0001)
	assert.InDelta(t, 2.425, latency.P95Ms, 0.0001)
}

func TestAvailabilityMetricsDefaultRegisterer(t *testing.T) {
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	t.Cleanup(func() { prometheus.DefaultRegisterer = prev })

	m := NewAvailabilityMetrics(nil)
	m.ObserveCheck(true, nil)
	m.ObserveEvaluation("bookable", 0.01)
}

func TestAvailabilityMetricsNilSafe(t *testing.T) {
	var m *AvailabilityMetrics
	m.ObserveCheck(false, []string{"collision"})
	m.ObserveEvaluation("check", 0.1)
}

type stubGatherer struct {
	families []*dto.MetricFamily
	err      error
}

func (s stubGatherer) Gather() ([]*dto.MetricFamily, error) {
	return s.families, s.err
}

func TestSummarizeGatherError(t *testing.T) {
	summary := Summarize(stubGatherer{err: errors.New("boom")})
	assert.Empty(t, summary.Checks)
	assert.Empty(t, summary.Rejections)
	assert.Empty(t, summary.Latency)
}

func TestSummarizeOverflowBucket(t *testing.T) {
	name := evaluationFamily
	histogram := dto.MetricType_HISTOGRAM
	opLabel := "operation"
	op := "check"
	upper := 0.5
	inBucket := uint64(1)
	total := uint64(4)

	summary := Summarize(stubGatherer{families: []*dto.MetricFamily{{
		Name: &name,
		Type: &histogram,
		Metric: []*dto.Metric{{
			Label: []*dto.LabelPair{{Name: &opLabel, Value: &op}},
			Histogram: &dto.Histogram{
				SampleCount: &total,
				Bucket:      []*dto.Bucket{{UpperBound: &upper, CumulativeCount: &inBucket}},
			},
		}},
	}}})

	latency := summary.Latency["check"]
	assert.Equal(t, int64(4), latency.Total)
	assert.InDelta(t, 500.0, latency.P95Ms, 0.0001)
}

func TestHistogramQuantileEmpty(t *testing.T) {
	assert.Zero(t, histogramQuantile(0.5, 0, nil, nil))
	assert.Zero(t, histogramQuantile(0, 3, []float64{1}, map[float64]uint64{1: 3}))
}
