package metrics

import (
	"math"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	checksFamily     = namespace + "_checks_total"
	rejectionsFamily = namespace + "_rejections_total"
	evaluationFamily = namespace + "_evaluation_seconds"
)

// LatencySnapshot summarizes one operation's evaluation histogram.
type LatencySnapshot struct {
	Total int64   `json:"total"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
}

// Summary is a point-in-time view of the availability metrics.
type Summary struct {
	Checks     map[string]int64           `json:"checks"`
	Rejections map[string]int64           `json:"rejections"`
	Latency    map[string]LatencySnapshot `json:"latency"`
}

// Summarize reads the availability families from gatherer.
// A nil gatherer uses prometheus.DefaultGatherer; gather errors yield an empty summary.
func Summarize(gatherer prometheus.Gatherer) Summary {
	summary := Summary{
		Checks:     map[string]int64{},
		Rejections: map[string]int64{},
		Latency:    map[string]LatencySnapshot{},
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return summary
	}

	for _, mf := range mfs {
		if mf == nil {
			continue
		}
		switch mf.GetName() {
		case checksFamily:
			sumCounters(mf, "result", summary.Checks)
		case rejectionsFamily:
			sumCounters(mf, "reason", summary.Rejections)
		case evaluationFamily:
			for _, metric := range mf.Metric {
				if metric == nil || metric.GetHistogram() == nil {
					continue
				}
				op := labelValue(metric, "operation")
				summary.Latency[op] = latencyOf(metric.GetHistogram())
			}
		}
	}
	return summary
}

func sumCounters(mf *dto.MetricFamily, label string, into map[string]int64) {
	for _, metric := range mf.Metric {
		if metric == nil || metric.GetCounter() == nil {
			continue
		}
		into[labelValue(metric, label)] += int64(metric.GetCounter().GetValue())
	}
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.Label {
		if lp != nil && lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func latencyOf(h *dto.Histogram) LatencySnapshot {
	total := h.GetSampleCount()
	if total == 0 {
		return LatencySnapshot{}
	}
	cumulativeByUpper := map[float64]uint64{}
	for _, b := range h.Bucket {
		if b == nil {
			continue
		}
		cumulativeByUpper[b.GetUpperBound()] = b.GetCumulativeCount()
	}
	if _, ok := cumulativeByUpper[math.Inf(1)]; !ok {
		cumulativeByUpper[math.Inf(1)] = total
	}
	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	return LatencySnapshot{
		Total: int64(total),
		P50Ms: histogramQuantile(0.50, total, uppers, cumulativeByUpper) * 1000.0,
		P95Ms: histogramQuantile(0.95, total, uppers, cumulativeByUpper) * 1000.0,
	}
}

// histogramQuantile interpolates linearly inside the bucket holding the q-th sample.
func histogramQuantile(q float64, total uint64, uppers []float64, cumulativeByUpper map[float64]uint64) float64 {
	if total == 0 || q <= 0 || len(uppers) == 0 {
		return 0
	}

	target := q * float64(total)
	var prevUpper float64
	var prevCum float64

	for _, upper := range uppers {
		cum := float64(cumulativeByUpper[upper])
		if cum < target {
			prevUpper = upper
			prevCum = cum
			continue
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}
		bucketCount := cum - prevCum
		if bucketCount <= 0 {
			return upper
		}
		fraction := math.Min(math.Max((target-prevCum)/bucketCount, 0), 1)
		return prevUpper + fraction*(upper-prevUpper)
	}
	return prevUpper
}
