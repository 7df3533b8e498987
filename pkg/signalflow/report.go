package signalflow

import (
	"encoding/json"
	"io"
)

// Report is the document emitted for one metrics invocation.
type Report struct {
	MetricType  MetricType       `json:"metric_type"`
	Description string           `json:"description"`
	Environment string           `json:"environment"`
	TimeRange   ReportTimeRange  `json:"time_range"`
	Results     []ServiceMetrics `json:"results"`
}

type ReportTimeRange struct {
	StartMs int64 `json:"start_ms"`
	StopMs  int64 `json:"stop_ms"`
}

// NewReport assembles the output document. A nil results slice is normalized
// so the document always carries a JSON array.
func NewReport(metric MetricType, environment string, startMs, stopMs int64, results []ServiceMetrics) *Report {
	if results == nil {
		results = []ServiceMetrics{}
	}

	return &Report{
		MetricType:  metric,
		Description: Describe(metric),
		Environment: environment,
		TimeRange:   ReportTimeRange{StartMs: startMs, StopMs: stopMs},
		Results:     results,
	}
}

// WriteJSON emits the report with the stable two-space indentation
// downstream tooling expects.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(r)
}
