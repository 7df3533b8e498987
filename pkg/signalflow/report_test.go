package signalflow

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_WriteJSON(t *testing.T) {
	report := NewReport(MetricErrorRate, "production", 1000, 2000, []ServiceMetrics{
		{
			Service:      "checkout",
			ErrorRatePct: float64Ptr(5),
			ErrorCount:   float64Ptr(5),
			TotalCount:   float64Ptr(100),
		},
	})

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf))

	want := `{
  "metric_type": "error-rate",
  "description": "Error rate per service (%)",
  "environment": "production",
  "time_range": {
    "start_ms": 1000,
    "stop_ms": 2000
  },
  "results": [
    {
      "service": "checkout",
      "error_rate_pct": 5,
      "error_count": 5,
      "total_count": 100
    }
  ]
}
`
	assert.Equal(t, want, buf.String())
}

func TestReport_NilResultsRenderAsEmptyArray(t *testing.T) {
	report := NewReport(MetricLatency, "staging", 0, 0, nil)

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf))

	assert.Contains(t, buf.String(), `"results": []`)
}
