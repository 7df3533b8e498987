package signalflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProgram(t *testing.T) {
	tests := []struct {
		name     string
		metric   MetricType
		env      string
		service  string
		wantErr  error
		contains []string
	}{
		{
			name:   "error rate publishes errors and total",
			metric: MetricErrorRate,
			env:    "production",
			contains: []string{
				"filter('sf_error', 'true')",
				"filter('sf_environment', 'production')",
				".publish('errors')",
				".publish('total')",
			},
		},
		{
			name:   "latency uses p99 duration metric",
			metric: MetricLatency,
			env:    "production",
			contains: []string{
				"service.request.duration.ns.p99",
				".mean(by=['sf_service'])",
				".publish('latency_p99')",
			},
		},
		{
			name:   "throughput sums request counts",
			metric: MetricThroughput,
			env:    "staging",
			contains: []string{
				"service.request.count",
				".publish('throughput')",
			},
		},
		{
			name:    "service filter appended",
			metric:  MetricThroughput,
			env:     "production",
			service: "checkout",
			contains: []string{
				" and filter('sf_service', 'checkout')",
			},
		},
		{
			name:    "empty environment rejected",
			metric:  MetricThroughput,
			env:     "",
			wantErr: ErrEmptyEnvironment,
		},
		{
			name:    "unknown metric rejected",
			metric:  MetricType("memory"),
			env:     "production",
			wantErr: ErrUnknownMetricType,
		},
		{
			name:    "single quote in environment rejected",
			metric:  MetricErrorRate,
			env:     "prod') or filter('sf_service', 'admin",
			wantErr: ErrUnsafeFilterValue,
		},
		{
			name:    "double quote in service rejected",
			metric:  MetricLatency,
			env:     "production",
			service: `check"out`,
			wantErr: ErrUnsafeFilterValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := BuildProgram(tt.metric, tt.env, tt.service)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)

			for _, fragment := range tt.contains {
				assert.Contains(t, program, fragment)
			}
		})
	}
}

func TestBuildProgram_NoServiceFilterByDefault(t *testing.T) {
	program, err := BuildProgram(MetricErrorRate, "production", "")
	require.NoError(t, err)
	assert.NotContains(t, program, "sf_service', '")
}

func TestBuildProgram_ErrorRateFiltersBothStreams(t *testing.T) {
	program, err := BuildProgram(MetricErrorRate, "production", "checkout")
	require.NoError(t, err)

	// both published streams carry the service filter
	assert.Equal(t, 2, strings.Count(program, "filter('sf_service', 'checkout')"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Error rate per service (%)", Describe(MetricErrorRate))
	assert.Equal(t, "Request duration P99 per service (ms)", Describe(MetricLatency))
	assert.Equal(t, "Request throughput per service (req/sec)", Describe(MetricThroughput))
	assert.Empty(t, Describe(MetricType("memory")))
}
