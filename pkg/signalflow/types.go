package signalflow

// MetricType identifies which service telemetry view a SignalFlow program
// computes.
type MetricType string

const (
	MetricErrorRate  MetricType = "error-rate"
	MetricLatency    MetricType = "latency"
	MetricThroughput MetricType = "throughput"
)

// TimeseriesMetadata is the identity the backend publishes for one
// timeseries within a computation. Timeseries ids are scoped to a single
// stream session and are not stable across runs.
type TimeseriesMetadata struct {
	Service     string
	StreamLabel string
}

// Point is a single datapoint. Value is nil when the backend reported a gap
// for the interval.
type Point struct {
	TimestampMs int64
	Value       *float64
}

// StreamResult holds everything accumulated from one computation stream,
// keyed by timeseries id. Both maps are owned by the parse that produced
// them.
type StreamResult struct {
	MetadataByID map[string]TimeseriesMetadata
	PointsByID   map[string][]Point
}

// ServiceMetrics is one aggregated result row. Metric-specific fields are
// pointers so absent measurements are omitted from the emitted document
// instead of rendering as zero.
type ServiceMetrics struct {
	Service        string   `json:"service"`
	ErrorRatePct   *float64 `json:"error_rate_pct,omitempty"`
	ErrorCount     *float64 `json:"error_count,omitempty"`
	TotalCount     *float64 `json:"total_count,omitempty"`
	P99Ms          *float64 `json:"p99_ms,omitempty"`
	RequestsTotal  *float64 `json:"requests_total,omitempty"`
	AvgPerInterval *float64 `json:"avg_per_interval,omitempty"`
}

// ExecuteRequest parameterizes one SignalFlow computation.
type ExecuteRequest struct {
	Program      string
	StartMs      int64
	StopMs       int64
	ResolutionMs int64
}

// Wire payloads. The backend publishes metadata once per timeseries and zero
// or more data frames referencing it.

type metadataPayload struct {
	TsID       string             `json:"tsId"`
	Properties metadataProperties `json:"properties"`
}

type metadataProperties struct {
	Service     string `json:"sf_service"`
	StreamLabel string `json:"sf_streamLabel"`
}

type dataPayload struct {
	LogicalTimestampMs int64       `json:"logicalTimestampMs"`
	Data               []dataEntry `json:"data"`
}

type dataEntry struct {
	TsID  string   `json:"tsId"`
	Value *float64 `json:"value"`
}
