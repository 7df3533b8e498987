package apm

// TagFilter scopes a topology query to spans carrying a matching tag.
type TagFilter struct {
	Name     string `json:"name"`
	Operator string `json:"operator"`
	Scope    string `json:"scope"`
	Value    string `json:"value"`
}

type topologyRequest struct {
	TimeRange  string      `json:"timeRange"`
	TagFilters []TagFilter `json:"tagFilters"`
}

// Format selects the trace response encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
)

// accept maps a format onto its Accept header value; anything that is not
// ndjson falls back to plain JSON.
func (f Format) accept() string {
	if f == FormatNDJSON {
		return "application/x-ndjson"
	}

	return "application/json"
}
