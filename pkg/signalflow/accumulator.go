package signalflow

// accumulator collects decoded frames into the per-timeseries maps. Both the
// SSE parser and the websocket transport feed it; it is never shared across
// goroutines.
type accumulator struct {
	metadata map[string]TimeseriesMetadata
	points   map[string][]Point
}

func newAccumulator() *accumulator {
	return &accumulator{
		metadata: make(map[string]TimeseriesMetadata),
		points:   make(map[string][]Point),
	}
}

// addMetadata records stream identity for a timeseries. A later frame for
// the same id overwrites the earlier one.
func (a *accumulator) addMetadata(md metadataPayload) {
	if md.TsID == "" {
		return
	}

	a.metadata[md.TsID] = TimeseriesMetadata{
		Service:     md.Properties.Service,
		StreamLabel: md.Properties.StreamLabel,
	}
}

// addData appends one point per entry carrying a timeseries id, stamped with
// the frame's logical timestamp.
func (a *accumulator) addData(dp dataPayload) {
	for _, entry := range dp.Data {
		if entry.TsID == "" {
			continue
		}

		a.points[entry.TsID] = append(a.points[entry.TsID], Point{
			TimestampMs: dp.LogicalTimestampMs,
			Value:       entry.Value,
		})
	}
}

func (a *accumulator) result() *StreamResult {
	return &StreamResult{
		MetadataByID: a.metadata,
		PointsByID:   a.points,
	}
}
