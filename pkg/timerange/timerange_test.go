package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ExplicitBounds(t *testing.T) {
	w, err := Resolve("2024-01-01T00:00:00Z", "2024-01-01T01:00:00Z", 10*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, int64(1704067200000), w.StartMs())
	assert.Equal(t, int64(1704070800000), w.StopMs())
}

func TestResolve_OffsetNormalizedToUTC(t *testing.T) {
	w, err := Resolve("2024-01-01T02:00:00+02:00", "2024-01-01T01:00:00Z", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, int64(1704067200000), w.StartMs())
}

func TestResolve_Defaults(t *testing.T) {
	before := time.Now().UTC()

	w, err := Resolve("", "", 10*time.Minute)
	require.NoError(t, err)

	after := time.Now().UTC()

	assert.False(t, w.Stop.Before(before))
	assert.False(t, w.Stop.After(after))
	assert.Equal(t, 10*time.Minute, w.Stop.Sub(w.Start))
}

func TestResolve_LookbackAnchoredToStop(t *testing.T) {
	w, err := Resolve("", "2024-01-01T01:00:00Z", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01T00:00:00Z/2024-01-01T01:00:00Z", w.RangeString())
}

func TestResolve_InvalidFormat(t *testing.T) {
	tests := []struct {
		name  string
		start string
		stop  string
	}{
		{name: "bad start", start: "January 1st", stop: ""},
		{name: "bad stop", start: "", stop: "2024-13-99"},
		{name: "date only", start: "2024-01-01", stop: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.start, tt.stop, time.Minute)
			require.ErrorIs(t, err, ErrInvalidTime)
		})
	}
}

func TestWindow_RangeString(t *testing.T) {
	w, err := Resolve("2024-06-15T10:30:45Z", "2024-06-15T11:30:45Z", 0)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-15T10:30:45Z/2024-06-15T11:30:45Z", w.RangeString())
}
