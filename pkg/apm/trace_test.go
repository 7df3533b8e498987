package apm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeTraceServer stands in for the APM trace endpoints.
func newFakeTraceServer(t *testing.T) *httptest.Server {
	t.Helper()

	router := mux.NewRouter()

	router.HandleFunc("/v2/apm/trace/{id}/latest", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testToken, r.Header.Get("X-SF-Token"))

		if mux.Vars(r)["id"] == "missing" {
			http.Error(w, `{"message": "not found"}`, http.StatusNotFound)
			return
		}

		if r.Header.Get("Accept") == "application/x-ndjson" {
			_, _ = w.Write([]byte("{\"spanId\": \"1\"}\n{\"spanId\": \"2\"}\n"))
			return
		}

		_, _ = w.Write([]byte(`[{"spanId": "1"}, {"spanId": "2"}]`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/v2/apm/trace/{id}/segments", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[1704067200000000]`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/v2/apm/trace/{id}/{timestamp:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] == "throttled" {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		_, _ = w.Write([]byte(`[{"spanId": "3"}]`))
	}).Methods(http.MethodGet)

	return httptest.NewServer(router)
}

func TestClient_TraceLatest(t *testing.T) {
	server := newFakeTraceServer(t)
	defer server.Close()

	client := newClient(testToken, server.URL+"/v2", server.Client())

	body, err := client.TraceLatest(context.Background(), "abc123", FormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"spanId": "1"}, {"spanId": "2"}]`, string(body))
}

func TestClient_TraceLatestNDJSON(t *testing.T) {
	server := newFakeTraceServer(t)
	defer server.Close()

	client := newClient(testToken, server.URL+"/v2", server.Client())

	body, err := client.TraceLatest(context.Background(), "abc123", FormatNDJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\"spanId\": \"1\"}\n{\"spanId\": \"2\"}\n", string(body))
}

func TestClient_TraceSegments(t *testing.T) {
	server := newFakeTraceServer(t)
	defer server.Close()

	client := newClient(testToken, server.URL+"/v2", server.Client())

	body, err := client.TraceSegments(context.Background(), "abc123", FormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `[1704067200000000]`, string(body))
}

func TestClient_TraceSegmentAt(t *testing.T) {
	server := newFakeTraceServer(t)
	defer server.Close()

	client := newClient(testToken, server.URL+"/v2", server.Client())

	body, err := client.TraceSegmentAt(context.Background(), "abc123", 1704067200000000, FormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"spanId": "3"}]`, string(body))
}

func TestClient_TraceNotFound(t *testing.T) {
	server := newFakeTraceServer(t)
	defer server.Close()

	client := newClient(testToken, server.URL+"/v2", server.Client())

	body, err := client.TraceLatest(context.Background(), "missing", FormatJSON)
	require.ErrorIs(t, err, ErrTraceNotFound)
	assert.Nil(t, body)
}

func TestClient_TraceRateLimited(t *testing.T) {
	server := newFakeTraceServer(t)
	defer server.Close()

	client := newClient(testToken, server.URL+"/v2", server.Client())

	_, err := client.TraceSegmentAt(context.Background(), "throttled", 1704067200000000, FormatJSON)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "retry after 30 seconds")
}

func TestFormat_Accept(t *testing.T) {
	assert.Equal(t, "application/json", FormatJSON.accept())
	assert.Equal(t, "application/x-ndjson", FormatNDJSON.accept())
	assert.Equal(t, "application/json", Format("").accept())
}
