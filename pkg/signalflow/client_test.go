package signalflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

// newFakeStreamServer stands in for the SignalFlow execute endpoint and
// replays a canned SSE body.
func newFakeStreamServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	router := mux.NewRouter()
	router.HandleFunc("/v2/signalflow/execute", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testToken, r.Header.Get("X-SF-Token"))
		assert.Equal(t, "true", r.URL.Query().Get("immediate"))
		assert.Equal(t, "1000", r.URL.Query().Get("start"))
		assert.Equal(t, "2000", r.URL.Query().Get("stop"))
		assert.Equal(t, "60000", r.URL.Query().Get("resolution"))

		var payload struct {
			ProgramText string `json:"programText"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotEmpty(t, payload.ProgramText)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}).Methods(http.MethodPost)

	return httptest.NewServer(router)
}

func testExecuteRequest() *ExecuteRequest {
	return &ExecuteRequest{
		Program:      "data('service.request.count').publish('throughput')",
		StartMs:      1000,
		StopMs:       2000,
		ResolutionMs: 60000,
	}
}

func TestClient_Execute(t *testing.T) {
	body := "event: metadata\n" +
		"data: {\"tsId\": \"a\", \"properties\": {\"sf_service\": \"checkout\", \"sf_streamLabel\": \"throughput\"}}\n" +
		"\n" +
		"event: data\n" +
		"data: {\n" +
		"data:   \"logicalTimestampMs\": 1500,\n" +
		"data:   \"data\": [{\"tsId\": \"a\", \"value\": 12}]\n" +
		"data: }\n" +
		"\n"

	server := newFakeStreamServer(t, http.StatusOK, body)
	defer server.Close()

	client := newClient(testToken, server.URL+"/v2/signalflow/execute", server.Client())

	result, err := client.Execute(context.Background(), testExecuteRequest())
	require.NoError(t, err)

	assert.Equal(t, "checkout", result.MetadataByID["a"].Service)
	require.Len(t, result.PointsByID["a"], 1)
	assert.InDelta(t, 12, *result.PointsByID["a"][0].Value, 0.001)
}

func TestClient_ExecuteHTTPErrorWithMessage(t *testing.T) {
	server := newFakeStreamServer(t, http.StatusBadRequest, `{"message": "invalid program"}`)
	defer server.Close()

	client := newClient(testToken, server.URL+"/v2/signalflow/execute", server.Client())

	result, err := client.Execute(context.Background(), testExecuteRequest())
	require.ErrorIs(t, err, ErrExecuteFailed)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "HTTP error: 400 - invalid program")
}

func TestClient_ExecuteHTTPErrorWithoutMessage(t *testing.T) {
	server := newFakeStreamServer(t, http.StatusUnauthorized, "not json")
	defer server.Close()

	client := newClient(testToken, server.URL+"/v2/signalflow/execute", server.Client())

	_, err := client.Execute(context.Background(), testExecuteRequest())
	require.ErrorIs(t, err, ErrExecuteFailed)
	assert.Contains(t, err.Error(), "HTTP error: 401")
	assert.NotContains(t, err.Error(), " - ")
}

func TestClient_ExecuteConnectionRefused(t *testing.T) {
	server := newFakeStreamServer(t, http.StatusOK, "")
	server.Close() // refuse the connection

	client := newClient(testToken, server.URL+"/v2/signalflow/execute", nil)

	result, err := client.Execute(context.Background(), testExecuteRequest())
	require.ErrorIs(t, err, ErrExecuteFailed)
	assert.Nil(t, result)
}

func TestNewClient_RealmURL(t *testing.T) {
	client := NewClient(testToken, "eu0", nil)
	assert.Equal(t, "https://stream.eu0.signalfx.com/v2/signalflow/execute", client.url)
	assert.NotNil(t, client.httpClient)
}
