package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jgosmann/linux-bsec-exporter/internal/api/websocket"
	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
)

type staticReadings struct {
	outputs []engine.Output
	version uint64
}

func (s staticReadings) Latest() ([]engine.Output, uint64) {
	return s.outputs, s.version
}

func newTestServer(readings ReadingsProvider) *Server {
	logger := zap.NewNop()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("iaq 25\n"))
	})
	return NewServer("localhost:0", readings, metrics, websocket.NewHub(logger), logger)
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, httptest.NewRequest(method, path, nil))
	return recorder
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(staticReadings{})

	recorder := serve(s, "GET", "/health")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpointDelegatesToHandler(t *testing.T) {
	s := newTestServer(staticReadings{})

	recorder := serve(s, "GET", "/metrics")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "iaq 25")
}

func TestGetReadings(t *testing.T) {
	s := newTestServer(staticReadings{
		outputs: []engine.Output{
			{
				TimestampNS: 12345,
				Signal:      412.5,
				Sensor:      engine.OutputCo2Equivalent,
				Accuracy:    engine.AccuracyHigh,
			},
		},
		version: 9,
	})

	recorder := serve(s, "GET", "/api/v1/readings")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body readingsResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.EqualValues(t, 9, body.Version)
	require.Len(t, body.Readings, 1)
	assert.Equal(t, "co2_equivalent", body.Readings[0].Sensor)
	assert.Equal(t, 412.5, body.Readings[0].Signal)
	assert.Equal(t, "high", body.Readings[0].Accuracy)
	assert.EqualValues(t, 12345, body.Readings[0].TimestampNS)
}

func TestGetReadingsEmptySet(t *testing.T) {
	s := newTestServer(staticReadings{version: 1})

	recorder := serve(s, "GET", "/api/v1/readings")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body readingsResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body.Version)
	assert.Empty(t, body.Readings)
}

func TestWsStatusReportsClientCount(t *testing.T) {
	s := newTestServer(staticReadings{})

	recorder := serve(s, "GET", "/api/v1/ws/status")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, 0, body["connected_clients"])
}
