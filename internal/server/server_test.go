package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/aristath/qho/internal/modules/animation"
	testutil "github.com/aristath/qho/internal/testing"
)

func setupTestServer(t *testing.T) (*Server, *animation.Sampler, *StreamHub) {
	t.Helper()
	logger := testutil.NewTestLogger()
	sampler := testutil.NewDefaultSampler(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewStreamHub(ctx, sampler, 4, []string{"*"}, logger)
	driver := animation.NewDriver(ctx, sampler, hub,
		animation.DriverOptions{FrameInterval: 5 * time.Millisecond, MinInterval: time.Millisecond}, logger)
	t.Cleanup(driver.Stop)

	s := New(Config{
		Log:            logger,
		Port:           0,
		DevMode:        true,
		AllowedOrigins: []string{"*"},
		Sampler:        sampler,
		Driver:         driver,
		Stream:         hub,
	})
	s.systemHandlers.cpuInterval = time.Millisecond
	return s, sampler, hub
}

func TestHandleHealth(t *testing.T) {
	s, _, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "qho", response["service"])
}

func TestHandleViewer(t *testing.T) {
	s, _, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/api/oscillator/stream")
}

func TestHandleSystemStatus(t *testing.T) {
	s, _, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data     SystemStatusResponse   `json:"data"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "healthy", response.Data.Status)
	assert.Greater(t, response.Data.Goroutines, 0)
	assert.False(t, response.Data.Animation.Running)
	assert.Equal(t, 0, response.Data.Stream.Clients)
	assert.Contains(t, response.Metadata, "timestamp")
}

func TestOscillatorRoutesMounted(t *testing.T) {
	s, _, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/oscillator/state", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"coefficients":"1,1,1,1"`)
}

func TestStreamThroughServer(t *testing.T) {
	s, _, _ := setupTestServer(t)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/oscillator/stream"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	conn.SetReadLimit(ClientReadLimit)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.NoError(t, s.driver.Start())

	msg := readJSON(t, ctx, conn)
	assert.Equal(t, "config", msg.Type)

	msg = readJSON(t, ctx, conn)
	assert.Equal(t, "frame", msg.Type)
	require.NotNil(t, msg.Frame)
	assert.Len(t, msg.Frame.X, 400)
}
