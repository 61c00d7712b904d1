package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/annel0/alien-planet/internal/eventbus"
	"github.com/annel0/alien-planet/internal/game"
	"github.com/annel0/alien-planet/internal/storage"
	"github.com/annel0/alien-planet/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flatNoise struct{}

func (flatNoise) Noise2D(x, y float64) float64 { return -0.2 }

func newTestServer(t *testing.T, store game.SnapshotStore, hooks *OutboundWebhookManager) (*RestServer, *game.Session) {
	t.Helper()
	session := game.NewSession(game.Options{
		Seed:  42,
		Noise: func(int64) util.NoiseSource { return flatNoise{} },
		Store: store,
	})
	rs := NewRestServer(Config{Session: session, Webhooks: hooks, Registry: prometheus.NewRegistry()})
	return rs, session
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, rs *RestServer, method, path string, body any) (int, response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, req)

	var resp response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func TestHealthAndSession(t *testing.T) {
	rs, session := newTestServer(t, nil, nil)

	w := httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), session.ID())

	code, resp := do(t, rs, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, code)
	var info struct {
		State string `json:"state"`
		Seed  int64  `json:"seed"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &info))
	assert.Equal(t, "menu", info.State)
	assert.Equal(t, int64(42), info.Seed)

	code, resp = do(t, rs, http.MethodPost, "/api/reset", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.Equal(t, game.StatePlaying, session.Info().State)
}

func TestTilesEndpoint(t *testing.T) {
	rs, _ := newTestServer(t, nil, nil)

	code, resp := do(t, rs, http.MethodGet, "/api/tiles?x0=0&y0=8&x1=3&y1=10", nil)
	require.Equal(t, http.StatusOK, code)
	var tiles []struct {
		X    int `json:"x"`
		Y    int `json:"y"`
		Tile struct {
			Kind string `json:"kind"`
		} `json:"tile"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &tiles))
	require.NotEmpty(t, tiles)
	for _, tv := range tiles {
		assert.GreaterOrEqual(t, tv.Y, 9)
		assert.NotEqual(t, "Empty", tv.Tile.Kind)
	}

	code, _ = do(t, rs, http.MethodGet, "/api/tiles?x0=0&y0=0&x1=100&y1=1", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = do(t, rs, http.MethodGet, "/api/tiles?x0=a", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
}

func TestWorldQueries(t *testing.T) {
	rs, session := newTestServer(t, nil, nil)
	session.Start(context.Background())

	for _, path := range []string{"/api/enemies", "/api/items", "/api/power-blocks", "/api/radar", "/api/city", "/api/server"} {
		code, resp := do(t, rs, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, code, path)
		assert.True(t, resp.Success, path)
	}

	_, resp := do(t, rs, http.MethodGet, "/api/power-blocks", nil)
	var blocks []json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &blocks))
	assert.Len(t, blocks, 2)
}

func TestInputAndViewport(t *testing.T) {
	rs, session := newTestServer(t, nil, nil)

	code, _ := do(t, rs, http.MethodPost, "/api/input", game.Input{Zoom: 2})
	require.Equal(t, http.StatusOK, code)
	session.Step(context.Background())
	assert.InDelta(t, 1.2, session.Info().Camera.Zoom, 1e-9)

	code, _ = do(t, rs, http.MethodPost, "/api/viewport", game.Viewport{Width: 0, Height: 10})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, rs, http.MethodPost, "/api/viewport", game.Viewport{Width: 800, Height: 600})
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodPost, "/api/input", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpgradeEndpoints(t *testing.T) {
	rs, session := newTestServer(t, nil, nil)
	session.Start(context.Background())

	code, _ := do(t, rs, http.MethodPost, "/api/upgrades/0", nil)
	assert.Equal(t, http.StatusConflict, code, "меню не открыто")
	code, _ = do(t, rs, http.MethodPost, "/api/upgrades/skip", nil)
	assert.Equal(t, http.StatusConflict, code)
	code, _ = do(t, rs, http.MethodPost, "/api/upgrades/x", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := do(t, rs, http.MethodGet, "/api/upgrades", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"state":"playing"`)
}

func TestSnapshotEndpoints(t *testing.T) {
	rs, session := newTestServer(t, storage.NewMemorySnapshotStore(), nil)
	ctx := context.Background()
	session.Start(ctx)
	for i := 0; i < 3; i++ {
		session.Step(ctx)
	}

	code, resp := do(t, rs, http.MethodPost, "/api/snapshots", nil)
	require.Equal(t, http.StatusCreated, code)
	var info game.SnapshotInfo
	require.NoError(t, json.Unmarshal(resp.Data, &info))
	assert.Equal(t, uint64(3), info.Tick)

	code, resp = do(t, rs, http.MethodGet, "/api/snapshots", nil)
	require.Equal(t, http.StatusOK, code)
	var list []game.SnapshotInfo
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 1)

	session.Step(ctx)
	code, _ = do(t, rs, http.MethodPost, "/api/snapshots/"+info.ID+"/load", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(3), session.Info().Tick)

	code, _ = do(t, rs, http.MethodPost, "/api/snapshots/missing/load", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSnapshotEndpointsWithoutStore(t *testing.T) {
	rs, _ := newTestServer(t, nil, nil)

	code, _ := do(t, rs, http.MethodPost, "/api/snapshots", nil)
	assert.Equal(t, http.StatusNotImplemented, code)
	code, _ = do(t, rs, http.MethodGet, "/api/snapshots", nil)
	assert.Equal(t, http.StatusNotImplemented, code)
}

func TestMetricsEndpointAndCORS(t *testing.T) {
	rs, _ := newTestServer(t, nil, nil)
	do(t, rs, http.MethodGet, "/api/session", nil)

	w := httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rest_api_http_request_duration_seconds")

	w = httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/input", nil))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebhooksForwardGameEvents(t *testing.T) {
	var (
		mu       sync.Mutex
		received []OutboundWebhookEvent
		sigs     []string
	)
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev OutboundWebhookEvent
		_ = json.NewDecoder(r.Body).Decode(&ev)
		mu.Lock()
		received = append(received, ev)
		sigs = append(sigs, r.Header.Get("X-Webhook-Signature"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer target.Close()

	bus := eventbus.NewMemoryBus(64)
	hooks := NewOutboundWebhookManager("test-server")
	defer hooks.Close()
	require.NoError(t, hooks.Attach(context.Background(), bus))

	session := game.NewSession(game.Options{
		Seed:  42,
		Noise: func(int64) util.NoiseSource { return flatNoise{} },
		Bus:   bus,
	})
	rs := NewRestServer(Config{Session: session, Webhooks: hooks, Registry: prometheus.NewRegistry()})

	code, resp := do(t, rs, http.MethodPost, "/api/webhooks", OutboundWebhook{
		Name:   "tracker",
		URL:    target.URL,
		Secret: "s3cret",
		Events: []string{eventbus.TypeSessionReset},
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)

	code, _ = do(t, rs, http.MethodPost, "/api/webhooks", map[string]any{"name": "broken"})
	assert.Equal(t, http.StatusBadRequest, code)

	do(t, rs, http.MethodPost, "/api/reset", nil)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, eventbus.TypeSessionReset, received[0].EventType)
	assert.Equal(t, session.ID(), received[0].SessionID)
	assert.Contains(t, string(received[0].Data), `"power_blocks":2`)
	assert.Contains(t, sigs[0], "sha256=")
	mu.Unlock()

	code, resp = do(t, rs, http.MethodGet, "/api/webhooks", nil)
	require.Equal(t, http.StatusOK, code)
	var list []OutboundWebhook
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)

	code, _ = do(t, rs, http.MethodDelete, "/api/webhooks/1", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, rs, http.MethodDelete, "/api/webhooks/1", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSignature(t *testing.T) {
	sig := generateSignature([]byte("body"), "key")
	assert.Equal(t, sig, generateSignature([]byte("body"), "key"))
	assert.NotEqual(t, sig, generateSignature([]byte("body"), "other"))
	assert.Len(t, sig, len("sha256=")+64)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5с", formatUptime(5*time.Second))
	assert.Equal(t, "2м 3с", formatUptime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1д 1ч 0м 0с", formatUptime(25*time.Hour))
}

func TestServerIntegrationStartStop(t *testing.T) {
	rs, _ := newTestServer(t, nil, nil)
	rs.port = "127.0.0.1:0"
	si := NewServerIntegration(rs)
	require.NoError(t, si.Start())
	assert.True(t, si.IsHealthy())

	resp, err := http.Get("http://" + si.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, si.Stop())
	assert.False(t, si.IsHealthy())
}
