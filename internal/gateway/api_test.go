// ABOUTME: HTTP API tests run against the gateway handler with a stub provider
// ABOUTME: Covers scope tokens, the connect/disconnect flow, SSE, and snapshot restore

package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/wallet-gateway/internal/config"
	"github.com/2389/wallet-gateway/internal/store"
	"github.com/2389/wallet-gateway/internal/wallet"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{HTTPAddr: "127.0.0.1:0"},
		Auth: config.AuthConfig{
			ScopeSecret: "test-secret",
			ScopeTTL:    time.Hour,
		},
		Session: config.SessionConfig{
			Mirror:         true,
			ConnectTimeout: time.Second,
		},
	}
}

// newTestGateway builds a gateway over a stub provider and the given
// store. A nil store gets a fresh in-memory one.
func newTestGateway(t *testing.T, snapStore store.Store) (*Gateway, *wallet.StubProvider) {
	t.Helper()
	if snapStore == nil {
		snapStore = store.NewMemoryStore()
	}
	stub := wallet.NewStubProvider(0, testLogger())
	gw, err := New(testConfig(), stub, snapStore, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = gw.Shutdown(ctx)
	})
	return gw, stub
}

func doRequest(t *testing.T, gw *Gateway, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// openSession opens a scope and returns its token.
func openSession(t *testing.T, gw *Gateway) string {
	t.Helper()
	rec := doRequest(t, gw, http.MethodPost, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON[OpenSessionResponse](t, rec)
	require.NotEmpty(t, resp.ScopeToken)
	return resp.ScopeToken
}

// waitForStatus polls GET /api/session until the scope reaches the
// wanted status.
func waitForStatus(t *testing.T, gw *Gateway, token, want string) SessionResponse {
	t.Helper()
	var last SessionResponse
	require.Eventually(t, func() bool {
		rec := doRequest(t, gw, http.MethodGet, "/api/session", token)
		if rec.Code != http.StatusOK {
			return false
		}
		last = decodeJSON[SessionResponse](t, rec)
		return last.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return last
}

func TestAPI_Health(t *testing.T) {
	gw, _ := newTestGateway(t, nil)

	rec := doRequest(t, gw, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeJSON[map[string]string](t, rec)["status"])
}

func TestAPI_OpenSession(t *testing.T) {
	gw, _ := newTestGateway(t, nil)

	rec := doRequest(t, gw, http.MethodPost, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[OpenSessionResponse](t, rec)
	assert.NotEmpty(t, resp.ScopeToken)
	assert.Equal(t, "idle", resp.Status)
	assert.Empty(t, resp.Identity)
}

func TestAPI_SessionRequiresToken(t *testing.T) {
	gw, _ := newTestGateway(t, nil)

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, gw, http.MethodGet, "/api/session", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, gw, http.MethodGet, "/api/session", "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, gw, http.MethodPost, "/api/session/connect", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, gw, http.MethodPost, "/api/session/disconnect", "").Code)
}

func TestAPI_ConnectFlow(t *testing.T) {
	gw, _ := newTestGateway(t, nil)
	token := openSession(t, gw)

	rec := doRequest(t, gw, http.MethodPost, "/api/session/connect", token)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "connecting", decodeJSON[SessionResponse](t, rec).Status)

	resp := waitForStatus(t, gw, token, "connected")
	assert.NotEmpty(t, resp.Identity)
}

func TestAPI_ConnectWhenConnected(t *testing.T) {
	gw, _ := newTestGateway(t, nil)
	token := openSession(t, gw)

	doRequest(t, gw, http.MethodPost, "/api/session/connect", token)
	waitForStatus(t, gw, token, "connected")

	rec := doRequest(t, gw, http.MethodPost, "/api/session/connect", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "connected", decodeJSON[SessionResponse](t, rec).Status)
}

func TestAPI_ConnectFailureResetsToIdle(t *testing.T) {
	gw, stub := newTestGateway(t, nil)
	token := openSession(t, gw)

	stub.FailNextConnect(wallet.ErrConnectCancelled)
	rec := doRequest(t, gw, http.MethodPost, "/api/session/connect", token)
	require.Equal(t, http.StatusAccepted, rec.Code)

	waitForStatus(t, gw, token, "idle")
}

func TestAPI_Disconnect(t *testing.T) {
	gw, _ := newTestGateway(t, nil)
	token := openSession(t, gw)

	doRequest(t, gw, http.MethodPost, "/api/session/connect", token)
	waitForStatus(t, gw, token, "connected")

	rec := doRequest(t, gw, http.MethodPost, "/api/session/disconnect", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", decodeJSON[SessionResponse](t, rec).Status)

	resp := decodeJSON[SessionResponse](t, doRequest(t, gw, http.MethodGet, "/api/session", token))
	assert.Equal(t, "idle", resp.Status)
	assert.Empty(t, resp.Identity)
}

func TestAPI_DisconnectWhileIdle(t *testing.T) {
	gw, _ := newTestGateway(t, nil)
	token := openSession(t, gw)

	rec := doRequest(t, gw, http.MethodPost, "/api/session/disconnect", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", decodeJSON[SessionResponse](t, rec).Status)
}

func TestAPI_ReopenSessionKeepsScope(t *testing.T) {
	gw, _ := newTestGateway(t, nil)
	token := openSession(t, gw)

	doRequest(t, gw, http.MethodPost, "/api/session/connect", token)
	waitForStatus(t, gw, token, "connected")

	// Re-opening with a valid token resumes the same scope
	req := httptest.NewRequest(http.MethodPost, "/api/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON[OpenSessionResponse](t, rec)
	assert.Equal(t, "connected", resp.Status)
	assert.NotEmpty(t, resp.Identity)
}

func TestAPI_SnapshotRestoresAcrossGateways(t *testing.T) {
	shared := store.NewMemoryStore()

	gw1, _ := newTestGateway(t, shared)
	token := openSession(t, gw1)
	doRequest(t, gw1, http.MethodPost, "/api/session/connect", token)
	connected := waitForStatus(t, gw1, token, "connected")

	// A second gateway over the same store and secret sees the mirrored
	// session without running a connect flow.
	gw2, stub2 := newTestGateway(t, shared)
	resp := waitForStatus(t, gw2, token, "connected")
	assert.Equal(t, connected.Identity, resp.Identity)
	assert.Zero(t, stub2.ConnectCalls())
}

func TestAPI_Events(t *testing.T) {
	gw, _ := newTestGateway(t, nil)
	token := openSession(t, gw)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/session/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: status")
	assert.Contains(t, body, `"status":"idle"`)
}

func TestAPI_EventsRequireToken(t *testing.T) {
	gw, _ := newTestGateway(t, nil)

	rec := doRequest(t, gw, http.MethodGet, "/api/session/events", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
