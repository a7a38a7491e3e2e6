package jobhub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t testing.TB) (*JobHub, *API) {
	t.Helper()
	h, _ := newTestJobHub(t)
	a, err := newAPI(h, h.config.API)
	require.NoError(t, err)
	return h, a
}

func TestHealthEndpoint(t *testing.T) {
	_, a := newTestAPI(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	a.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStatusEndpoint(t *testing.T) {
	h, a := newTestAPI(t)

	require.True(t, h.pending.TryAcquire("u1"))
	require.True(t, h.pending.TryAcquire("u2"))
	h.cooldowns.RecordAttempt("u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	a.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var status BotStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, Version, status.Version)
	assert.Equal(t, 2, status.PendingRequests)
	assert.Equal(t, 1, status.CooldownEntries)
	assert.False(t, status.DiscordConnected)
}

func TestNewAPIRequiresConfig(t *testing.T) {
	h, _ := newTestJobHub(t)

	_, err := newAPI(h, nil)
	assert.Error(t, err)
}
