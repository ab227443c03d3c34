package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestLiveness(t *testing.T) {
	w, body := serve(t, New("test"), "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", body["status"])
}

func TestReadiness(t *testing.T) {
	h := New("test")
	h.RegisterCheck("kv", func(context.Context) error { return nil })

	w, body := serve(t, h, "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", body["status"])

	h.RegisterCheck("kv", func(context.Context) error { return errors.New("connection refused") })
	w, body = serve(t, h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not_ready", body["status"])
	assert.Equal(t, "down: connection refused", body["checks"].(map[string]any)["kv"])
}

func TestInfoCheckDoesNotFailReadiness(t *testing.T) {
	h := New("test")
	h.RegisterCheck("kv", func(context.Context) error { return nil })
	h.RegisterInfoCheck("geoip", func(context.Context) error { return errors.New("circuit open") })

	w, body := serve(t, h, "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "up", checks["kv"])
	assert.Equal(t, "down: circuit open", checks["geoip"])

	_, body = serve(t, h, "/health")
	assert.Equal(t, "degraded", body["status"])
}

func TestStatusReportsDegraded(t *testing.T) {
	h := New("staging")
	h.RegisterCheck("kv", func(context.Context) error { return errors.New("connection refused") })

	w, body := serve(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "staging", body["environment"])
}
