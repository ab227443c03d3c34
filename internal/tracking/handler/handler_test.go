package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consentd/internal/consent/models"
	"consentd/internal/identity"
	"consentd/internal/tracking"
	id "consentd/pkg/domain"
)

type stubGate struct {
	allowed  map[models.Category]bool
	outcome  tracking.Outcome
	subject  id.Subject
	category models.Category
	name     string
}

func (g *stubGate) IsAllowed(_ context.Context, subject id.Subject, c models.Category) bool {
	g.subject = subject
	return g.allowed[c]
}

func (g *stubGate) TrackAs(_ context.Context, subject id.Subject, c models.Category, name string, _ map[string]any) tracking.Outcome {
	g.subject, g.category, g.name = subject, c, name
	return g.outcome
}

func newRouter(gate Gate, ident identity.Identity) chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(identity.WithIdentity(req.Context(), ident)))
		})
	})
	New(gate, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func TestHandleTrack(t *testing.T) {
	visitor := id.NewVisitorID()
	ident := identity.Identity{Visitor: visitor}

	tests := []struct {
		name       string
		body       string
		outcome    tracking.Outcome
		wantStatus int
		wantCat    models.Category
	}{
		{"defaults to performance", `{"event":"page_view"}`, tracking.OutcomeForwarded, http.StatusAccepted, models.CategoryPerformance},
		{"explicit category", `{"event":"ad_click","category":"Marketing"}`, tracking.OutcomeSuppressed, http.StatusAccepted, models.CategoryMarketing},
		{"sink failure", `{"event":"page_view"}`, tracking.OutcomeFailed, http.StatusBadGateway, models.CategoryPerformance},
		{"missing event", `{"category":"functional"}`, "", http.StatusBadRequest, ""},
		{"unknown category", `{"event":"x","category":"telemetry"}`, "", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := &stubGate{outcome: tt.outcome}
			w := httptest.NewRecorder()
			newRouter(gate, ident).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/track", bytes.NewBufferString(tt.body)))

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCat == "" {
				return
			}
			var resp TrackResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.outcome, resp.Outcome)
			assert.Equal(t, tt.wantCat, gate.category)
			assert.Equal(t, id.VisitorSubject(visitor), gate.subject)
		})
	}
}

func TestHandleAllowed(t *testing.T) {
	gate := &stubGate{allowed: map[models.Category]bool{models.CategoryFunctional: true}}
	router := newRouter(gate, identity.Identity{Visitor: id.NewVisitorID(), User: "teacher-1"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/track/allowed?category=functional", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp AllowedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)
	assert.Equal(t, id.UserSubject("teacher-1"), gate.subject)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/track/allowed?category=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
