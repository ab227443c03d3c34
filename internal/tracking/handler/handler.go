package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"consentd/internal/consent/models"
	"consentd/internal/identity"
	"consentd/internal/tracking"
	id "consentd/pkg/domain"
	dErrors "consentd/pkg/domain-errors"
	"consentd/pkg/platform/httputil"
	"consentd/pkg/platform/validation"
)

// Gate is the tracking surface the handler needs.
type Gate interface {
	IsAllowed(ctx context.Context, subject id.Subject, category models.Category) bool
	TrackAs(ctx context.Context, subject id.Subject, category models.Category, name string, props map[string]any) tracking.Outcome
}

// TrackRequest is the body of POST /track. Category defaults to performance.
type TrackRequest struct {
	Event      string         `json:"event"`
	Category   string         `json:"category"`
	Properties map[string]any `json:"properties"`

	category models.Category
}

func (r *TrackRequest) Sanitize() {
	r.Event = strings.TrimSpace(r.Event)
	r.Category = strings.TrimSpace(r.Category)
}

func (r *TrackRequest) Normalize() {
	r.Category = strings.ToLower(r.Category)
	if r.Category == "" {
		r.Category = string(models.CategoryPerformance)
	}
}

func (r *TrackRequest) Validate() error {
	if r.Event == "" {
		return dErrors.New(dErrors.CodeValidation, "event is required")
	}
	if err := validation.CheckStringLength("event", r.Event, validation.MaxEventNameLength); err != nil {
		return err
	}
	if err := validation.CheckKeys("properties", r.Properties, validation.MaxEventProperties, validation.MaxPropertyKeyLength); err != nil {
		return err
	}
	c, err := models.ParseCategory(r.Category)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "unknown category")
	}
	r.category = c
	return nil
}

// TrackResponse reports the gate's decision.
type TrackResponse struct {
	Outcome tracking.Outcome `json:"outcome"`
}

// AllowedResponse answers GET /track/allowed.
type AllowedResponse struct {
	Category models.Category `json:"category"`
	Allowed  bool            `json:"allowed"`
}

// Handler serves tracking endpoints.
type Handler struct {
	gate   Gate
	logger *slog.Logger
}

func New(gate Gate, logger *slog.Logger) *Handler {
	return &Handler{gate: gate, logger: logger}
}

// Register registers the tracking routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/track", h.handleTrack)
	r.Get("/track/allowed", h.handleAllowed)
}

func (h *Handler) handleTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[TrackRequest](w, r, h.logger)
	if !ok {
		return
	}
	outcome := h.gate.TrackAs(ctx, identity.SubjectFrom(ctx), req.category, req.Event, req.Properties)
	status := http.StatusAccepted
	if outcome == tracking.OutcomeFailed {
		status = http.StatusBadGateway
	}
	httputil.WriteJSON(w, status, TrackResponse{Outcome: outcome})
}

func (h *Handler) handleAllowed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category, err := models.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "unknown category"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AllowedResponse{
		Category: category,
		Allowed:  h.gate.IsAllowed(ctx, identity.SubjectFrom(ctx), category),
	})
}
