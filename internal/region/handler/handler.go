package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	compliance "consentd/internal/compliance/models"
	"consentd/internal/identity"
	"consentd/internal/region"
	"consentd/pkg/platform/httputil"
	"consentd/pkg/requestcontext"
)

// Detector is the region surface the handler needs.
type Detector interface {
	Resolve(ctx context.Context, sig region.Signals) region.Detection
	Redetect(ctx context.Context, sig region.Signals) region.Detection
}

// Response is a detection together with the rules it implies.
type Response struct {
	region.Detection
	Rule compliance.Rule `json:"rule"`
}

// Handler serves region endpoints.
type Handler struct {
	detector Detector
	logger   *slog.Logger
}

func New(detector Detector, logger *slog.Logger) *Handler {
	return &Handler{detector: detector, logger: logger}
}

// Register registers the region routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/region", h.handleGet)
	r.Post("/region/redetect", h.handleRedetect)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sig := region.SignalsFrom(ctx, identity.SubjectFrom(ctx), r.URL.Query().Get("region"))
	httputil.WriteJSON(w, http.StatusOK, toResponse(h.detector.Resolve(ctx, sig)))
}

func (h *Handler) handleRedetect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sig := region.SignalsFrom(ctx, identity.SubjectFrom(ctx), "")
	detection := h.detector.Redetect(ctx, sig)
	h.logger.InfoContext(ctx, "region redetected",
		"region", detection.Region,
		"source", detection.Source,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, toResponse(detection))
}

func toResponse(d region.Detection) Response {
	return Response{Detection: d, Rule: compliance.RulesFor(d.Region)}
}
