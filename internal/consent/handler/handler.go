// Package handler exposes the consent engine over HTTP for the banner and
// the settings page.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,RegionDetector

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	compliance "consentd/internal/compliance/models"
	"consentd/internal/consent/models"
	"consentd/internal/consent/service"
	"consentd/internal/identity"
	"consentd/internal/region"
	id "consentd/pkg/domain"
	dErrors "consentd/pkg/domain-errors"
	"consentd/pkg/platform/httputil"
	"consentd/pkg/requestcontext"
)

// Service defines the consent operations the handler calls.
type Service interface {
	Status(ctx context.Context, subject id.Subject, region compliance.Region) service.Status
	AcceptAll(ctx context.Context, subject id.Subject, region compliance.Region) (models.Preferences, bool)
	RejectAll(ctx context.Context, subject id.Subject, region compliance.Region) (models.Preferences, bool)
	Withdraw(ctx context.Context, subject id.Subject, region compliance.Region) (models.Preferences, bool)
	SavePreferences(ctx context.Context, subject id.Subject, region compliance.Region, choices models.Choices) (models.Preferences, bool)
	RevokeCategory(ctx context.Context, subject id.Subject, region compliance.Region, category models.Category) (models.Preferences, bool)
	Export(ctx context.Context, subject id.Subject) models.Export
	History(ctx context.Context, subject id.Subject) []models.Record
}

// RegionDetector resolves the region consent rules are applied under.
type RegionDetector interface {
	Detect(ctx context.Context, sig region.Signals) compliance.Region
}

// PreferencesResponse is returned by every successful mutation.
type PreferencesResponse struct {
	Region      compliance.Region  `json:"region"`
	Preferences models.Preferences `json:"preferences"`
	Diagnostics []string           `json:"diagnostics,omitempty"`
}

// HistoryResponse wraps the audit ring.
type HistoryResponse struct {
	History []models.Record `json:"history"`
}

var errNotSaved = dErrors.New(dErrors.CodeNotSaved, "preferences could not be saved, please retry")

// Handler handles consent endpoints.
type Handler struct {
	consent Service
	regions RegionDetector
	logger  *slog.Logger
}

// New creates a new consent Handler.
func New(consent Service, regions RegionDetector, logger *slog.Logger) *Handler {
	return &Handler{
		consent: consent,
		regions: regions,
		logger:  logger,
	}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/consent", h.handleStatus)
	r.Post("/consent/accept-all", h.handleAcceptAll)
	r.Post("/consent/reject-all", h.handleRejectAll)
	r.Put("/consent/preferences", h.handleSavePreferences)
	r.Post("/consent/withdraw", h.handleWithdraw)
	r.Get("/consent/export", h.handleExport)
	r.Delete("/consent/categories/{category}", h.handleClearCategory)
	r.Get("/consent/history", h.handleHistory)
}

// scope returns the subject and the region to apply. The region query
// parameter is honored as a test override here as on GET /region.
func (h *Handler) scope(r *http.Request) (id.Subject, compliance.Region) {
	ctx := r.Context()
	subject := identity.SubjectFrom(ctx)
	return subject, h.regions.Detect(ctx, region.SignalsFrom(ctx, subject, r.URL.Query().Get("region")))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	subject, reg := h.scope(r)
	httputil.WriteJSON(w, http.StatusOK, h.consent.Status(r.Context(), subject, reg))
}

func (h *Handler) handleAcceptAll(w http.ResponseWriter, r *http.Request) {
	subject, reg := h.scope(r)
	prefs, ok := h.consent.AcceptAll(r.Context(), subject, reg)
	h.respond(w, r, "accept_all", reg, prefs, ok, nil)
}

func (h *Handler) handleRejectAll(w http.ResponseWriter, r *http.Request) {
	subject, reg := h.scope(r)
	prefs, ok := h.consent.RejectAll(r.Context(), subject, reg)
	h.respond(w, r, "reject_all", reg, prefs, ok, nil)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	subject, reg := h.scope(r)
	prefs, ok := h.consent.Withdraw(r.Context(), subject, reg)
	h.respond(w, r, "withdraw", reg, prefs, ok, nil)
}

func (h *Handler) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.SavePreferencesRequest](w, r, h.logger)
	if !ok {
		return
	}
	choices, diagnostics := models.ParseChoices(req.Preferences)
	for _, d := range diagnostics {
		h.logger.WarnContext(ctx, "preference input adjusted",
			"diagnostic", d,
			"request_id", requestID,
		)
	}

	subject, reg := h.scope(r)
	prefs, saved := h.consent.SavePreferences(ctx, subject, reg, choices)
	h.respond(w, r, "save_custom", reg, prefs, saved, diagnostics)
}

func (h *Handler) handleClearCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "unknown category"))
		return
	}
	if category.IsEssential() {
		h.logger.WarnContext(ctx, "refused to clear essential category",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "essential cookies cannot be disabled"))
		return
	}

	subject, reg := h.scope(r)
	prefs, ok := h.consent.RevokeCategory(ctx, subject, reg, category)
	h.respond(w, r, "revoke_category", reg, prefs, ok, nil)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httputil.WriteJSON(w, http.StatusOK, h.consent.Export(ctx, identity.SubjectFrom(ctx)))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{History: h.consent.History(ctx, identity.SubjectFrom(ctx))})
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op string, reg compliance.Region, prefs models.Preferences, saved bool, diagnostics []string) {
	ctx := r.Context()
	if !saved {
		h.logger.ErrorContext(ctx, "consent mutation not saved",
			"operation", op,
			"region", reg,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, errNotSaved)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PreferencesResponse{
		Region:      reg,
		Preferences: prefs,
		Diagnostics: diagnostics,
	})
}
