package identity

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"consentd/pkg/platform/httputil"
	"consentd/pkg/requestcontext"
)

// Response describes the request identity.
type Response struct {
	Subject       string `json:"subject"`
	VisitorID     string `json:"visitor_id"`
	UserID        string `json:"user_id,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

// Handler serves identity endpoints.
type Handler struct {
	middleware *Middleware
	logger     *slog.Logger
}

// NewHandler creates the identity handler.
func NewHandler(middleware *Middleware, logger *slog.Logger) *Handler {
	return &Handler{middleware: middleware, logger: logger}
}

// Register registers the identity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/identity", h.handleGet)
	r.Post("/identity/logout", h.handleLogout)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toResponse(FromContext(r.Context())))
}

// handleLogout rotates the visitor id so the signed-out browser starts
// from a clean slate instead of inheriting the user's decision.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visitor := h.middleware.IssueVisitor(w, r)
	h.logger.InfoContext(ctx, "visitor rotated on logout",
		"previous", FromContext(ctx).Subject().String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, toResponse(Identity{Visitor: visitor}))
}

func toResponse(ident Identity) Response {
	resp := Response{
		Subject:       ident.Subject().String(),
		VisitorID:     ident.Visitor.String(),
		Authenticated: !ident.User.IsNil(),
	}
	if resp.Authenticated {
		resp.UserID = ident.User.String()
	}
	return resp
}
