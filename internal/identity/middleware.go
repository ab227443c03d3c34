// Package identity resolves which subject a request records consent against:
// a visitor identified by a signed long-lived cookie, upgraded to a user when
// the request carries a verified bearer token from the auth backend.
package identity

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"consentd/internal/platform/kv"
	id "consentd/pkg/domain"
	"consentd/pkg/platform/httputil"
	"consentd/pkg/requestcontext"
)

const (
	DefaultCookieName = "consentd_vid"
	// CookieLifetime matches the longest regional consent window.
	CookieLifetime = 2 * 365 * 24 * time.Hour

	linkedVisitorKey = "linked_visitor"
)

// Transferer moves an existing visitor decision onto a newly signed-in user.
type Transferer interface {
	Transfer(ctx context.Context, from, to id.Subject) bool
}

// Config holds cookie settings.
type Config struct {
	CookieName   string
	CookieDomain string
	Secure       bool
}

// Middleware attaches an Identity to every request.
type Middleware struct {
	signer     *Signer
	verifier   *Verifier
	links      kv.Store
	transferer Transferer
	cfg        Config
	logger     *slog.Logger
}

// NewMiddleware wires the identity middleware. verifier may be nil when no
// auth backend is configured; bearer tokens are then ignored.
func NewMiddleware(signer *Signer, verifier *Verifier, links kv.Store, transferer Transferer, cfg Config, logger *slog.Logger) *Middleware {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	return &Middleware{
		signer:     signer,
		verifier:   verifier,
		links:      links,
		transferer: transferer,
		cfg:        cfg,
		logger:     logger,
	}
}

// Handler resolves the visitor cookie (issuing one if missing or forged) and
// upgrades to the bearer token's user when present. An invalid token is a 401.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ident := Identity{Visitor: m.visitor(w, r)}

		if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && m.verifier != nil {
			userID, err := m.verifier.Verify(strings.TrimSpace(token), requestcontext.Now(ctx))
			if err != nil {
				m.logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}
			ident.User = userID
			m.link(ctx, ident)
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, ident)))
	})
}

// IssueVisitor sets a fresh visitor cookie and returns the new id.
func (m *Middleware) IssueVisitor(w http.ResponseWriter, r *http.Request) id.VisitorID {
	visitor := id.NewVisitorID()
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    m.signer.Sign(visitor),
		Path:     "/",
		Domain:   m.cfg.CookieDomain,
		Expires:  requestcontext.Now(r.Context()).Add(CookieLifetime),
		MaxAge:   int(CookieLifetime.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return visitor
}

func (m *Middleware) visitor(w http.ResponseWriter, r *http.Request) id.VisitorID {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err == nil {
		visitor, verr := m.signer.Verify(cookie.Value)
		if verr == nil {
			return visitor
		}
		m.logger.WarnContext(r.Context(), "rejected visitor cookie",
			"error", verr,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
	return m.IssueVisitor(w, r)
}

// link records which visitor a user signed in from and, the first time a
// given visitor is seen for the user, carries the visitor's decision over.
func (m *Middleware) link(ctx context.Context, ident Identity) {
	key := kv.Key(id.UserSubject(ident.User).Key(), linkedVisitorKey)
	prev, err := m.links.Get(ctx, key)
	if err == nil && string(prev) == ident.Visitor.String() {
		return
	}
	if err != nil && !kv.IsNotFound(err) {
		m.logger.WarnContext(ctx, "failed to read linked visitor", "error", err)
		return
	}
	if err := m.links.Set(ctx, key, []byte(ident.Visitor.String()), 0); err != nil {
		m.logger.WarnContext(ctx, "failed to link visitor", "error", err)
		return
	}
	if m.transferer != nil {
		m.transferer.Transfer(ctx, id.VisitorSubject(ident.Visitor), ident.Subject())
	}
}
