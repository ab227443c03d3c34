package identity

import (
	"context"

	id "consentd/pkg/domain"
)

// Identity is who the current request acts for. Visitor is always set once
// the middleware has run; User only for a verified bearer token.
type Identity struct {
	Visitor id.VisitorID
	User    id.UserID
}

// Subject returns the key consent is recorded against: the user when signed
// in, otherwise the visitor.
func (i Identity) Subject() id.Subject {
	if !i.User.IsNil() {
		return id.UserSubject(i.User)
	}
	return id.VisitorSubject(i.Visitor)
}

type identityKey struct{}

// WithIdentity stores ident in ctx.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// FromContext returns the request identity, zero outside the middleware.
func FromContext(ctx context.Context) Identity {
	if ident, ok := ctx.Value(identityKey{}).(Identity); ok {
		return ident
	}
	return Identity{}
}

// SubjectFrom is shorthand for FromContext(ctx).Subject().
func SubjectFrom(ctx context.Context) id.Subject {
	return FromContext(ctx).Subject()
}
