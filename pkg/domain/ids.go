// Package domain provides the identity types consent state is keyed by.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "consentd/pkg/domain-errors"
)

// VisitorID identifies an anonymous browser before sign-in. It is generated
// once and kept in a long-lived cookie.
type VisitorID uuid.UUID

// UserID identifies a signed-in account. The value is issued by the external
// auth backend and is opaque to this service.
type UserID string

// NewVisitorID generates a fresh random visitor id.
func NewVisitorID() VisitorID {
	return VisitorID(uuid.New())
}

// ParseVisitorID validates a visitor id at a trust boundary (cookie, header).
func ParseVisitorID(s string) (VisitorID, error) {
	if s == "" {
		return VisitorID{}, dErrors.New(dErrors.CodeInvalidInput, "visitor ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return VisitorID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid visitor ID")
	}
	return VisitorID(parsed), nil
}

// ParseUserID validates a user id taken from a verified token subject.
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user ID cannot be empty")
	}
	if len(s) > 128 || strings.ContainsAny(s, ": \t\r\n") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid user ID")
	}
	return UserID(s), nil
}

func (id VisitorID) String() string { return uuid.UUID(id).String() }
func (id UserID) String() string    { return string(id) }

func (id VisitorID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool    { return id == "" }

// Subject is the identity consent is recorded against. Exactly one of
// Visitor or User is set: a visitor before sign-in, a user after.
type Subject struct {
	Visitor VisitorID
	User    UserID
}

// VisitorSubject builds the pre-authentication subject.
func VisitorSubject(id VisitorID) Subject {
	return Subject{Visitor: id}
}

// UserSubject builds the post-authentication subject.
func UserSubject(id UserID) Subject {
	return Subject{User: id}
}

// IsUser reports whether the subject is an authenticated user.
func (s Subject) IsUser() bool {
	return !s.User.IsNil()
}

// IsZero reports whether no identity is set.
func (s Subject) IsZero() bool {
	return s.User.IsNil() && s.Visitor.IsNil()
}

// Key namespaces storage keys for this subject ("user:<id>" or "visitor:<uuid>").
func (s Subject) Key() string {
	if s.IsUser() {
		return "user:" + s.User.String()
	}
	if s.Visitor.IsNil() {
		return ""
	}
	return "visitor:" + s.Visitor.String()
}

func (s Subject) String() string {
	return s.Key()
}
