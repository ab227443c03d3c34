package identity

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/blake2b"

	id "consentd/pkg/domain"
	dErrors "consentd/pkg/domain-errors"
)

const (
	minSecretLen = 16
	macSize      = 32
)

// Signer authenticates visitor cookies with a keyed BLAKE2b MAC so a client
// cannot adopt another visitor's consent by editing the cookie.
type Signer struct {
	key []byte
}

// NewSigner builds a signer from the configured cookie secret.
func NewSigner(secret string) (*Signer, error) {
	if len(secret) < minSecretLen || len(secret) > blake2b.Size {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "cookie secret must be 16 to 64 bytes")
	}
	return &Signer{key: []byte(secret)}, nil
}

// Sign renders "<visitor-id>.<base64url mac>".
func (s *Signer) Sign(visitor id.VisitorID) string {
	raw := visitor.String()
	return raw + "." + base64.RawURLEncoding.EncodeToString(s.mac(raw))
}

// Verify checks the MAC and returns the visitor id it covers.
func (s *Signer) Verify(value string) (id.VisitorID, error) {
	raw, sig, ok := strings.Cut(value, ".")
	if !ok {
		return id.VisitorID{}, dErrors.New(dErrors.CodeInvalidInput, "malformed visitor cookie")
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || subtle.ConstantTimeCompare(got, s.mac(raw)) != 1 {
		return id.VisitorID{}, dErrors.New(dErrors.CodeUnauthorized, "visitor cookie signature mismatch")
	}
	return id.ParseVisitorID(raw)
}

func (s *Signer) mac(raw string) []byte {
	h, err := blake2b.New(macSize, s.key)
	if err != nil {
		// key length is checked in NewSigner
		panic(err)
	}
	h.Write([]byte(raw))
	return h.Sum(nil)
}
