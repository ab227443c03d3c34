package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "consentd/pkg/domain"
	dErrors "consentd/pkg/domain-errors"
)

// Claims is the subset of the auth backend's access token we rely on.
type Claims struct {
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens minted by the auth backend (HS256, shared key).
type Verifier struct {
	signingKey []byte
	issuer     string
	audience   string
}

// NewVerifier builds a verifier. Empty issuer or audience disables that check.
func NewVerifier(signingKey, issuer, audience string) *Verifier {
	return &Verifier{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Verify validates token at now and returns the user it names.
func (v *Verifier) Verify(token string, now time.Time) (id.UserID, error) {
	if token == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return userID, nil
}
