package identity

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"consentd/internal/platform/kv"
	id "consentd/pkg/domain"
	dErrors "consentd/pkg/domain-errors"
)

const (
	testSecret     = "0123456789abcdef-cookie"
	testSigningKey = "auth-backend-key"
	testIssuer     = "https://auth.school.example"
)

func signToken(t *testing.T, method jwt.SigningMethod, key any, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestSigner(t *testing.T) {
	signer, err := NewSigner(testSecret)
	require.NoError(t, err)
	visitor := id.NewVisitorID()

	t.Run("round trip", func(t *testing.T) {
		got, err := signer.Verify(signer.Sign(visitor))
		require.NoError(t, err)
		assert.Equal(t, visitor, got)
	})

	t.Run("tampered id is rejected", func(t *testing.T) {
		value := signer.Sign(visitor)
		other := id.NewVisitorID().String()
		_, err := signer.Verify(other + value[len(other):])
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("other key is rejected", func(t *testing.T) {
		foreign, err := NewSigner("another-secret-of-sorts")
		require.NoError(t, err)
		_, err = signer.Verify(foreign.Sign(visitor))
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := signer.Verify("no-dot")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("short secret", func(t *testing.T) {
		_, err := NewSigner("short")
		assert.Error(t, err)
	})
}

func TestVerifier(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	v := NewVerifier(testSigningKey, testIssuer, "")

	t.Run("valid token yields user", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSigningKey), "teacher-7", now.Add(time.Hour))
		user, err := v.Verify(token, now)
		require.NoError(t, err)
		assert.Equal(t, id.UserID("teacher-7"), user)
	})

	t.Run("expired", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSigningKey), "teacher-7", now.Add(-time.Minute))
		_, err := v.Verify(token, now)
		require.ErrorContains(t, err, "token expired")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong key", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte("nope"), "teacher-7", now.Add(time.Hour))
		_, err := v.Verify(token, now)
		require.ErrorContains(t, err, "invalid token")
	})

	t.Run("algorithm confusion", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS512, []byte(testSigningKey), "teacher-7", now.Add(time.Hour))
		_, err := v.Verify(token, now)
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSigningKey), "", now.Add(time.Hour))
		_, err := v.Verify(token, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

type recordingTransferer struct {
	calls [][2]id.Subject
}

func (r *recordingTransferer) Transfer(_ context.Context, from, to id.Subject) bool {
	r.calls = append(r.calls, [2]id.Subject{from, to})
	return true
}

type MiddlewareSuite struct {
	suite.Suite
	signer     *Signer
	transferer *recordingTransferer
	middleware *Middleware
	router     chi.Router
}

func (s *MiddlewareSuite) SetupTest() {
	var err error
	s.signer, err = NewSigner(testSecret)
	s.Require().NoError(err)
	s.transferer = &recordingTransferer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.middleware = NewMiddleware(s.signer, NewVerifier(testSigningKey, testIssuer, ""), kv.NewInMemoryStore(), s.transferer, Config{}, logger)

	s.router = chi.NewRouter()
	s.router.Use(s.middleware.Handler)
	NewHandler(s.middleware, logger).Register(s.router)
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) do(req *http.Request) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var resp Response
	if w.Code == http.StatusOK {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (s *MiddlewareSuite) cookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultCookieName {
			return c
		}
	}
	return nil
}

func (s *MiddlewareSuite) TestIssuesVisitorCookie() {
	w, resp := s.do(httptest.NewRequest(http.MethodGet, "/identity", nil))
	s.Equal(http.StatusOK, w.Code)
	c := s.cookie(w)
	s.Require().NotNil(c)
	s.True(c.HttpOnly)
	s.Equal(int(CookieLifetime.Seconds()), c.MaxAge)

	visitor, err := s.signer.Verify(c.Value)
	s.Require().NoError(err)
	s.Equal(visitor.String(), resp.VisitorID)
	s.False(resp.Authenticated)
}

func (s *MiddlewareSuite) TestReusesSignedCookie() {
	visitor := id.NewVisitorID()
	req := httptest.NewRequest(http.MethodGet, "/identity", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: s.signer.Sign(visitor)})

	w, resp := s.do(req)
	s.Nil(s.cookie(w))
	s.Equal("visitor:"+visitor.String(), resp.Subject)
}

func (s *MiddlewareSuite) TestForgedCookieIsReplaced() {
	forged := id.NewVisitorID().String() + ".AAAA"
	req := httptest.NewRequest(http.MethodGet, "/identity", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: forged})

	w, resp := s.do(req)
	s.Require().NotNil(s.cookie(w))
	s.NotEqual(forged[:36], resp.VisitorID)
}

func (s *MiddlewareSuite) TestBearerUpgradesAndTransfersOnce() {
	visitor := id.NewVisitorID()
	token := signToken(s.T(), jwt.SigningMethodHS256, []byte(testSigningKey), "parent-3", time.Now().Add(time.Hour))

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/identity", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: s.signer.Sign(visitor)})
		req.Header.Set("Authorization", "Bearer "+token)
		_, resp := s.do(req)
		s.True(resp.Authenticated)
		s.Equal("user:parent-3", resp.Subject)
	}

	s.Require().Len(s.transferer.calls, 1)
	s.Equal(id.VisitorSubject(visitor), s.transferer.calls[0][0])
	s.Equal(id.UserSubject("parent-3"), s.transferer.calls[0][1])
}

func (s *MiddlewareSuite) TestInvalidBearerIsUnauthorized() {
	req := httptest.NewRequest(http.MethodGet, "/identity", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w, _ := s.do(req)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Empty(s.transferer.calls)
}

func (s *MiddlewareSuite) TestLogoutRotatesVisitor() {
	visitor := id.NewVisitorID()
	req := httptest.NewRequest(http.MethodPost, "/identity/logout", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: s.signer.Sign(visitor)})

	w, resp := s.do(req)
	c := s.cookie(w)
	s.Require().NotNil(c)
	rotated, err := s.signer.Verify(c.Value)
	s.Require().NoError(err)
	s.NotEqual(visitor, rotated)
	s.Equal(rotated.String(), resp.VisitorID)
}
