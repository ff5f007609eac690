package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/juniorseniors/users-api/internal/api/handler"
	"github.com/juniorseniors/users-api/internal/core/domain"
)

type stubAuthenticator struct {
	tokens map[string]*domain.User
	seen   []string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.User, error) {
	s.seen = append(s.seen, token)
	if u, ok := s.tokens[token]; ok {
		return u, nil
	}
	return nil, errors.New("token revoked")
}

func newStubAuthenticator() *stubAuthenticator {
	return &stubAuthenticator{tokens: map[string]*domain.User{
		"good": {ID: "u1", Email: "alice@mail.com"},
	}}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(newStubAuthenticator())
	h := mw(func(c echo.Context) error {
		called = true
		user, ok := c.Get(handler.UserContextKey).(*domain.User)
		if !ok || user.ID != "u1" {
			t.Fatalf("user not set: %+v", c.Get(handler.UserContextKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token good",
		"no token":       "Bearer ",
		"unknown token":  "Bearer revoked",
		"scheme only":    "Bearer",
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			mw := Auth(newStubAuthenticator())
			h := mw(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := h(c); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good")
	c := e.NewContext(req, httptest.NewRecorder())

	stub := newStubAuthenticator()
	h := Auth(stub)(func(c echo.Context) error { return nil })

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(stub.seen) != 1 || stub.seen[0] != "good" {
		t.Fatalf("expected token to be forwarded, got %v", stub.seen)
	}
}
