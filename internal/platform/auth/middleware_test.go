package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func signTestToken(t *testing.T, claims Claims, key []byte) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "dr_rahul",
			Issuer:    "rxdesk",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Name:  "Dr. Rahul TP",
		Roles: []string{"doctor"},
	}
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	var seen echo.Context
	err := mw(func(c echo.Context) error {
		called = true
		seen = c
		return c.NoContent(http.StatusOK)
	})(c)
	if seen == nil {
		seen = c
	}
	return seen, called, err
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	token := signTestToken(t, validClaims(), testKey)
	c, called, err := runMiddleware(t, JWTMiddleware(JWTConfig{Issuer: "rxdesk", SigningKey: testKey}), "Bearer "+token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected handler to be called")
	}
	ctx := c.Request().Context()
	if got := UserIDFromContext(ctx); got != "dr_rahul" {
		t.Errorf("expected user dr_rahul, got %q", got)
	}
	if got := UserNameFromContext(ctx); got != "Dr. Rahul TP" {
		t.Errorf("expected name Dr. Rahul TP, got %q", got)
	}
	if roles := RolesFromContext(ctx); len(roles) != 1 || roles[0] != "doctor" {
		t.Errorf("expected [doctor], got %v", roles)
	}
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong key", "Bearer " + signTestToken(t, validClaims(), []byte("another-key-another-key-another-k"))},
		{"expired", "Bearer " + signTestToken(t, expired, testKey)},
		{"wrong issuer", "Bearer " + signTestToken(t, wrongIssuer, testKey)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, called, err := runMiddleware(t, JWTMiddleware(JWTConfig{Issuer: "rxdesk", SigningKey: testKey}), tt.header)
			if called {
				t.Error("handler should not be called")
			}
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %v", err)
			}
		})
	}
}

func TestJWTMiddleware_Skipper(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey, Skipper: func(echo.Context) bool { return true }})
	_, called, err := runMiddleware(t, mw, "")
	if err != nil || !called {
		t.Errorf("expected skipped request to pass, called=%v err=%v", called, err)
	}
}

func TestDevAuthMiddleware_DefaultsToDemoDoctor(t *testing.T) {
	c, called, err := runMiddleware(t, DevAuthMiddleware(JWTConfig{SigningKey: testKey}), "")
	if err != nil || !called {
		t.Fatalf("expected pass-through, called=%v err=%v", called, err)
	}
	if got := UserIDFromContext(c.Request().Context()); got != DemoDoctor.ID {
		t.Errorf("expected %s, got %q", DemoDoctor.ID, got)
	}
}

func TestDevAuthMiddleware_ValidatesPresentedToken(t *testing.T) {
	_, called, err := runMiddleware(t, DevAuthMiddleware(JWTConfig{SigningKey: testKey}), "Bearer junk")
	if called {
		t.Error("handler should not be called with an invalid token")
	}
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		allow bool
	}{
		{"doctor allowed", []string{"doctor"}, true},
		{"admin allowed", []string{"admin"}, true},
		{"nurse denied", []string{"nurse"}, false},
		{"no roles denied", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithUser(req.Context(), "u", "U", tt.roles))
			c := e.NewContext(req, httptest.NewRecorder())

			called := false
			err := RequireRole("doctor")(func(echo.Context) error {
				called = true
				return nil
			})(c)
			if called != tt.allow {
				t.Errorf("expected allow=%v, got called=%v (err=%v)", tt.allow, called, err)
			}
			if !tt.allow {
				if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusForbidden {
					t.Errorf("expected 403, got %v", err)
				}
			}
		})
	}
}

func TestIsPublicPath(t *testing.T) {
	if !IsPublicPath("/api/v1/auth/login") {
		t.Error("expected login to be public")
	}
	if IsPublicPath("/api/v1/patients") {
		t.Error("expected patients to require auth")
	}
}
