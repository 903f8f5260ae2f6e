package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// DefaultTokenTTL is how long a login token stays valid.
const DefaultTokenTTL = 12 * time.Hour

// User is the signed-in doctor returned by login.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// DemoDoctor is the identity every demo login receives.
var DemoDoctor = User{ID: "dr_rahul", Name: "Dr. Rahul TP", Role: "doctor"}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issuer signs demo-login tokens.
type Issuer struct {
	issuer string
	key    []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(issuer string, key []byte, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{issuer: issuer, key: key, ttl: ttl, now: time.Now}
}

// Login accepts any non-blank email and password and returns the demo doctor
// with the given email. There is no credential store.
func (i *Issuer) Login(req LoginRequest) (*LoginResponse, bool, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, false, nil
	}

	user := DemoDoctor
	user.Email = email

	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Name:  user.Name,
		Email: user.Email,
		Roles: []string{user.Role},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return nil, false, err
	}
	return &LoginResponse{User: user, Token: signed, ExpiresAt: exp}, true, nil
}

func (i *Issuer) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/login", i.HandleLogin)
}

func (i *Issuer) HandleLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, ok, err := i.Login(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "email and password are required")
	}
	return c.JSON(http.StatusOK, resp)
}
