package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/gym_site/internal/tokens"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

const userContextKey = "auth_user"

type AuthUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type Guard struct {
	Tokens     *tokens.Service
	AdminEmail string
}

func NewGuard(ts *tokens.Service, adminEmail string) *Guard {
	return &Guard{Tokens: ts, AdminEmail: strings.TrimSpace(adminEmail)}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(echo.HeaderAuthorization)
	if h == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth resolves the caller from the Authorization bearer token.
func (g *Guard) RequireAuth(r *http.Request) (*AuthUser, error) {
	raw, ok := bearerToken(r)
	if !ok {
		return nil, ErrUnauthorized
	}
	claims := g.Tokens.Verify(raw)
	if claims == nil {
		return nil, ErrUnauthorized
	}
	return &AuthUser{ID: claims.Subject, Email: claims.Email, IsAdmin: claims.IsAdmin}, nil
}

// RequireAdmin accepts either an admin-flagged token or a token whose email
// is the configured admin identity.
func (g *Guard) RequireAdmin(r *http.Request) (*AuthUser, error) {
	u, err := g.RequireAuth(r)
	if err != nil {
		return nil, err
	}
	if u.IsAdmin || g.isAdminEmail(u.Email) {
		return u, nil
	}
	return nil, ErrForbidden
}

func (g *Guard) isAdminEmail(email string) bool {
	return g.AdminEmail != "" && strings.EqualFold(strings.TrimSpace(email), g.AdminEmail)
}

func setUserContext(c echo.Context, u *AuthUser) {
	c.Set(userContextKey, u)
}

// UserFrom returns the caller stored by Authenticated or AdminOnly.
func UserFrom(c echo.Context) *AuthUser {
	u, _ := c.Get(userContextKey).(*AuthUser)
	return u
}
