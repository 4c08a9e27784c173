// Package auth provides the demo credentials sign-in used by the account
// pages. A signed JWT in the session cookie carries the user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrops-br/restyle-storefront/internal/infrastructure/config"
)

// SessionCookieName holds the signed session token
const SessionCookieName = "session-token"

const issuer = "restyle-storefront"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
)

// User is the signed-in account
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SignInForm is the posted credentials form
type SignInForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator checks the demo account and issues session cookies.
type Authenticator struct {
	secret       []byte
	user         User
	passwordHash []byte
	ttl          time.Duration
	secure       bool
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewAuthenticator hashes the configured demo password once at startup
func NewAuthenticator(cfg *config.AuthConfig, secureCookies bool, logger *slog.Logger) (*Authenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Authenticator{
		secret: []byte(cfg.Secret),
		user: User{
			ID:    "1",
			Name:  cfg.DemoName,
			Email: cfg.DemoEmail,
		},
		passwordHash: hash,
		ttl:          ttl,
		secure:       secureCookies,
		validate:     validator.New(),
		logger:       logger,
	}, nil
}

// SignIn verifies the form and sets the session cookie on success
func (a *Authenticator) SignIn(ctx context.Context, w http.ResponseWriter, form SignInForm) (*User, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := a.validate.Struct(form); err != nil {
		a.logger.InfoContext(ctx, "Rejected sign-in form",
			slog.String("error", err.Error()),
		)
		return nil, ErrInvalidCredentials
	}

	if !strings.EqualFold(form.Email, a.user.Email) ||
		bcrypt.CompareHashAndPassword(a.passwordHash, []byte(form.Password)) != nil {
		a.logger.WarnContext(ctx, "Sign-in failed",
			slog.String("email", form.Email),
		)
		return nil, ErrInvalidCredentials
	}

	token, expires, err := a.issue()
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})

	a.logger.InfoContext(ctx, "User signed in",
		slog.String("user_id", a.user.ID),
	)
	user := a.user
	return &user, nil
}

// SignOut expires the session cookie
func (a *Authenticator) SignOut(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   a.secure,
	})
}

// Authenticate returns the user of a valid session cookie
func (a *Authenticator) Authenticate(r *http.Request) (*User, error) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(c.Value, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	return &User{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}

func (a *Authenticator) issue() (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(a.ttl)

	claims := sessionClaims{
		Name:  a.user.Name,
		Email: a.user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   a.user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expires, nil
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying user
func NewContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the signed-in user or nil
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(contextKey{}).(*User)
	return user
}
