// Package session authenticates the single site administrator and keeps the
// login in a signed cookie.
package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/config"
)

// CookieName is the admin session cookie.
const CookieName = "ts_admin_session"

const issuer = "traine-savates"

var errBadCredentials = apperr.Unauthorized("invalid email or password")

type Manager struct {
	email  string
	hash   []byte
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// New builds a manager from the admin settings.
func New(cfg config.AdminConfig) (*Manager, error) {
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return nil, errors.New("session secret is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", cfg.SessionTTL)
	}
	return &Manager{
		email:  strings.ToLower(strings.TrimSpace(cfg.Email)),
		hash:   []byte(cfg.PasswordHash),
		secret: []byte(cfg.SessionSecret),
		ttl:    cfg.SessionTTL,
		secure: cfg.SecureCookie,
		now:    time.Now,
	}, nil
}

// HashPassword returns the bcrypt hash to put in TS_ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate checks admin credentials.
func (m *Manager) Authenticate(email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if m.email == "" || len(m.hash) == 0 {
		return errBadCredentials
	}
	sameEmail := subtle.ConstantTimeCompare([]byte(email), []byte(m.email)) == 1
	if bcrypt.CompareHashAndPassword(m.hash, []byte(password)) != nil || !sameEmail {
		return errBadCredentials
	}
	return nil
}

// Issue signs a session token for email.
func (m *Manager) Issue(email string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email: email,
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, expires, nil
}

// Verify returns the email a token was issued for.
func (m *Manager) Verify(token string) (string, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", apperr.Unauthorized("session expired or invalid")
	}
	if parsed.Email != m.email {
		return "", apperr.Unauthorized("session does not belong to the administrator")
	}
	return parsed.Email, nil
}

// Login authenticates and writes the session cookie.
func (m *Manager) Login(w http.ResponseWriter, email, password string) error {
	if err := m.Authenticate(email, password); err != nil {
		return err
	}
	token, expires, err := m.Issue(m.email)
	if err != nil {
		return err
	}
	m.write(w, token, expires)
	return nil
}

// Current returns the logged in email from the request cookie.
func (m *Manager) Current(r *http.Request) (string, bool) {
	value, ok := Read(r)
	if !ok {
		return "", false
	}
	email, err := m.Verify(value)
	if err != nil {
		return "", false
	}
	return email, true
}

// Read returns the trimmed session cookie value when present.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	return value, value != ""
}

func (m *Manager) write(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/admin",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/admin",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
