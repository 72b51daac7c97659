package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Duration is the lifetime of a session token and of the cookie carrying it.
const Duration = 15 * time.Minute

// ErrEmptySecret is returned when a Manager is built without a signing key.
var ErrEmptySecret = errors.New("session signing secret cannot be empty")

// Session is the authenticated admin identity carried by a token.
type Session struct {
	AdminID int64  `json:"adminId"`
	Correo  string `json:"correo"`
}

// Claims is the JWT payload: the session plus registered claims (iat, exp, jti).
type Claims struct {
	Session
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 session tokens.
type Manager struct {
	secret   []byte
	denylist *Denylist
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDenylist shares d between managers. Without it each Manager owns a private one.
func WithDenylist(d *Denylist) Option {
	return func(m *Manager) { m.denylist = d }
}

// NewManager creates a token manager keyed by secret.
// PRE: secret is non-empty
func NewManager(secret []byte, opts ...Option) (*Manager, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	m := &Manager{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	if m.denylist == nil {
		m.denylist = NewDenylist()
	}
	return m, nil
}

// Sign issues a token for s expiring Duration after now.
// POST: token carries iat, exp and a random jti
func (m *Manager) Sign(s Session) (string, error) {
	id, err := newTokenID()
	if err != nil {
		return "", err
	}
	now := m.now()
	claims := Claims{
		Session: s,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(Duration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks signature, algorithm, expiry and revocation.
// Returns the session and true on success; any failure yields false.
func (m *Manager) Verify(token string) (Session, bool) {
	claims, ok := m.parse(token)
	if !ok {
		return Session{}, false
	}
	return claims.Session, true
}

// Revoke denylists token until its natural expiry. Invalid tokens are ignored.
func (m *Manager) Revoke(token string) {
	claims, ok := m.parse(token)
	if !ok || claims.ID == "" {
		return
	}
	m.denylist.Add(claims.ID, claims.ExpiresAt.Time)
}

func (m *Manager) parse(token string) (*Claims, bool) {
	if token == "" {
		return nil, false
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, false
	}
	if m.denylist.Contains(claims.ID, m.now()) {
		return nil, false
	}
	return claims, true
}

func newTokenID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
