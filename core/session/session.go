package session

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultLifetime is how long a session survives without activity.
const DefaultLifetime = 7 * 24 * time.Hour

var (
	// errors
	ErrNotFound     = errors.New("session not found")
	ErrInvalidToken = errors.New("invalid session token")
)

// Session binds an authenticated user to a cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"userId"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	ExpiresAt time.Time `json:"expiresAt"` // UTC
}

func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions. Get must not return expired sessions.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	// Touch pushes the expiry of a live session to expiresAt.
	Touch(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes the sessions expired at now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Claims are carried by the signed cookie value.
type Claims struct {
	jwt.StandardClaims
	SessionID string `json:"sid"`
}

// Manager issues and resolves signed session cookies.
type Manager struct {
	store    Store
	key      []byte
	issuer   string
	lifetime time.Duration
	now      func() time.Time
}

func NewManager(store Store, secretKey, issuer string, lifetime time.Duration) *Manager {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Manager{
		store:    store,
		key:      []byte(secretKey),
		issuer:   issuer,
		lifetime: lifetime,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *Manager) Lifetime() time.Duration { return m.lifetime }

// Issue opens a session for userID and returns the signed cookie value.
func (m *Manager) Issue(ctx context.Context, userID int) (string, Session, error) {
	now := m.now()
	sess := Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.lifetime),
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return "", Session{}, errors.Wrap(err, "saving session")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		StandardClaims: jwt.StandardClaims{Issuer: m.issuer, IssuedAt: now.Unix()},
		SessionID:      sess.ID,
	})
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", Session{}, errors.Wrap(err, "signing session token")
	}
	return signed, sess, nil
}

func (m *Manager) parse(value string) (string, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.key, nil
	})
	if err != nil || !token.Valid || claims.SessionID == "" || claims.Issuer != m.issuer {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

// Resolve returns the live session behind a cookie value and slides its expiry forward.
func (m *Manager) Resolve(ctx context.Context, value string) (Session, error) {
	id, err := m.parse(value)
	if err != nil {
		return Session{}, err
	}
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	now := m.now()
	if sess.IsExpired(now) {
		_ = m.store.Delete(ctx, id)
		return Session{}, ErrNotFound
	}

	sess.ExpiresAt = now.Add(m.lifetime)
	if err = m.store.Touch(ctx, id, sess.ExpiresAt); err != nil {
		return Session{}, errors.Wrap(err, "touching session")
	}
	return sess, nil
}

// Revoke deletes the session behind a cookie value. Unknown or forged values are ignored.
func (m *Manager) Revoke(ctx context.Context, value string) error {
	id, err := m.parse(value)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// Sweep removes the expired sessions.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	return m.store.DeleteExpired(ctx, m.now())
}
