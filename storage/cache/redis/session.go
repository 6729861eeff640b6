// Package rediscache keeps the HTTP sessions in Redis so they survive restarts
// and are shared between API instances.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/session"
)

const prefixSession = "session:"

func key(id string) string {
	return prefixSession + id
}

// SessionStore implements session.Store. Redis expires the keys itself, with a TTL
// following the session's expiry.
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

var _ session.Store = (*SessionStore)(nil)

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Address,
		Password:     conf.Password,
		DB:           conf.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, now: func() time.Time { return time.Now().UTC() }}
}

func (st *SessionStore) set(ctx context.Context, s session.Session) error {
	ttl := s.ExpiresAt.Sub(st.now())
	if ttl <= 0 {
		return st.Delete(ctx, s.ID)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return errors.Wrap(st.client.Set(ctx, key(s.ID), data, ttl).Err(), "saving session")
}

func (st *SessionStore) Save(ctx context.Context, s session.Session) error {
	return st.set(ctx, s)
}

func (st *SessionStore) Get(ctx context.Context, id string) (session.Session, error) {
	data, err := st.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "getting session")
	}
	var s session.Session
	if err = json.Unmarshal(data, &s); err != nil {
		return session.Session{}, errors.Wrap(err, "decoding session")
	}
	if s.IsExpired(st.now()) {
		return session.Session{}, session.ErrNotFound
	}
	return s, nil
}

func (st *SessionStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	s, err := st.Get(ctx, id)
	if err != nil {
		return err
	}
	s.ExpiresAt = expiresAt
	return st.set(ctx, s)
}

func (st *SessionStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(st.client.Del(ctx, key(id)).Err(), "deleting session")
}

// DeleteExpired is a no-op: expired keys are evicted by Redis.
func (st *SessionStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
