package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "session:"
	defaultSessionTTL = 7 * 24 * time.Hour
)

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID        string    `json:"sessionId"`
	User      Identity  `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionStore keeps sessions in Redis under session:<uuid> with a TTL.
type SessionStore struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewSessionStore(rdb redis.Cmdable, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *SessionStore) Create(ctx context.Context, user Identity) (*Session, error) {
	if user.ID == "" {
		return nil, ErrMissingID
	}

	session := &Session{
		ID:        uuid.NewString(),
		User:      user,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	if err := s.rdb.Set(ctx, sessionKeyPrefix+session.ID, payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return session, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrSessionNotFound
	}

	payload, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, sessionKeyPrefix+strings.TrimSpace(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// BearerToken extracts the session id from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	header = strings.TrimSpace(header)
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
