package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/logger"
)

// Session is the stored state behind a bearer token.
type Session struct {
	Token     string    `json:"token"`
	Principal Principal `json:"principal"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired checks whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionStore keeps sessions in redis under a configurable key prefix, with
// the TTL enforced both by redis expiry and an explicit timestamp check.
type SessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

func NewSessionStore(client *redis.Client, prefix string, ttl time.Duration, log logger.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "session-store"}),
	}
}

// Create issues a new session token for the principal.
func (s *SessionStore) Create(ctx context.Context, p Principal) (*Session, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, apperr.Internal(fmt.Errorf("generate token: %w", err))
	}

	now := time.Now().UTC()
	session := &Session{
		Token:     hex.EncodeToString(buf),
		Principal: p,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("marshal session: %w", err))
	}

	if err := s.client.Set(ctx, s.prefix+session.Token, payload, s.ttl).Err(); err != nil {
		return nil, apperr.IO("redis", fmt.Errorf("store session: %w", err))
	}

	return session, nil
}

// Authenticate resolves a bearer token to its principal.
func (s *SessionStore) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, apperr.Unauthorized("missing token")
	}

	payload, err := s.client.Get(ctx, s.prefix+token).Result()
	if err == redis.Nil {
		return nil, apperr.Unauthorized("unknown or expired token")
	}
	if err != nil {
		return nil, apperr.IO("redis", fmt.Errorf("load session: %w", err))
	}

	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, apperr.Internal(fmt.Errorf("unmarshal session: %w", err))
	}

	if session.IsExpired() {
		if delErr := s.client.Del(ctx, s.prefix+token).Err(); delErr != nil {
			s.logger.Warn("failed to remove expired session", map[string]interface{}{"error": delErr})
		}
		return nil, apperr.Unauthorized("session expired")
	}

	return &session.Principal, nil
}

// Revoke deletes a session.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.prefix+token).Err(); err != nil {
		return apperr.IO("redis", fmt.Errorf("revoke session: %w", err))
	}
	return nil
}
