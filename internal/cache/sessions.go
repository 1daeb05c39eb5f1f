package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/conversation"
)

const sessionKeyPrefix = "conversation:"

// SessionStore keeps conversation sessions in Redis. Every save refreshes
// the session's TTL, so idle conversations expire on their own.
type SessionStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

var _ conversation.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a Redis-backed session store. A ttl of zero
// stores sessions without expiry.
func NewSessionStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Get loads a session. Missing and expired sessions return nil, nil.
// Unlike the quote cache, Redis errors are returned: the store is the only
// copy of the session.
func (s *SessionStore) Get(ctx context.Context, id string) (*conversation.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session conversation.Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Warn("Discarding unreadable session", zap.String("id", id), zap.Error(err))
		return nil, nil
	}
	return &session, nil
}

// Save stores a session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, session *conversation.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
