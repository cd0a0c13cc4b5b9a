package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"kapebot/internal/domain"
)

// sessionTTL bounds how long an abandoned conversation survives
const sessionTTL = 24 * time.Hour

// SessionStore persists sessions in Redis so the bot can restart
// without dropping in-flight conversations. Implements both
// repository.SessionStore and repository.GreetedStore.
type SessionStore struct {
	client *goredis.Client
}

// NewSessionStore creates a store over an existing Redis client
func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(userID string) string { return "session:" + userID }
func greetedKey(userID string) string { return "greeted:" + userID }

// Get returns the session for userID, or (nil, nil) if none exists
func (s *SessionStore) Get(ctx context.Context, userID string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", userID, err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", userID, err)
	}
	return &sess, nil
}

// Set stores the session for userID with the standard TTL
func (s *SessionStore) Set(ctx context.Context, userID string, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", userID, err)
	}
	if err := s.client.Set(ctx, sessionKey(userID), raw, sessionTTL).Err(); err != nil {
		return fmt.Errorf("set session %s: %w", userID, err)
	}
	return nil
}

// Delete removes the session for userID
func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", userID, err)
	}
	return nil
}

// MarkGreeted records that userID has seen the welcome menu
func (s *SessionStore) MarkGreeted(ctx context.Context, userID string) error {
	if err := s.client.Set(ctx, greetedKey(userID), "1", 0).Err(); err != nil {
		return fmt.Errorf("mark greeted %s: %w", userID, err)
	}
	return nil
}

// WasGreeted reports whether userID has seen the welcome menu
func (s *SessionStore) WasGreeted(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, greetedKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check greeted %s: %w", userID, err)
	}
	return n > 0, nil
}
