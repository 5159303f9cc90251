package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"payoutbot/core/logger"

	"log/slog"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Store persists per-chat sessions.
//
// Get never fails: a missing or unreadable record degrades to a fresh IDLE
// session so one corrupt entry cannot lock a chat out. Write errors propagate.
type Store interface {
	Get(ctx context.Context, chatID int64) *Session
	Update(ctx context.Context, chatID int64, mutate func(*Session)) (*Session, error)
	Clear(ctx context.Context, chatID int64) error
	ListAll(ctx context.Context) ([]*Session, error)
	SetExpiry(ctx context.Context, chatID int64, ttl time.Duration) error
}

// RedisStore keeps sessions as JSON values under session:<chatId>.
// Records carry no TTL unless SetExpiry is called.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps a connected Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, chatID)
}

// Get returns the stored session or a fresh one. Read and decode failures are
// logged and degrade to a fresh session.
func (s *RedisStore) Get(ctx context.Context, chatID int64) *Session {
	data, err := s.rdb.Get(ctx, sessionKey(chatID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn(ctx, "store", "session.read_failed",
				slog.Int64("chat_id", chatID),
				slog.String("err", err.Error()),
			)
		}
		return New(chatID)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		logger.Warn(ctx, "store", "session.decode_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return New(chatID)
	}
	sess.ChatID = chatID
	if sess.State == "" {
		sess.State = StateIdle
	}
	return &sess
}

// Update applies mutate to the current session, stamps LastCommandAt,
// persists and returns the result. Persist errors propagate.
func (s *RedisStore) Update(ctx context.Context, chatID int64, mutate func(*Session)) (*Session, error) {
	sess := s.Get(ctx, chatID)
	if mutate != nil {
		mutate(sess)
	}
	sess.ChatID = chatID
	sess.LastCommandAt = time.Now().UnixMilli()

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("session: encode chat %d: %w", chatID, err)
	}
	if err := s.rdb.Set(ctx, sessionKey(chatID), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("session: persist chat %d: %w", chatID, err)
	}

	logger.Debug(ctx, "store", "session.updated",
		slog.Int64("chat_id", chatID),
		slog.String("state", string(sess.State)),
	)
	return sess, nil
}

// Clear removes the chat's session record.
func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.rdb.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("session: clear chat %d: %w", chatID, err)
	}
	return nil
}

// ListAll scans every stored session, skipping entries that fail to decode.
func (s *RedisStore) ListAll(ctx context.Context) ([]*Session, error) {
	var sessions []*Session
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			logger.Warn(ctx, "store", "session.list.skip_malformed",
				slog.String("payload", iter.Val()),
			)
			continue
		}
		sessions = append(sessions, &sess)
	}
	if err := iter.Err(); err != nil {
		return sessions, fmt.Errorf("session: scan: %w", err)
	}
	return sessions, nil
}

// SetExpiry arms a TTL on the chat's session record.
func (s *RedisStore) SetExpiry(ctx context.Context, chatID int64, ttl time.Duration) error {
	if err := s.rdb.Expire(ctx, sessionKey(chatID), ttl).Err(); err != nil {
		return fmt.Errorf("session: expire chat %d: %w", chatID, err)
	}
	return nil
}
