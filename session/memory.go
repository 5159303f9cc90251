package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and development.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64][]byte
	expiries map[int64]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64][]byte),
		expiries: make(map[int64]time.Time),
	}
}

func (m *MemoryStore) load(chatID int64) *Session {
	data, ok := m.sessions[chatID]
	if !ok {
		return New(chatID)
	}
	if exp, armed := m.expiries[chatID]; armed && time.Now().After(exp) {
		delete(m.sessions, chatID)
		delete(m.expiries, chatID)
		return New(chatID)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return New(chatID)
	}
	return &sess
}

// Get returns the stored session or a fresh IDLE one. It takes the write
// lock because load drops expired records.
func (m *MemoryStore) Get(ctx context.Context, chatID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(chatID)
}

// Update applies mutate, stamps LastCommandAt and persists.
func (m *MemoryStore) Update(ctx context.Context, chatID int64, mutate func(*Session)) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.load(chatID)
	if mutate != nil {
		mutate(sess)
	}
	sess.ChatID = chatID
	sess.LastCommandAt = time.Now().UnixMilli()

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	m.sessions[chatID] = data
	return sess, nil
}

// Clear removes the chat's session.
func (m *MemoryStore) Clear(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	delete(m.expiries, chatID)
	return nil
}

// ListAll returns all stored sessions.
func (m *MemoryStore) ListAll(ctx context.Context) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for chatID, data := range m.sessions {
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		sess.ChatID = chatID
		sessions = append(sessions, &sess)
	}
	return sessions, nil
}

// SetExpiry arms a TTL on the chat's session.
func (m *MemoryStore) SetExpiry(ctx context.Context, chatID int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[chatID]; ok {
		m.expiries[chatID] = time.Now().Add(ttl)
	}
	return nil
}
