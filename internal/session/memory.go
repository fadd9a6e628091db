package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore — хранилище сессий в памяти процесса с TTL. Используется когда
// Redis не настроен, и в тестах.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
	}
}

func (m *MemoryStore) Get(ctx context.Context, tgID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[tgID]
	if !ok {
		return nil, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, tgID)
		return nil, nil
	}
	return e.session, nil
}

func (m *MemoryStore) Put(ctx context.Context, tgID int64, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[tgID] = memoryEntry{
		session:   s,
		expiresAt: time.Now().Add(m.ttl),
	}

	// попутная уборка истёкших записей, чтобы карта не росла бесконечно
	now := time.Now()
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, tgID)
	return nil
}
