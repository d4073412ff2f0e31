package tokenstore

import (
	"context"
	"sync"
	"time"

	"jo3qma.com/book_market/internal/domain/repository"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore はプロセス内にトークンを保持する TokenStore です
// 単一インスタンスでの運用や開発用に使用します
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore は新しいMemoryStoreを作成します
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sessionID] = memoryEntry{token: token, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return "", repository.ErrTokenNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, sessionID)
		return "", repository.ErrTokenNotFound
	}
	return e.token, nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}
