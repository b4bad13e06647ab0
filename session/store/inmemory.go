// Package store holds the chat storage backends.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	errorspkg "github.com/sweetpotato0/chatroute/errors"
	"github.com/sweetpotato0/chatroute/session"
)

// InMemoryStore implements chat storage in process memory
type InMemoryStore struct {
	mu    sync.RWMutex
	chats map[string]*session.Record
}

// NewInMemoryStore creates a new in-memory chat store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		chats: make(map[string]*session.Record),
	}
}

// Save saves a chat to the store
func (s *InMemoryStore) Save(ctx context.Context, record *session.Record) error {
	if err := checkRecord(record); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[record.ID] = record.Clone()
	return nil
}

// Load loads a chat from the store
func (s *InMemoryStore) Load(ctx context.Context, id string) (*session.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.chats[id]
	if !exists {
		return nil, notFound(id)
	}
	return record.Clone(), nil
}

// Delete removes a chat from the store
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chats[id]; !exists {
		return notFound(id)
	}
	delete(s.chats, id)
	return nil
}

// List returns all chat IDs in the store, sorted
func (s *InMemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.chats))
	for id := range s.chats {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Count returns the number of chats in the store
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats), nil
}

// Exists checks if a chat exists
func (s *InMemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.chats[id]
	return exists, nil
}

func checkRecord(record *session.Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("chat record must have an id: %w", errorspkg.ErrInvalidInput)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("chat %s: %w", id, errorspkg.ErrNotFound)
}
