package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/benbeisheim/variantchess-backend/internal/model"
)

// MemoryStore keeps encoded records in a map. Records are stored as JSON so
// callers never share state with the store.
type MemoryStore struct {
	rooms map[string][]byte
	mu    sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string][]byte)}
}

func (s *MemoryStore) Save(_ context.Context, rec model.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[rec.ID] = data
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (model.Record, error) {
	s.mu.RLock()
	data, ok := s.rooms[id]
	s.mu.RUnlock()
	if !ok {
		return model.Record{}, ErrNotFound
	}
	var rec model.Record
	err := json.Unmarshal(data, &rec)
	return rec, err
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	recs := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		var rec model.Record
		if err := json.Unmarshal(s.rooms[id], &rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
