package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/match-center/internal/domain/rawdata"
)

// RawDataRepository keeps archived payloads in process memory. It backs the
// API when no database is configured.
type RawDataRepository struct {
	mu    sync.RWMutex
	items map[string]rawdata.Payload
}

func NewRawDataRepository() *RawDataRepository {
	return &RawDataRepository{items: make(map[string]rawdata.Payload)}
}

func (r *RawDataRepository) UpsertMany(_ context.Context, items []rawdata.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		key := fmt.Sprintf("%s|%s|%s", item.Source, item.EntityType, item.EntityKey)
		r.items[key] = item
	}
	return nil
}

// Len reports how many distinct payloads are stored.
func (r *RawDataRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
