package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/match-center/internal/domain/news"
)

// ExtractionRepository stores article extractions keyed by URL in process
// memory.
type ExtractionRepository struct {
	mu    sync.RWMutex
	items map[string]news.Extraction
}

func NewExtractionRepository() *ExtractionRepository {
	return &ExtractionRepository{items: make(map[string]news.Extraction)}
}

func (r *ExtractionRepository) Upsert(_ context.Context, item news.Extraction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.URL] = item
	return nil
}

func (r *ExtractionRepository) GetByURL(_ context.Context, url string) (*news.Extraction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[url]
	if !ok {
		return nil, nil
	}
	return &item, nil
}
