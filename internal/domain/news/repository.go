package news

import "context"

// ExtractionRepository archives extracted article text keyed by URL.
type ExtractionRepository interface {
	Upsert(ctx context.Context, item Extraction) error
	GetByURL(ctx context.Context, url string) (*Extraction, error)
}
