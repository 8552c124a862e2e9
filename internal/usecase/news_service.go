package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/match-center/internal/domain/news"
	"github.com/riskibarqy/match-center/internal/domain/rawdata"
	"github.com/riskibarqy/match-center/internal/platform/cache"
	"github.com/riskibarqy/match-center/internal/platform/logging"
)

// NewsProvider supplies article search pages from the news provider.
type NewsProvider interface {
	Search(ctx context.Context, query string, page, pageSize int) (news.Page, rawdata.Payload, error)
}

// NewsService serves headline pages with a stale fallback: when the provider
// refuses a refresh (quota, open circuit), the last cached page for that key
// is served marked stale instead of surfacing the error.
type NewsService struct {
	provider     NewsProvider
	archiver     rawPayloadArchiver
	cache        *cache.Store
	logger       *logging.Logger
	defaultQuery string
	pageSize     int
}

func NewNewsService(
	provider NewsProvider,
	archiver rawPayloadArchiver,
	store *cache.Store,
	logger *logging.Logger,
	defaultQuery string,
	pageSize int,
) *NewsService {
	if logger == nil {
		logger = logging.Default()
	}

	defaultQuery = strings.TrimSpace(defaultQuery)
	if defaultQuery == "" {
		defaultQuery = "football"
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	return &NewsService{
		provider:     provider,
		archiver:     archiver,
		cache:        store,
		logger:       logger,
		defaultQuery: defaultQuery,
		pageSize:     pageSize,
	}
}

// Search returns one page of headlines. An empty query falls back to the
// configured default topic.
func (s *NewsService) Search(ctx context.Context, query string, page, pageSize int) (news.Page, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NewsService.Search")
	defer span.End()

	if s.provider == nil {
		return news.Page{}, fmt.Errorf("%w: news provider is not configured", ErrDependencyUnavailable)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		query = s.defaultQuery
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}

	key := newsCacheKey(query, page, pageSize)
	if s.cache != nil {
		if value, ok := s.cache.Get(ctx, key); ok {
			if cached, ok := value.(news.Page); ok {
				return cached, nil
			}
		}
	}

	result, payload, err := s.provider.Search(ctx, query, page, pageSize)
	if err != nil {
		if stale, ok := s.stalePage(ctx, key); ok && isRefreshRefusal(err) {
			s.logger.WarnContext(ctx, "news refresh refused, serving stale page",
				"query", query, "page", page, "error", err)
			return stale, nil
		}
		return news.Page{}, err
	}

	if s.archiver != nil {
		if archiveErr := s.archiver.UpsertRawPayloads(ctx, "newsapi", []rawdata.Payload{payload}); archiveErr != nil {
			s.logger.WarnContext(ctx, "archive news payload failed", "query", query, "error", archiveErr)
		}
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, result)
	}

	return result, nil
}

func (s *NewsService) stalePage(ctx context.Context, key string) (news.Page, bool) {
	if s.cache == nil {
		return news.Page{}, false
	}

	value, ok, _ := s.cache.GetStale(ctx, key)
	if !ok {
		return news.Page{}, false
	}

	cached, ok := value.(news.Page)
	if !ok {
		return news.Page{}, false
	}
	cached.Stale = true
	return cached, true
}

// isRefreshRefusal reports whether the provider declined to serve rather than
// failed transiently. Only refusals justify falling back to stale content.
func isRefreshRefusal(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrDependencyUnavailable)
}

func newsCacheKey(query string, page, pageSize int) string {
	return fmt.Sprintf("news:%s:%d:%d", strings.ToLower(query), page, pageSize)
}
