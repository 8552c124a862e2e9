package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/match-center/internal/domain/news"
	"github.com/riskibarqy/match-center/internal/platform/logging"
)

// ArticleExtractor turns an article URL into readable text.
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) (news.Extraction, error)
}

// ArticleService serves reader-mode article text. Successful extractions are
// archived keyed by URL, so repeat requests skip the remote fetch entirely.
type ArticleService struct {
	extractor ArticleExtractor
	repo      news.ExtractionRepository
	logger    *logging.Logger
}

func NewArticleService(extractor ArticleExtractor, repo news.ExtractionRepository, logger *logging.Logger) *ArticleService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ArticleService{
		extractor: extractor,
		repo:      repo,
		logger:    logger,
	}
}

func (s *ArticleService) Extract(ctx context.Context, rawURL string) (news.Extraction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArticleService.Extract")
	defer span.End()

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return news.Extraction{}, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if s.extractor == nil {
		return news.Extraction{}, fmt.Errorf("%w: article extractor is not configured", ErrDependencyUnavailable)
	}

	if s.repo != nil {
		stored, err := s.repo.GetByURL(ctx, rawURL)
		if err != nil {
			s.logger.WarnContext(ctx, "lookup stored extraction failed", "url", rawURL, "error", err)
		} else if stored != nil {
			return *stored, nil
		}
	}

	result, err := s.extractor.Extract(ctx, rawURL)
	if err != nil {
		return news.Extraction{}, err
	}

	if s.repo != nil {
		if err := s.repo.Upsert(ctx, result); err != nil {
			s.logger.WarnContext(ctx, "store extraction failed", "url", rawURL, "error", err)
		}
	}

	return result, nil
}
