package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-center/internal/domain/news"
	qb "github.com/riskibarqy/match-center/internal/platform/querybuilder"
)

type ExtractionRepository struct {
	db *sqlx.DB
}

func NewExtractionRepository(db *sqlx.DB) *ExtractionRepository {
	return &ExtractionRepository{db: db}
}

func (r *ExtractionRepository) Upsert(ctx context.Context, item news.Extraction) error {
	paragraphs, err := sonic.MarshalString(item.Paragraphs)
	if err != nil {
		return fmt.Errorf("encode extraction paragraphs: %w", err)
	}

	insertModel := extractionInsertModel{
		URL:         item.URL,
		Title:       item.Title,
		Byline:      item.Byline,
		SiteName:    item.SiteName,
		Paragraphs:  paragraphs,
		TextContent: item.Text,
		WordCount:   item.WordCount,
		ExtractedAt: item.ExtractedAt,
	}

	query, args, err := qb.InsertModel("article_extractions", insertModel, `ON CONFLICT (url)
DO UPDATE SET
    title = EXCLUDED.title,
    byline = EXCLUDED.byline,
    site_name = EXCLUDED.site_name,
    paragraphs = EXCLUDED.paragraphs,
    text_content = EXCLUDED.text_content,
    word_count = EXCLUDED.word_count,
    extracted_at = EXCLUDED.extracted_at,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert extraction query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert extraction url=%s: %w", item.URL, err)
	}

	return nil
}

func (r *ExtractionRepository) GetByURL(ctx context.Context, url string) (*news.Extraction, error) {
	query, args, err := qb.Select(
		"url", "title", "byline", "site_name", "paragraphs", "text_content", "word_count", "extracted_at",
	).
		From("article_extractions").
		Where(qb.Eq("url", url)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select extraction query: %w", err)
	}

	var model extractionRowModel
	if err := r.db.GetContext(ctx, &model, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select extraction url=%s: %w", url, err)
	}

	var paragraphs []string
	if model.Paragraphs != "" {
		if err := sonic.UnmarshalString(model.Paragraphs, &paragraphs); err != nil {
			return nil, fmt.Errorf("decode extraction paragraphs url=%s: %w", url, err)
		}
	}

	return &news.Extraction{
		URL:         model.URL,
		Title:       model.Title,
		Byline:      model.Byline,
		SiteName:    model.SiteName,
		Paragraphs:  paragraphs,
		Text:        model.TextContent,
		WordCount:   model.WordCount,
		ExtractedAt: model.ExtractedAt,
	}, nil
}

type extractionInsertModel struct {
	URL         string    `db:"url"`
	Title       string    `db:"title"`
	Byline      string    `db:"byline"`
	SiteName    string    `db:"site_name"`
	Paragraphs  string    `db:"paragraphs"`
	TextContent string    `db:"text_content"`
	WordCount   int       `db:"word_count"`
	ExtractedAt time.Time `db:"extracted_at"`
}

type extractionRowModel struct {
	URL         string    `db:"url"`
	Title       string    `db:"title"`
	Byline      string    `db:"byline"`
	SiteName    string    `db:"site_name"`
	Paragraphs  string    `db:"paragraphs"`
	TextContent string    `db:"text_content"`
	WordCount   int       `db:"word_count"`
	ExtractedAt time.Time `db:"extracted_at"`
}
