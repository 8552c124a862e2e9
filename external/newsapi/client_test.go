package newsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-center/internal/usecase"
)

func TestMapArticle(t *testing.T) {
	t.Parallel()

	raw := `{
		"source": {"id": null, "name": "BBC Sport"},
		"author": "Reporter Name",
		"title": "Liverpool edge Arsenal in title showdown",
		"description": "Late goal settles it.",
		"url": "https://example.com/liverpool-arsenal",
		"urlToImage": "https://example.com/cover.jpg",
		"publishedAt": "2026-03-07T19:45:00Z",
		"content": "Match report..."
	}`

	var item articleItem
	if err := sonic.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("unmarshal article: %v", err)
	}

	mapped := mapArticle(item)
	if mapped.Source != "BBC Sport" {
		t.Fatalf("unexpected source: %q", mapped.Source)
	}
	if mapped.Title != "Liverpool edge Arsenal in title showdown" {
		t.Fatalf("unexpected title: %q", mapped.Title)
	}
	if mapped.URL != "https://example.com/liverpool-arsenal" {
		t.Fatalf("unexpected url: %q", mapped.URL)
	}
	want := time.Date(2026, 3, 7, 19, 45, 0, 0, time.UTC)
	if !mapped.PublishedAt.Equal(want) {
		t.Fatalf("unexpected published at: %s", mapped.PublishedAt)
	}
}

func TestSearch_MapsResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/everything" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get(apiKeyHeader) != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.URL.Query().Get("q") != "liverpool" {
			t.Errorf("unexpected query: %s", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"totalResults": 2,
			"articles": [
				{"source": {"name": "A"}, "title": "First", "url": "https://e.com/1", "publishedAt": "2026-03-07T10:00:00Z"},
				{"source": {"name": "B"}, "title": "", "url": "https://e.com/2", "publishedAt": "2026-03-07T11:00:00Z"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "test-key"})
	page, payload, err := client.Search(context.Background(), "liverpool", 1, 20)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.TotalResults != 2 {
		t.Fatalf("expected totalResults=2, got=%d", page.TotalResults)
	}
	if len(page.Articles) != 1 {
		t.Fatalf("untitled article should be dropped, got=%d articles", len(page.Articles))
	}
	if page.Articles[0].Title != "First" {
		t.Fatalf("unexpected article: %+v", page.Articles[0])
	}
	if payload.Source != "newsapi" || payload.EntityType != "news" {
		t.Fatalf("unexpected payload metadata: %+v", payload)
	}
}

func TestSearch_RateLimitIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"request quota exceeded"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "test-key", MaxRetries: 3})
	_, _, err := client.Search(context.Background(), "liverpool", 1, 20)
	if !errors.Is(err, usecase.ErrRateLimited) {
		t.Fatalf("expected rate-limited error, got=%v", err)
	}
	if calls != 1 {
		t.Fatalf("rate-limited request retried %d times", calls)
	}
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://localhost:0", APIKey: "k"})
	_, _, err := client.Search(context.Background(), "  ", 1, 20)
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got=%v", err)
	}
}
