package news

import "time"

// Article is one headline entry from the news provider.
type Article struct {
	Source      string    `json:"source"`
	Author      string    `json:"author,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Page is one page of search results. Stale marks pages served from cache
// after the provider refused a refresh.
type Page struct {
	Query        string    `json:"query"`
	Page         int       `json:"page"`
	PageSize     int       `json:"pageSize"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Stale        bool      `json:"stale,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// Extraction is the readable-text form of a full article page.
type Extraction struct {
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Byline      string    `json:"byline,omitempty"`
	SiteName    string    `json:"siteName,omitempty"`
	Paragraphs  []string  `json:"paragraphs"`
	Text        string    `json:"text"`
	WordCount   int       `json:"wordCount"`
	ExtractedAt time.Time `json:"extractedAt"`
}
