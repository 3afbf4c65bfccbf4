package client

import (
	"context"
	"strconv"
	"time"

	"github.com/kjstillabower/travel-research-service/internal/models"
)

const (
	// DefaultNewsURL is the NewsAPI v2 root; the adapter appends /everything.
	DefaultNewsURL = "https://newsapi.org/v2"

	DefaultLanguage = "en"
	DefaultPageSize = 5
	MaxPageSize     = 10
)

// NewsClient searches articles on NewsAPI.
type NewsClient struct {
	upstream
}

// NewNewsClient returns an adapter for apiURL. An empty apiKey is allowed:
// every call then fails with "News API key not configured".
func NewNewsClient(apiKey, apiURL string, timeout time.Duration) *NewsClient {
	if apiURL == "" {
		apiURL = DefaultNewsURL
	}
	return &NewsClient{upstream: newUpstream(ServiceNews, "News", apiKey, apiURL, timeout)}
}

type newsAPIResponse struct {
	TotalResults *int `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      *string `json:"author"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		URL         string  `json:"url"`
		PublishedAt string  `json:"publishedAt"`
	} `json:"articles"`
}

// SearchNews returns up to pageSize articles matching query, sorted by relevancy.
// An empty language falls back to DefaultLanguage; pageSize is clamped to [1, MaxPageSize].
func (c *NewsClient) SearchNews(ctx context.Context, query, language string, pageSize int) models.Result[models.NewsPayload] {
	if f := c.checkConfigured(); f != nil {
		return resultOf(ctx, &c.upstream, models.NewsPayload{}, f)
	}
	if language == "" {
		language = DefaultLanguage
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	var body newsAPIResponse
	req := c.http.R().SetQueryParams(map[string]string{
		"q":        query,
		"apiKey":   c.apiKey,
		"language": language,
		"pageSize": strconv.Itoa(pageSize),
		"sortBy":   "relevancy",
	})
	if f := c.get(ctx, req, "/everything", &body); f != nil {
		return resultOf(ctx, &c.upstream, models.NewsPayload{}, f)
	}
	return resultOf(ctx, &c.upstream, mapNews(body, query, pageSize), nil)
}

// mapNews keeps upstream order and drops everything past pageSize.
func mapNews(body newsAPIResponse, query string, pageSize int) models.NewsPayload {
	n := len(body.Articles)
	if n > pageSize {
		n = pageSize
	}
	articles := make([]models.Article, 0, n)
	for _, a := range body.Articles[:n] {
		articles = append(articles, models.Article{
			Title:       a.Title,
			Source:      a.Source.Name,
			Author:      a.Author,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return models.NewsPayload{
		TotalResults: body.TotalResults,
		Articles:     articles,
		Query:        query,
	}
}
