package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newsBody(total, count int) string {
	articles := make([]string, 0, count)
	for i := 0; i < count; i++ {
		articles = append(articles, fmt.Sprintf(`{
			"source": {"id": null, "name": "Source %d"},
			"author": "Author %d",
			"title": "Title %d",
			"description": "Description %d",
			"url": "https://news.example/%d",
			"urlToImage": "https://img.example/%d.png",
			"publishedAt": "2026-10-1%dT08:00:00Z",
			"content": "..."
		}`, i, i, i, i, i, i, i%10))
	}
	return fmt.Sprintf(`{"status":"ok","totalResults":%d,"articles":[%s]}`, total, strings.Join(articles, ","))
}

func TestNewsClient_SearchNews_RequestShape(t *testing.T) {
	server := jsonServer(t, http.StatusOK, newsBody(1, 1), func(r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "artificial intelligence", q.Get("q"))
		assert.Equal(t, "test-api-key-12345", q.Get("apiKey"))
		assert.Equal(t, "de", q.Get("language"))
		assert.Equal(t, "4", q.Get("pageSize"))
		assert.Equal(t, "relevancy", q.Get("sortBy"))
	})
	c := NewNewsClient("test-api-key-12345", server.URL, time.Second)

	r := c.SearchNews(context.Background(), "artificial intelligence", "de", 4)
	require.True(t, r.OK(), "message = %q", r.Message())
}

// TestNewsClient_SearchNews_TruncatesInOrder verifies a page size of 3 keeps exactly
// the first three upstream articles even when the body carries ten.
func TestNewsClient_SearchNews_TruncatesInOrder(t *testing.T) {
	server := jsonServer(t, http.StatusOK, newsBody(1234, 10), nil)
	c := NewNewsClient("test-api-key-12345", server.URL, time.Second)

	r := c.SearchNews(context.Background(), "Tokyo travel OR tourism", "en", 3)
	require.True(t, r.OK(), "message = %q", r.Message())
	got, _ := r.Value()

	require.Len(t, got.Articles, 3)
	for i, a := range got.Articles {
		assert.Equal(t, fmt.Sprintf("Title %d", i), a.Title)
		assert.Equal(t, fmt.Sprintf("Source %d", i), a.Source)
		require.NotNil(t, a.Author)
		assert.Equal(t, fmt.Sprintf("Author %d", i), *a.Author)
		assert.Equal(t, fmt.Sprintf("https://news.example/%d", i), a.URL)
	}
	require.NotNil(t, got.TotalResults)
	assert.Equal(t, 1234, *got.TotalResults)
	assert.Equal(t, "Tokyo travel OR tourism", got.Query)
}

func TestNewsClient_SearchNews_Defaults(t *testing.T) {
	server := jsonServer(t, http.StatusOK, newsBody(0, 0), func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, DefaultLanguage, q.Get("language"))
		assert.Equal(t, "5", q.Get("pageSize"))
	})
	c := NewNewsClient("test-api-key-12345", server.URL, time.Second)

	r := c.SearchNews(context.Background(), "paris", "", 0)
	require.True(t, r.OK(), "message = %q", r.Message())
	got, _ := r.Value()
	assert.NotNil(t, got.Articles, "empty result must encode as [] not null")
	assert.Empty(t, got.Articles)
}

func TestNewsClient_SearchNews_ClampsPageSize(t *testing.T) {
	server := jsonServer(t, http.StatusOK, newsBody(20, 12), func(r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("pageSize"))
	})
	c := NewNewsClient("test-api-key-12345", server.URL, time.Second)

	r := c.SearchNews(context.Background(), "berlin", "en", 50)
	got, ok := r.Value()
	require.True(t, ok)
	assert.Len(t, got.Articles, MaxPageSize)
}

// TestNewsClient_SearchNews_NullFields verifies null upstream fields decode to empty values.
func TestNewsClient_SearchNews_NullFields(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{
		"articles": [{"source": {}, "author": null, "title": null, "description": null, "url": "https://x", "publishedAt": null}]
	}`, nil)
	c := NewNewsClient("test-api-key-12345", server.URL, time.Second)

	got, ok := c.SearchNews(context.Background(), "x", "en", 5).Value()
	require.True(t, ok)
	assert.Nil(t, got.TotalResults)
	require.Len(t, got.Articles, 1)
	assert.Nil(t, got.Articles[0].Author)
	assert.Empty(t, got.Articles[0].Title)
	assert.Empty(t, got.Articles[0].Source)
	assert.Equal(t, "https://x", got.Articles[0].URL)
}
