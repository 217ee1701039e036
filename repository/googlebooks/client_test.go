package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearch_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "golang", q.Get("q"))
		require.Equal(t, "10", q.Get("maxResults"))
		require.Equal(t, "20", q.Get("startIndex"))
		require.Equal(t, "books", q.Get("printType"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalItems": 2, "items": [{"id": "a"}, {"id": "b"}]}`))
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)
	page, err := repo.Search(context.Background(), "golang", 10, 20)
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalItems)
	require.Len(t, page.Items, 2)
}

func TestByCategory_SubjectQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "subject:history", r.URL.Query().Get("q"))
		require.Equal(t, "relevance", r.URL.Query().Get("orderBy"))
		w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)
	page, err := repo.ByCategory(context.Background(), "history", 20, 0)
	require.NoError(t, err)
	require.Equal(t, 0, page.TotalItems)
	require.Empty(t, page.Items)
}

func TestByID_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vol-1", r.URL.Path)
		w.Write([]byte(`{
			"id": "vol-1",
			"volumeInfo": {
				"title": "The Go Programming Language",
				"authors": ["Alan Donovan", "Brian Kernighan"],
				"publisher": "Addison-Wesley",
				"language": "en",
				"imageLinks": {"thumbnail": "http://img/full.jpg", "smallThumbnail": "http://img/small.jpg"}
			}
		}`))
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)
	b, err := repo.ByID(context.Background(), "vol-1")
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Equal(t, "The Go Programming Language", b.Title)
	require.Equal(t, []string{"Alan Donovan", "Brian Kernighan"}, b.Authors)
	require.NotNil(t, b.Thumbnail)
	require.Equal(t, "http://img/full.jpg", *b.Thumbnail)
}

func TestByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)
	b, err := repo.ByID(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, b)
}

func TestByID_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)
	_, err := repo.ByID(context.Background(), "vol-1")
	require.Error(t, err)
}

func TestFormat_Fallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "bare", "volumeInfo": {}}`))
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)
	b, err := repo.ByID(context.Background(), "bare")
	require.NoError(t, err)
	require.Equal(t, "Untitled", b.Title)
	require.Equal(t, []string{}, b.Authors)
	require.Equal(t, "Unknown publisher", b.Publisher)
	require.Equal(t, "No description available", b.Description)
	require.Equal(t, []string{}, b.Categories)
	require.Equal(t, "unknown", b.Language)
	require.Nil(t, b.Thumbnail)
}

func TestFormat_SmallThumbnailFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "s", "volumeInfo": {"imageLinks": {"smallThumbnail": "http://img/small.jpg"}}}`))
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)
	b, err := repo.ByID(context.Background(), "s")
	require.NoError(t, err)
	require.NotNil(t, b.Thumbnail)
	require.Equal(t, "http://img/small.jpg", *b.Thumbnail)
}
