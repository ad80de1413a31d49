package routing_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/iziplay/freebooks-api/pkg/aggregate"
	routing "github.com/iziplay/freebooks-api/pkg/api"
	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/iziplay/freebooks-api/pkg/catalog"
	"github.com/iziplay/freebooks-api/pkg/googlebooks"
	"github.com/iziplay/freebooks-api/pkg/mock"
	"github.com/iziplay/freebooks-api/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageBody struct {
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Books []book.Book `json:"books"`
}

func TestOpenLibraryRoutes(t *testing.T) {
	t.Parallel()

	var gotID string
	ol := &mock.OpenLibrary{
		Searcher: mock.Searcher{SearchFn: func(_ context.Context, query string, page, limit int) (*book.Page, error) {
			assert.Equal(t, "dune", query)
			assert.Equal(t, 2, page)
			assert.Equal(t, 5, limit)
			return &book.Page{Books: []book.Book{volume(book.SourceOpenLibrary, "Dune", "Frank Herbert")}, Total: 42}, nil
		}},
		GetFn: func(_ context.Context, id string) (*book.Book, error) {
			gotID = id
			if id == "works/OL0W" {
				return nil, fmt.Errorf("open library get failed: %w", book.ErrNotFound)
			}
			b := volume(book.SourceOpenLibrary, "Dune", "Frank Herbert")
			return &b, nil
		},
		SubjectFn: func(_ context.Context, subject string, page, limit int) (*book.Page, error) {
			assert.Equal(t, "science fiction", subject)
			return &book.Page{Total: 0}, nil
		},
		AuthorWorksFn: func(context.Context, string, int, int) (*book.Page, error) {
			return nil, &catalog.StatusError{StatusCode: http.StatusBadGateway, URL: "https://openlibrary.org/authors/OL1A/works.json"}
		},
	}

	_, api := humatest.New(t)
	routing.Setup(api, routing.Services{OpenLibrary: ol, Logger: quiet()})

	t.Run("search", func(t *testing.T) {
		resp := api.Get("/v1/openlibrary/search?q=dune&page=2&limit=5")
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		body := decode[pageBody](t, resp.Body.Bytes())
		assert.Equal(t, 42, body.Total)
		assert.Equal(t, 2, body.Page)
		assert.Len(t, body.Books, 1)
	})

	t.Run("expands bare keys", func(t *testing.T) {
		resp := api.Get("/v1/openlibrary/books/OL45804W")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "works/OL45804W", gotID)

		api.Get("/v1/openlibrary/books/OL7353617M")
		assert.Equal(t, "books/OL7353617M", gotID)

		api.Get("/v1/openlibrary/books/9780441013593")
		assert.Equal(t, "9780441013593", gotID)
	})

	t.Run("not found", func(t *testing.T) {
		resp := api.Get("/v1/openlibrary/books/OL0W")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("empty subject has an empty list", func(t *testing.T) {
		resp := api.Get("/v1/openlibrary/subjects/science%20fiction")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"books":[]`)
	})

	t.Run("upstream failure", func(t *testing.T) {
		resp := api.Get("/v1/openlibrary/authors/OL1A")
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})
}

func TestGutenbergRoutes(t *testing.T) {
	t.Parallel()

	g := &mock.Gutenberg{
		Searcher: mock.Searcher{SearchFn: func(context.Context, string, int, int) (*book.Page, error) {
			return nil, errors.New("connection reset")
		}},
		GetFn: func(_ context.Context, id int) (*book.Book, error) {
			assert.Equal(t, 1342, id)
			b := volume(book.SourceGutenberg, "Pride and Prejudice", "Austen, Jane")
			return &b, nil
		},
		PopularFn: func(_ context.Context, page, limit int) (*book.Page, error) {
			assert.Equal(t, 1, page)
			assert.Equal(t, 20, limit)
			return &book.Page{Books: []book.Book{volume(book.SourceGutenberg, "Frankenstein")}, Total: 70000}, nil
		},
		ByAuthorFn: func(_ context.Context, name string, _, _ int) (*book.Page, error) {
			assert.Equal(t, "austen", name)
			return &book.Page{}, nil
		},
		BySubjectFn: func(_ context.Context, topic string, _, _ int) (*book.Page, error) {
			assert.Equal(t, "horror", topic)
			return &book.Page{}, nil
		},
		ByLanguageFn: func(_ context.Context, code string, _, _ int) (*book.Page, error) {
			assert.Equal(t, "fr", code)
			return &book.Page{}, nil
		},
	}

	_, api := humatest.New(t)
	routing.Setup(api, routing.Services{Gutenberg: g, Logger: quiet()})

	assert.Equal(t, http.StatusServiceUnavailable, api.Get("/v1/gutenberg/search?q=x").Code)

	resp := api.Get("/v1/gutenberg/books/1342")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Pride and Prejudice", decode[book.Book](t, resp.Body.Bytes()).Title)

	assert.Equal(t, http.StatusUnprocessableEntity, api.Get("/v1/gutenberg/books/0").Code)

	resp = api.Get("/v1/gutenberg/popular")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 70000, decode[pageBody](t, resp.Body.Bytes()).Total)

	assert.Equal(t, http.StatusOK, api.Get("/v1/gutenberg/authors/austen").Code)
	assert.Equal(t, http.StatusOK, api.Get("/v1/gutenberg/subjects/horror").Code)
	assert.Equal(t, http.StatusOK, api.Get("/v1/gutenberg/languages/fr").Code)

	resp = api.Get("/v1/gutenberg/languages")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"code":"en"`)
}

func TestGoogleBooksRoutes(t *testing.T) {
	t.Parallel()

	var isbnCalls int
	gb := &mock.GoogleBooks{
		Searcher: mock.Searcher{SearchFn: func(_ context.Context, _ string, _, limit int) (*book.Page, error) {
			assert.LessOrEqual(t, limit, 40)
			return &book.Page{}, nil
		}},
		GetFn: func(_ context.Context, id string) (*book.Book, error) {
			b := volume(book.SourceGoogleBooks, "Dune")
			b.ID = id
			return &b, nil
		},
		ByISBNFn: func(_ context.Context, code string) (*book.Book, error) {
			isbnCalls++
			assert.Equal(t, "9780441013593", code)
			return nil, book.ErrNotFound
		},
		FreeEbooksFn: func(context.Context, int, int) (*book.Page, error) {
			return &book.Page{}, nil
		},
		BestsellersFn: func(_ context.Context, category string, limit int) (*book.Page, error) {
			assert.Equal(t, "fiction", category)
			assert.Equal(t, 20, limit)
			return &book.Page{Books: []book.Book{volume(book.SourceGoogleBooks, "Dune")}, Total: 1}, nil
		},
	}

	_, api := humatest.New(t)
	routing.Setup(api, routing.Services{GoogleBooks: gb, Logger: quiet()})

	assert.Equal(t, http.StatusOK, api.Get("/v1/googlebooks/search?q=dune&limit=40").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, api.Get("/v1/googlebooks/search?q=dune&limit=41").Code)

	resp := api.Get("/v1/googlebooks/books/zyTCAlFPjgYC")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "zyTCAlFPjgYC", decode[book.Book](t, resp.Body.Bytes()).ID)

	assert.Equal(t, http.StatusNotFound, api.Get("/v1/googlebooks/isbn/978-0-441-01359-3").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, api.Get("/v1/googlebooks/isbn/9780441013590").Code)
	assert.Equal(t, 1, isbnCalls)

	assert.Equal(t, http.StatusOK, api.Get("/v1/googlebooks/free-ebooks").Code)

	resp = api.Get("/v1/googlebooks/bestsellers/fiction")
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[pageBody](t, resp.Body.Bytes())
	assert.Equal(t, 1, body.Page)
	assert.Len(t, body.Books, 1)
}

func TestUpstreamErrorsHideAPIKey(t *testing.T) {
	t.Parallel()

	const key = "SECRET-KEY-123"
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, key, r.URL.Query().Get("key"))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	gb := googlebooks.NewClient(upstream.URL, key, quiet())
	reg := stats.NewRegistry(book.SourceGoogleBooks)
	agg := aggregate.New(map[string]book.Searcher{book.SourceGoogleBooks: gb},
		aggregate.WithLogger(quiet()),
		aggregate.WithStats(reg),
	)

	_, api := humatest.New(t)
	routing.Setup(api, routing.Services{Aggregator: agg, GoogleBooks: gb, Stats: reg, Logger: quiet()})

	resp := api.Get("/v1/search/all?q=dune")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), key)

	resp = api.Get("/v1/statistics/sources")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "429")
	assert.NotContains(t, resp.Body.String(), key)

	resp = api.Get("/v1/googlebooks/search?q=dune")
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.NotContains(t, resp.Body.String(), key)
	assert.NotContains(t, resp.Body.String(), upstream.URL)
}
