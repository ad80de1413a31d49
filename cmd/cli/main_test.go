package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	main "github.com/iziplay/freebooks-api/cmd/cli"
	"github.com/iziplay/freebooks-api/pkg/aggregate"
	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/iziplay/freebooks-api/pkg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAggregator() *aggregate.Aggregator {
	return aggregate.New(map[string]book.Searcher{
		book.SourceOpenLibrary: mock.Returning(
			book.Book{ID: "OL1W", Title: "The Great Gatsby", Authors: []string{"F. Scott Fitzgerald"}, Source: book.SourceOpenLibrary, PublishedDate: "1925"},
			book.Book{ID: "OL2W", Title: "Pride and Prejudice", Authors: []string{"Jane Austen"}, Source: book.SourceOpenLibrary},
		),
		book.SourceGutenberg: mock.Returning(
			book.Book{ID: "1342", Title: "Pride and Prejudice", Authors: []string{"Jane Austen"}, Source: book.SourceGutenberg},
		),
		book.SourceGoogleBooks: mock.Failing(errors.New("quota exceeded")),
	}, aggregate.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	m := &main.Main{Aggregator: testAggregator()}
	err := m.Run(context.Background(), args, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("no command prints help", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
		assert.Contains(t, stdout, "search")
	})

	t.Run("help flag", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, "--help")
		require.NoError(t, err)
		assert.Contains(t, stdout, "compare")
		assert.Contains(t, stdout, "random")
	})

	t.Run("unknown command", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, "borrow")
		assert.Error(t, err)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		t.Parallel()

		m := &main.Main{Lookup: func(key string) (string, bool) {
			if key == "UPSTREAM_TIMEOUT" {
				return "never", true
			}
			return "", false
		}}
		err := m.Run(context.Background(), []string{"random"}, &bytes.Buffer{}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestSearchCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints ranked books", func(t *testing.T) {
		t.Parallel()

		stdout, stderr, err := run(t, "search", "classics")
		require.NoError(t, err)

		assert.Contains(t, stdout, `2 books for "classics" (openlibrary: 2, gutenberg: 1)`)
		assert.Contains(t, stdout, "  1. Pride and Prejudice by Jane Austen [openlibrary]")
		assert.Contains(t, stdout, "  2. The Great Gatsby by F. Scott Fitzgerald [openlibrary] (1925)")
		assert.Empty(t, stderr)
	})

	t.Run("numbers continue across pages", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, "search", "classics", "--page", "2", "--limit", "1")
		require.NoError(t, err)
		assert.Contains(t, stdout, "  2. The Great Gatsby")
		assert.NotContains(t, stdout, "Pride and Prejudice by")
	})

	t.Run("restricts sources", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, "search", "classics", "--sources", "gutenberg", "--json")
		require.NoError(t, err)

		var res aggregate.Result
		require.NoError(t, json.Unmarshal([]byte(stdout), &res))
		assert.Equal(t, map[string]int{"gutenberg": 1}, res.Sources)
		assert.Equal(t, 1, res.TotalResults)
	})

	t.Run("reports invalid requests", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := run(t, "search", "classics", "--limit", "500")
		require.ErrorIs(t, err, aggregate.ErrInvalidRequest)
		assert.Contains(t, stderr, "invalid limit")
	})

	t.Run("warns when no catalog answers", func(t *testing.T) {
		t.Parallel()

		m := &main.Main{Aggregator: aggregate.New(map[string]book.Searcher{
			book.SourceGutenberg: mock.Failing(errors.New("down")),
		}, aggregate.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))}
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		require.NoError(t, m.Run(context.Background(), []string{"search", "x"}, stdout, stderr))
		assert.Contains(t, stderr.String(), "no catalog answered")
		assert.Contains(t, stdout.String(), "No books on this page.")
	})
}

func TestCompareCmd(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "compare", "pride", "--limit", "1")
	require.NoError(t, err)

	assert.Contains(t, stdout, "== openlibrary: 2 total")
	assert.Contains(t, stdout, "== gutenberg: 1 total")
	assert.Contains(t, stdout, "== googlebooks: unavailable")
	assert.NotContains(t, stdout, "Pride and Prejudice by Jane Austen [openlibrary]")
}

func TestRandomCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints count books", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, "random", "--count", "2", "--json")
		require.NoError(t, err)

		var sample aggregate.Sample
		require.NoError(t, json.Unmarshal([]byte(stdout), &sample))
		assert.Equal(t, 2, sample.Count)
		assert.Len(t, sample.Books, 2)
	})

	t.Run("rejects zero", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, "random", "--count", "0")
		require.ErrorIs(t, err, aggregate.ErrInvalidRequest)
	})
}
