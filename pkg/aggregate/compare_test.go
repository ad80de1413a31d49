package aggregate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/iziplay/freebooks-api/pkg/aggregate"
	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/iziplay/freebooks-api/pkg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(source string, n int) []book.Book {
	books := make([]book.Book, n)
	for i := range books {
		books[i] = book.Book{
			ID:      fmt.Sprintf("%s-%d", source, i),
			Title:   fmt.Sprintf("%s %d", source, i),
			Authors: []string{},
			Source:  source,
		}
	}
	return books
}

func TestAggregator_Compare(t *testing.T) {
	t.Parallel()

	t.Run("keeps each catalog apart", func(t *testing.T) {
		t.Parallel()

		c := classics()
		cmp, err := c.aggregator().Compare(context.Background(), " pride ", 10)
		require.NoError(t, err)

		assert.Equal(t, "pride", cmp.Query)
		require.Len(t, cmp.Sources, 3)
		assert.Equal(t, []string{"The Great Gatsby", "Pride and Prejudice"}, titles(cmp.Sources["openlibrary"].Books))
		assert.Equal(t, 1, cmp.Sources["gutenberg"].Total)
		for name, res := range cmp.Sources {
			assert.True(t, res.Available, name)
		}
	})

	t.Run("caps every catalog at limit", func(t *testing.T) {
		t.Parallel()

		c := catalogs{
			openlibrary: mock.Returning(numbered(book.SourceOpenLibrary, 12)...),
			gutenberg:   mock.Returning(numbered(book.SourceGutenberg, 2)...),
		}
		cmp, err := c.aggregator().Compare(context.Background(), "q", 5)
		require.NoError(t, err)

		assert.Len(t, cmp.Sources["openlibrary"].Books, 5)
		assert.Equal(t, 12, cmp.Sources["openlibrary"].Total)
		assert.Len(t, cmp.Sources["gutenberg"].Books, 2)
		assert.NotContains(t, cmp.Sources, "googlebooks")
	})

	t.Run("marks failed catalogs unavailable", func(t *testing.T) {
		t.Parallel()

		c := classics()
		c.googlebooks = mock.Failing(errors.New("quota exceeded"))
		cmp, err := c.aggregator().Compare(context.Background(), "q", 10)
		require.NoError(t, err)

		gb := cmp.Sources["googlebooks"]
		assert.False(t, gb.Available)
		assert.Zero(t, gb.Total)
		assert.NotNil(t, gb.Books)
		assert.Empty(t, gb.Books)
		assert.True(t, cmp.Sources["openlibrary"].Available)
	})

	t.Run("asks for the first page", func(t *testing.T) {
		t.Parallel()

		s := &mock.Searcher{SearchFn: func(_ context.Context, _ string, page, limit int) (*book.Page, error) {
			assert.Equal(t, 1, page)
			assert.Equal(t, 3, limit)
			return nil, nil
		}}
		agg := aggregate.New(map[string]book.Searcher{book.SourceGutenberg: s}, aggregate.WithLogger(quiet()))

		cmp, err := agg.Compare(context.Background(), "q", 3)
		require.NoError(t, err)
		assert.True(t, cmp.Sources["gutenberg"].Available)
		assert.NotNil(t, cmp.Sources["gutenberg"].Books)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		t.Parallel()

		agg := classics().aggregator()

		_, err := agg.Compare(context.Background(), "", 10)
		require.ErrorIs(t, err, aggregate.ErrInvalidRequest)

		_, err = agg.Compare(context.Background(), "q", 0)
		require.ErrorIs(t, err, aggregate.ErrInvalidRequest)

		_, err = agg.Compare(context.Background(), "q", aggregate.MaxCompareLimit+1)
		require.ErrorIs(t, err, aggregate.ErrInvalidRequest)
	})
}

func TestAggregator_Random(t *testing.T) {
	t.Parallel()

	full := func() catalogs {
		return catalogs{
			openlibrary: mock.Returning(numbered(book.SourceOpenLibrary, 20)...),
			gutenberg:   mock.Returning(numbered(book.SourceGutenberg, 20)...),
			googlebooks: mock.Returning(numbered(book.SourceGoogleBooks, 20)...),
		}
	}

	t.Run("returns count books drawn from the catalogs", func(t *testing.T) {
		t.Parallel()

		c := full()
		sample, err := c.aggregator().Random(context.Background(), 10)
		require.NoError(t, err)

		assert.Equal(t, 10, sample.Count)
		require.Len(t, sample.Books, 10)

		pool := map[string]bool{}
		for _, s := range []*mock.Searcher{c.openlibrary, c.gutenberg, c.googlebooks} {
			page, err := s.Search(context.Background(), "", 1, 10)
			require.NoError(t, err)
			for _, bk := range page.Books {
				pool[bk.ID] = true
			}
		}
		seen := map[string]bool{}
		for _, bk := range sample.Books {
			assert.True(t, pool[bk.ID], bk.ID)
			assert.False(t, seen[bk.ID], "duplicate %s", bk.ID)
			seen[bk.ID] = true
		}
	})

	t.Run("small counts are never empty", func(t *testing.T) {
		t.Parallel()

		for count := 1; count <= 3; count++ {
			sample, err := full().aggregator().Random(context.Background(), count)
			require.NoError(t, err)
			assert.Len(t, sample.Books, count)
		}
	})

	t.Run("takes a fair share from each catalog", func(t *testing.T) {
		t.Parallel()

		sample, err := full().aggregator().Random(context.Background(), 9)
		require.NoError(t, err)

		per := map[string]int{}
		for _, bk := range sample.Books {
			per[bk.Source]++
		}
		assert.Equal(t, map[string]int{"openlibrary": 3, "gutenberg": 3, "googlebooks": 3}, per)
	})

	t.Run("uses a broad query per catalog", func(t *testing.T) {
		t.Parallel()

		queried := func(want string) *mock.Searcher {
			return &mock.Searcher{SearchFn: func(_ context.Context, query string, _, _ int) (*book.Page, error) {
				assert.Equal(t, want, query)
				return &book.Page{}, nil
			}}
		}
		c := catalogs{
			openlibrary: queried("science fiction"),
			gutenberg:   queried("classic"),
			googlebooks: queried("bestseller"),
		}

		sample, err := c.aggregator().Random(context.Background(), 5)
		require.NoError(t, err)
		assert.Zero(t, sample.Count)
		assert.NotNil(t, sample.Books)
	})

	t.Run("survives failing catalogs", func(t *testing.T) {
		t.Parallel()

		c := full()
		c.gutenberg = mock.Failing(errors.New("down"))
		sample, err := c.aggregator().Random(context.Background(), 6)
		require.NoError(t, err)

		assert.Len(t, sample.Books, 4)
		for _, bk := range sample.Books {
			assert.NotEqual(t, book.SourceGutenberg, bk.Source)
		}
	})

	t.Run("rejects out of range counts", func(t *testing.T) {
		t.Parallel()

		agg := full().aggregator()
		for _, count := range []int{0, -1, aggregate.MaxRandomCount + 1} {
			_, err := agg.Random(context.Background(), count)
			require.ErrorIs(t, err, aggregate.ErrInvalidRequest)
		}
	})
}
