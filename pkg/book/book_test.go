package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSource(t *testing.T) {
	assert.True(t, IsSource("openlibrary"))
	assert.True(t, IsSource("gutenberg"))
	assert.True(t, IsSource("googlebooks"))
	assert.False(t, IsSource("OpenLibrary"))
	assert.False(t, IsSource(""))
	assert.False(t, IsSource("amazon"))
}

func TestFirstAuthor(t *testing.T) {
	assert.Equal(t, "", Book{}.FirstAuthor())
	assert.Equal(t, "Jane Austen", Book{Authors: []string{"Jane Austen", "Someone Else"}}.FirstAuthor())
}

func TestSearcherFunc(t *testing.T) {
	var called bool
	s := SearcherFunc(func(ctx context.Context, query string, page, limit int) (*Page, error) {
		called = true
		assert.Equal(t, "dune", query)
		assert.Equal(t, 2, page)
		assert.Equal(t, 10, limit)
		return &Page{Total: 1, Books: []Book{{ID: "1", Title: "Dune", Source: SourceGoogleBooks}}}, nil
	})

	p, err := s.Search(context.Background(), "dune", 2, 10)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 1, p.Total)
	assert.Len(t, p.Books, 1)
}
