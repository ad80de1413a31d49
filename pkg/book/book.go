package book

import (
	"context"
	"errors"
)

// Catalog names. They double as the Source tag of every normalized Book.
const (
	SourceOpenLibrary = "openlibrary"
	SourceGutenberg   = "gutenberg"
	SourceGoogleBooks = "googlebooks"
)

// Sources lists every known catalog in default query order.
var Sources = []string{SourceOpenLibrary, SourceGutenberg, SourceGoogleBooks}

// ErrNotFound is returned by catalog clients when the upstream has no such book.
var ErrNotFound = errors.New("book not found")

// IsSource reports whether name is one of the known catalogs.
func IsSource(name string) bool {
	for _, s := range Sources {
		if s == name {
			return true
		}
	}
	return false
}

// Book is the normalized representation of a book, whatever catalog it came from.
// Only ID, Title and Source are guaranteed to be set.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Source        string   `json:"source"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Description   string   `json:"description,omitempty"`
	ISBN          []string `json:"isbn,omitempty"`
	Pages         int      `json:"pages,omitempty"`
	Language      string   `json:"language,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	Cover         *Cover   `json:"cover,omitempty"`

	OpenLibrary *OpenLibraryInfo `json:"openlibrary,omitempty"`
	Gutenberg   *GutenbergInfo   `json:"gutenberg,omitempty"`
	GoogleBooks *GoogleBooksInfo `json:"googlebooks,omitempty"`
}

// FirstAuthor returns the first listed author, or an empty string.
func (b Book) FirstAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// Cover holds cover image URLs in three sizes
type Cover struct {
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium,omitempty"`
	Large  string `json:"large,omitempty"`
}

type OpenLibraryInfo struct {
	Key              string   `json:"key"`
	Subjects         []string `json:"subjects"`
	HasFulltext      bool     `json:"hasFulltext"`
	LendingAvailable bool     `json:"lendingAvailable"`
	BorrowURL        string   `json:"borrowURL,omitempty"`
	ReadURL          string   `json:"readURL,omitempty"`
}

type GutenbergInfo struct {
	GutenbergID int      `json:"gutenbergID"`
	Downloads   int      `json:"downloads"`
	Formats     []Format `json:"formats"`
	Subjects    []string `json:"subjects"`
	Bookshelves []string `json:"bookshelves"`
	Copyright   string   `json:"copyright"`
}

// Format is a downloadable rendition of a public domain book.
type Format struct {
	Format string `json:"format"`
	URL    string `json:"url"`
}

type GoogleBooksInfo struct {
	GoogleID      string   `json:"googleID"`
	PreviewLink   string   `json:"previewLink,omitempty"`
	InfoLink      string   `json:"infoLink,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	Categories    []string `json:"categories"`
	AverageRating float64  `json:"averageRating,omitempty"`
	RatingsCount  int      `json:"ratingsCount,omitempty"`
	Viewability   string   `json:"viewability,omitempty"`
}

// Page is one page of results returned by a single catalog.
type Page struct {
	Books []Book `json:"books"`
	// Total is the upstream's own count of matching books.
	Total int `json:"total"`
}

// Searcher is implemented by every catalog client.
//
// Search must return within a bounded time: implementations enforce their
// own timeout so callers joining several searches never hang.
type Searcher interface {
	Search(ctx context.Context, query string, page, limit int) (*Page, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string, page, limit int) (*Page, error)

func (f SearcherFunc) Search(ctx context.Context, query string, page, limit int) (*Page, error) {
	return f(ctx, query, page, limit)
}
