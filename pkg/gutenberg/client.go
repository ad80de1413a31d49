// Package gutenberg is a client for Project Gutenberg metadata served by Gutendex.
package gutenberg

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/iziplay/freebooks-api/pkg/catalog"
	"golang.org/x/text/cases"
)

const DefaultBaseURL = "https://gutendex.com"

var downloadable = []string{"epub", "pdf", "text/plain", "html", "mobi"}

var languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "es", Name: "Spanish"},
	{Code: "it", Name: "Italian"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "fi", Name: "Finnish"},
	{Code: "nl", Name: "Dutch"},
	{Code: "zh", Name: "Chinese"},
	{Code: "ja", Name: "Japanese"},
}

var _ book.Searcher = (*Client)(nil)

type Client struct {
	api    *catalog.Client
	logger *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger, opts ...catalog.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:    catalog.New(baseURL, opts...),
		logger: logger.With("source", book.SourceGutenberg),
	}
}

// Search runs a title/author search.
func (c *Client) Search(ctx context.Context, query string, page, limit int) (*book.Page, error) {
	return c.list(ctx, url.Values{"search": {query}}, page, limit)
}

// Get returns a book by its numeric Gutenberg id.
func (c *Client) Get(ctx context.Context, id int) (*book.Book, error) {
	var rec Record
	if err := c.api.GetJSON(ctx, "/books/"+strconv.Itoa(id), nil, &rec); err != nil {
		return nil, fmt.Errorf("gutenberg get %d failed: %w", id, err)
	}
	b := fromRecord(rec)
	return &b, nil
}

// Popular lists the most downloaded books.
func (c *Client) Popular(ctx context.Context, page, limit int) (*book.Page, error) {
	return c.list(ctx, url.Values{"sort": {"popular"}}, page, limit)
}

// ByAuthor searches for name and keeps only books with a matching author.
// Total is the number of kept books.
func (c *Client) ByAuthor(ctx context.Context, name string, page, limit int) (*book.Page, error) {
	p, err := c.list(ctx, url.Values{"search": {name}}, page, 0)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(name))
	filtered := make([]book.Book, 0, len(p.Books))
	for _, b := range p.Books {
		for _, a := range b.Authors {
			if strings.Contains(fold.String(a), needle) {
				filtered = append(filtered, b)
				break
			}
		}
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return &book.Page{Books: filtered, Total: len(filtered)}, nil
}

// BySubject lists books whose subjects or bookshelves match topic.
func (c *Client) BySubject(ctx context.Context, topic string, page, limit int) (*book.Page, error) {
	return c.list(ctx, url.Values{"topic": {topic}}, page, limit)
}

// ByLanguage lists books written in the given two-letter language code.
func (c *Client) ByLanguage(ctx context.Context, code string, page, limit int) (*book.Page, error) {
	return c.list(ctx, url.Values{"languages": {code}}, page, limit)
}

// Languages returns the languages most represented in the collection.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Gutendex pages hold 32 books whatever we ask for; limit only truncates the result.
func (c *Client) list(ctx context.Context, params url.Values, page, limit int) (*book.Page, error) {
	if page < 1 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))

	var resp BooksResponse
	if err := c.api.GetJSON(ctx, "/books", params, &resp); err != nil {
		return nil, fmt.Errorf("gutenberg listing failed: %w", err)
	}

	records := resp.Results
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	books := make([]book.Book, 0, len(records))
	for _, r := range records {
		books = append(books, fromRecord(r))
	}
	c.logger.Debug("Listed books", "page", page, "count", len(books), "total", resp.Count)
	return &book.Page{Books: books, Total: resp.Count}, nil
}

func fromRecord(r Record) book.Book {
	authors := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		authors = append(authors, a.Name)
	}

	mimeTypes := make([]string, 0, len(r.Formats))
	for mimeType := range r.Formats {
		mimeTypes = append(mimeTypes, mimeType)
	}
	sort.Strings(mimeTypes)

	formats := make([]book.Format, 0, len(mimeTypes))
	for _, mimeType := range mimeTypes {
		if !isDownloadable(mimeType) {
			continue
		}
		formats = append(formats, book.Format{
			Format: strings.TrimSpace(strings.Split(mimeType, ";")[0]),
			URL:    r.Formats[mimeType],
		})
	}

	var cover *book.Cover
	if u := r.Formats["image/jpeg"]; u != "" {
		cover = &book.Cover{Small: u, Medium: u, Large: u}
	}

	language := "en"
	if len(r.Languages) > 0 {
		language = r.Languages[0]
	}

	title := r.Title
	if title == "" {
		title = "Unknown Title"
	}

	return book.Book{
		ID:        strconv.Itoa(r.ID),
		Title:     title,
		Authors:   authors,
		Source:    book.SourceGutenberg,
		Language:  language,
		Publisher: "Project Gutenberg",
		Cover:     cover,
		Gutenberg: &book.GutenbergInfo{
			GutenbergID: r.ID,
			Downloads:   r.DownloadCount,
			Formats:     formats,
			Subjects:    nonNil(r.Subjects),
			Bookshelves: nonNil(r.Bookshelves),
			Copyright:   "Public Domain",
		},
	}
}

func isDownloadable(mimeType string) bool {
	lower := strings.ToLower(mimeType)
	for _, ext := range downloadable {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
