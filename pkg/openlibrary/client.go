// Package openlibrary is a client for the Open Library (Internet Archive) API.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/iziplay/freebooks-api/pkg/catalog"
	"github.com/iziplay/freebooks-api/pkg/isbn"
)

const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultCoversURL = "https://covers.openlibrary.org/b"
)

const searchFields = "key,title,author_name,first_publish_year,isbn,cover_i,subject,number_of_pages_median,language,publisher,has_fulltext,lending_edition_s,ia"

var _ book.Searcher = (*Client)(nil)

// Client talks to Open Library.
type Client struct {
	api       *catalog.Client
	coversURL string
	logger    *slog.Logger
}

// NewClient creates an Open Library client rooted at baseURL.
// Empty URLs fall back to the public endpoints.
func NewClient(baseURL, coversURL string, logger *slog.Logger, opts ...catalog.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if coversURL == "" {
		coversURL = DefaultCoversURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:       catalog.New(baseURL, opts...),
		coversURL: strings.TrimRight(coversURL, "/"),
		logger:    logger.With("source", book.SourceOpenLibrary),
	}
}

// Search runs a full-text search.
func (c *Client) Search(ctx context.Context, query string, page, limit int) (*book.Page, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("offset", strconv.Itoa(catalog.Offset(page, limit)))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)

	var resp SearchResponse
	if err := c.api.GetJSON(ctx, "/search.json", params, &resp); err != nil {
		return nil, fmt.Errorf("open library search failed: %w", err)
	}

	books := make([]book.Book, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		books = append(books, c.fromDoc(doc))
	}
	return &book.Page{Books: books, Total: resp.NumFound}, nil
}

// Get returns a single work or edition. id is either an Open Library path
// such as "works/OL45804W" or a bare ISBN.
func (c *Client) Get(ctx context.Context, id string) (*book.Book, error) {
	id = strings.Trim(id, "/")
	path := "/" + id + ".json"
	if n := isbn.Normalize(id); n == id && (len(n) == 10 || len(n) == 13) {
		path = "/isbn/" + n + ".json"
	}

	var work Work
	if err := c.api.GetJSON(ctx, path, nil, &work); err != nil {
		return nil, fmt.Errorf("open library get %s failed: %w", id, err)
	}

	authors := make([]string, 0, len(work.Authors))
	for _, a := range work.Authors {
		key := a.Key
		if a.Author != nil {
			key = a.Author.Key
		}
		if key == "" {
			continue
		}
		var author Author
		if err := c.api.GetJSON(ctx, key+".json", nil, &author); err != nil {
			c.logger.Debug("Failed to resolve author", "key", key, "error", err)
			continue
		}
		if author.Name == "" {
			author.Name = "Unknown"
		}
		authors = append(authors, author.Name)
	}

	var cover *book.Cover
	if len(work.Covers) > 0 && work.Covers[0] > 0 {
		cover = c.cover(work.Covers[0])
	}

	language := "en"
	if len(work.Languages) > 0 {
		parts := strings.Split(work.Languages[0].Key, "/")
		language = parts[len(parts)-1]
	}

	isbns := work.ISBN13
	if len(isbns) == 0 {
		isbns = work.ISBN10
	}

	key := work.Key
	if key == "" {
		key = "/" + id
	}

	return &book.Book{
		ID:            id,
		Title:         orDefault(work.Title, "Unknown Title"),
		Authors:       authors,
		Source:        book.SourceOpenLibrary,
		PublishedDate: work.PublishDate,
		Description:   description(work.Description),
		ISBN:          isbn.Unique(isbns),
		Pages:         work.NumberOfPages,
		Language:      language,
		Publisher:     first(work.Publishers),
		Cover:         cover,
		OpenLibrary: &book.OpenLibraryInfo{
			Key:       key,
			Subjects:  truncate(work.Subjects, 10),
			BorrowURL: c.api.BaseURL() + "/" + id,
		},
	}, nil
}

// Subject lists works filed under a subject such as "science_fiction".
func (c *Client) Subject(ctx context.Context, subject string, page, limit int) (*book.Page, error) {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(catalog.Offset(page, limit)))
	params.Set("limit", strconv.Itoa(limit))

	var resp SubjectResponse
	if err := c.api.GetJSON(ctx, "/subjects/"+url.PathEscape(subject)+".json", params, &resp); err != nil {
		return nil, fmt.Errorf("open library subject %s failed: %w", subject, err)
	}

	books := make([]book.Book, 0, len(resp.Works))
	for _, w := range resp.Works {
		authors := make([]string, 0, len(w.Authors))
		for _, a := range w.Authors {
			authors = append(authors, orDefault(a.Name, "Unknown"))
		}
		var cover *book.Cover
		if w.CoverID > 0 {
			cover = c.cover(w.CoverID)
		}
		books = append(books, book.Book{
			ID:            w.Key,
			Title:         orDefault(w.Title, "Unknown"),
			Authors:       authors,
			Source:        book.SourceOpenLibrary,
			PublishedDate: year(w.FirstPublishYear),
			Language:      "en",
			Cover:         cover,
			OpenLibrary: &book.OpenLibraryInfo{
				Key:              w.Key,
				Subjects:         []string{subject},
				HasFulltext:      w.HasFulltext,
				LendingAvailable: w.LendingEdition != "",
				BorrowURL:        c.api.BaseURL() + w.Key,
			},
		})
	}
	return &book.Page{Books: books, Total: resp.WorkCount}, nil
}

// AuthorWorks lists the works of an author given its id, e.g. "OL23919A".
func (c *Client) AuthorWorks(ctx context.Context, authorID string, page, limit int) (*book.Page, error) {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(catalog.Offset(page, limit)))
	params.Set("limit", strconv.Itoa(limit))

	var resp AuthorWorksResponse
	path := "/authors/" + url.PathEscape(strings.Trim(authorID, "/")) + "/works.json"
	if err := c.api.GetJSON(ctx, path, params, &resp); err != nil {
		return nil, fmt.Errorf("open library author %s failed: %w", authorID, err)
	}

	books := make([]book.Book, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		books = append(books, book.Book{
			ID:       e.Key,
			Title:    orDefault(e.Title, "Unknown"),
			Authors:  []string{},
			Source:   book.SourceOpenLibrary,
			Language: "en",
			OpenLibrary: &book.OpenLibraryInfo{
				Key:       e.Key,
				Subjects:  truncate(e.Subjects, 5),
				BorrowURL: c.api.BaseURL() + e.Key,
			},
		})
	}
	return &book.Page{Books: books, Total: resp.Size}, nil
}

func (c *Client) fromDoc(doc Doc) book.Book {
	var cover *book.Cover
	if doc.CoverI > 0 {
		cover = c.cover(doc.CoverI)
	}

	language := "en"
	if len(doc.Language) > 0 {
		language = doc.Language[0]
	}

	info := &book.OpenLibraryInfo{
		Key:              doc.Key,
		Subjects:         truncate(doc.Subject, 10),
		HasFulltext:      doc.HasFulltext,
		LendingAvailable: doc.LendingEdition != "" || len(doc.IA) > 0,
	}
	if doc.Key != "" {
		info.BorrowURL = c.api.BaseURL() + doc.Key
	}
	if doc.HasFulltext && doc.Key != "" {
		info.ReadURL = c.api.BaseURL() + doc.Key
	}

	authors := doc.AuthorName
	if authors == nil {
		authors = []string{}
	}

	return book.Book{
		ID:            doc.Key,
		Title:         orDefault(doc.Title, "Unknown Title"),
		Authors:       authors,
		Source:        book.SourceOpenLibrary,
		PublishedDate: year(doc.FirstPublishYear),
		ISBN:          isbn.Unique(truncate(doc.ISBN, 5)),
		Pages:         doc.NumberOfPagesMedian,
		Language:      language,
		Publisher:     first(doc.Publisher),
		Cover:         cover,
		OpenLibrary:   info,
	}
}

func (c *Client) cover(id int) *book.Cover {
	base := fmt.Sprintf("%s/id/%d", c.coversURL, id)
	return &book.Cover{
		Small:  base + "-S.jpg",
		Medium: base + "-M.jpg",
		Large:  base + "-L.jpg",
	}
}

// description handles both the plain string and the {"type", "value"} forms.
func description(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var typed struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &typed); err == nil {
		return typed.Value
	}
	return ""
}

func year(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

func truncate(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
