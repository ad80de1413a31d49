// Package googlebooks is a client for the Google Books volumes API.
package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/iziplay/freebooks-api/pkg/catalog"
	"github.com/iziplay/freebooks-api/pkg/isbn"
)

const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// MaxResults is the largest page the volumes endpoint accepts.
const MaxResults = 40

var errMissingID = errors.New("volume without id")

var _ book.Searcher = (*Client)(nil)

type Client struct {
	api    *catalog.Client
	apiKey string
	logger *slog.Logger
}

// NewClient creates a Google Books client. apiKey is optional; without it
// requests are subject to the anonymous quota.
func NewClient(baseURL, apiKey string, logger *slog.Logger, opts ...catalog.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:    catalog.New(baseURL, opts...),
		apiKey: apiKey,
		logger: logger.With("source", book.SourceGoogleBooks),
	}
}

// Search accepts the Google query operators (intitle:, inauthor:, isbn:, ...).
func (c *Client) Search(ctx context.Context, query string, page, limit int) (*book.Page, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("printType", "books")
	return c.volumes(ctx, params, page, limit)
}

// Get returns a single volume.
func (c *Client) Get(ctx context.Context, volumeID string) (*book.Book, error) {
	var v Volume
	if err := c.api.GetJSON(ctx, "/volumes/"+url.PathEscape(volumeID), c.withKey(url.Values{}), &v); err != nil {
		return nil, fmt.Errorf("google books get %s failed: %w", volumeID, err)
	}
	b, err := fromVolume(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ByISBN returns the first volume carrying the given ISBN.
func (c *Client) ByISBN(ctx context.Context, code string) (*book.Book, error) {
	params := url.Values{}
	params.Set("q", "isbn:"+isbn.Normalize(code))

	var resp VolumesResponse
	if err := c.api.GetJSON(ctx, "/volumes", c.withKey(params), &resp); err != nil {
		return nil, fmt.Errorf("google books isbn %s failed: %w", code, err)
	}
	for _, v := range resp.Items {
		b, err := fromVolume(v)
		if err != nil {
			continue
		}
		return &b, nil
	}
	return nil, book.ErrNotFound
}

func (c *Client) ByAuthor(ctx context.Context, name string, page, limit int) (*book.Page, error) {
	return c.volumes(ctx, url.Values{"q": {"inauthor:" + name}}, page, limit)
}

func (c *Client) BySubject(ctx context.Context, subject string, page, limit int) (*book.Page, error) {
	return c.volumes(ctx, url.Values{"q": {"subject:" + subject}}, page, limit)
}

// FreeEbooks lists fiction volumes with free full-text access.
func (c *Client) FreeEbooks(ctx context.Context, page, limit int) (*book.Page, error) {
	return c.volumes(ctx, url.Values{"q": {"subject:fiction"}, "filter": {"free-ebooks"}}, page, limit)
}

// Bestsellers approximates a bestseller list with the most relevant volumes of a category.
func (c *Client) Bestsellers(ctx context.Context, category string, limit int) (*book.Page, error) {
	return c.volumes(ctx, url.Values{"q": {"subject:" + category}, "orderBy": {"relevance"}}, 1, limit)
}

func (c *Client) volumes(ctx context.Context, params url.Values, page, limit int) (*book.Page, error) {
	// The offset follows the caller's page size so pages line up with the
	// other catalogs even when maxResults is capped.
	params.Set("startIndex", strconv.Itoa(catalog.Offset(page, limit)))
	params.Set("maxResults", strconv.Itoa(min(limit, MaxResults)))

	var resp VolumesResponse
	if err := c.api.GetJSON(ctx, "/volumes", c.withKey(params), &resp); err != nil {
		return nil, fmt.Errorf("google books volumes failed: %w", err)
	}

	books := make([]book.Book, 0, len(resp.Items))
	for _, v := range resp.Items {
		b, err := fromVolume(v)
		if err != nil {
			c.logger.Warn("Skipping unparsable volume", "error", err)
			continue
		}
		books = append(books, b)
	}
	return &book.Page{Books: books, Total: resp.TotalItems}, nil
}

func (c *Client) withKey(params url.Values) url.Values {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	return params
}

func fromVolume(v Volume) (book.Book, error) {
	if v.ID == "" {
		return book.Book{}, errMissingID
	}
	info := v.VolumeInfo

	var isbns []string
	for _, id := range info.IndustryIdentifiers {
		if id.Type == "ISBN_10" || id.Type == "ISBN_13" {
			isbns = append(isbns, id.Identifier)
		}
	}

	var cover *book.Cover
	var thumbnail string
	if info.ImageLinks != nil && info.ImageLinks.Thumbnail != "" {
		thumbnail = info.ImageLinks.Thumbnail
		cover = &book.Cover{
			Small:  thumbnail,
			Medium: strings.Replace(thumbnail, "&zoom=1", "&zoom=2", 1),
			Large:  strings.Replace(thumbnail, "&zoom=1", "&zoom=3", 1),
		}
	}

	title := info.Title
	if title == "" {
		title = "Unknown Title"
	}
	language := info.Language
	if language == "" {
		language = "en"
	}
	authors := info.Authors
	if authors == nil {
		authors = []string{}
	}
	categories := info.Categories
	if categories == nil {
		categories = []string{}
	}

	return book.Book{
		ID:            v.ID,
		Title:         title,
		Authors:       authors,
		Source:        book.SourceGoogleBooks,
		PublishedDate: info.PublishedDate,
		Description:   catalog.StripHTML(info.Description),
		ISBN:          isbn.Unique(isbns),
		Pages:         info.PageCount,
		Language:      language,
		Publisher:     info.Publisher,
		Cover:         cover,
		GoogleBooks: &book.GoogleBooksInfo{
			GoogleID:      v.ID,
			PreviewLink:   info.PreviewLink,
			InfoLink:      info.InfoLink,
			Thumbnail:     thumbnail,
			Categories:    categories,
			AverageRating: info.AverageRating,
			RatingsCount:  info.RatingsCount,
			Viewability:   v.AccessInfo.Viewability,
		},
	}, nil
}
