package freebooks

import (
	"log/slog"
	"time"

	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/iziplay/freebooks-api/pkg/catalog"
	"github.com/iziplay/freebooks-api/pkg/config"
	"github.com/iziplay/freebooks-api/pkg/googlebooks"
	"github.com/iziplay/freebooks-api/pkg/gutenberg"
	"github.com/iziplay/freebooks-api/pkg/openlibrary"
)

// Catalogs groups the upstream clients built from a configuration.
type Catalogs struct {
	OpenLibrary *openlibrary.Client
	Gutenberg   *gutenberg.Client
	GoogleBooks *googlebooks.Client
}

func NewCatalogs(cfg *config.Config, logger *slog.Logger) *Catalogs {
	timeout := catalog.WithTimeout(time.Duration(cfg.UpstreamTimeout))
	return &Catalogs{
		OpenLibrary: openlibrary.NewClient(cfg.OpenLibrary.BaseURL, cfg.OpenLibrary.CoversURL, logger, timeout),
		Gutenberg:   gutenberg.NewClient(cfg.Gutenberg.BaseURL, logger, timeout),
		GoogleBooks: googlebooks.NewClient(cfg.GoogleBooks.BaseURL, cfg.GoogleBooks.APIKey, logger, timeout),
	}
}

// Searchers keys every client by its source name.
func (c *Catalogs) Searchers() map[string]book.Searcher {
	return map[string]book.Searcher{
		book.SourceOpenLibrary: c.OpenLibrary,
		book.SourceGutenberg:   c.Gutenberg,
		book.SourceGoogleBooks: c.GoogleBooks,
	}
}
