package aggregate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/iziplay/freebooks-api/pkg/book"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Comparison holds the raw answer of every catalog side by side.
type Comparison struct {
	Query   string                  `json:"query"`
	Sources map[string]SourceResult `json:"sources"`
}

// SourceResult is one catalog's unmerged answer.
type SourceResult struct {
	Total int         `json:"total"`
	Books []book.Book `json:"books"`
	// Available is false when the catalog call failed.
	Available bool `json:"available"`
}

// Compare queries every configured catalog for the first page of query and
// returns their answers without merging, each capped at limit.
func (a *Aggregator) Compare(ctx context.Context, query string, limit int) (*Comparison, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &InvalidRequestError{Field: "query", Reason: "must not be empty"}
	}
	if limit < 1 || limit > MaxCompareLimit {
		return nil, &InvalidRequestError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxCompareLimit)}
	}

	ctx, span := a.tracer.Start(ctx, "aggregate.Compare", trace.WithAttributes(
		attribute.String("query", query),
		attribute.Int("limit", limit),
	))
	defer span.End()

	calls := make([]call, len(a.order))
	for i, name := range a.order {
		calls[i] = call{source: name, query: query, page: 1, limit: limit}
	}

	cmp := &Comparison{Query: query, Sources: make(map[string]SourceResult, len(calls))}
	for _, o := range a.gather(ctx, calls) {
		if o.err != nil {
			cmp.Sources[o.source] = SourceResult{Books: []book.Book{}}
			continue
		}
		books := o.page.Books
		if len(books) > limit {
			books = books[:limit]
		}
		if books == nil {
			books = []book.Book{}
		}
		cmp.Sources[o.source] = SourceResult{Total: o.page.Total, Books: books, Available: true}
	}
	return cmp, nil
}

// Sample is a shuffled selection of books from several catalogs.
type Sample struct {
	Count int         `json:"count"`
	Books []book.Book `json:"books"`
}

// randomQueries seeds each catalog with a broad query.
var randomQueries = map[string]string{
	book.SourceOpenLibrary: "science fiction",
	book.SourceGutenberg:   "classic",
	book.SourceGoogleBooks: "bestseller",
}

// Random returns up to count books drawn from every configured catalog and
// shuffled. The result is intentionally different on every call.
func (a *Aggregator) Random(ctx context.Context, count int) (*Sample, error) {
	if count < 1 || count > MaxRandomCount {
		return nil, &InvalidRequestError{Field: "count", Reason: fmt.Sprintf("must be between 1 and %d", MaxRandomCount)}
	}

	ctx, span := a.tracer.Start(ctx, "aggregate.Random", trace.WithAttributes(
		attribute.Int("count", count),
	))
	defer span.End()

	calls := make([]call, 0, len(a.order))
	for _, name := range a.order {
		q, ok := randomQueries[name]
		if !ok {
			q = "fiction"
		}
		calls = append(calls, call{source: name, query: q, page: 1, limit: count})
	}

	// share of each catalog, rounded up so small samples are not empty
	share := 0
	if len(calls) > 0 {
		share = (count + len(calls) - 1) / len(calls)
	}

	var books []book.Book
	for _, o := range a.gather(ctx, calls) {
		if o.err != nil {
			continue
		}
		picked := o.page.Books
		if len(picked) > share {
			picked = picked[:share]
		}
		books = append(books, picked...)
	}

	rand.Shuffle(len(books), func(i, j int) {
		books[i], books[j] = books[j], books[i]
	})
	if len(books) > count {
		books = books[:count]
	}
	if books == nil {
		books = []book.Book{}
	}
	return &Sample{Count: len(books), Books: books}, nil
}
