// Package aggregate fans a query out to several catalogs and merges the answers.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/iziplay/freebooks-api/pkg/metrics"
	"github.com/iziplay/freebooks-api/pkg/stats"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/iziplay/freebooks-api/pkg/aggregate"

const (
	// MaxLimit bounds the page size of an aggregate search.
	MaxLimit = 100
	// MaxCompareLimit bounds the per-source size of a comparison.
	MaxCompareLimit = 50
	// MaxRandomCount bounds the size of a random sample.
	MaxRandomCount = 50
)

// Request describes an aggregate search.
type Request struct {
	Query string
	Page  int
	Limit int
	// Sources restricts and orders the catalogs queried. Empty means all.
	Sources []string
}

// Result is the merged, deduplicated and ranked answer of an aggregate search.
type Result struct {
	Query string `json:"query"`
	// TotalResults counts deduplicated books before pagination.
	TotalResults int `json:"totalResults"`
	// Sources holds the raw number of books each successful catalog returned.
	// Failed catalogs are absent.
	Sources map[string]int `json:"sources"`
	Books   []book.Book    `json:"books"`
	Page    int            `json:"page"`
	PerPage int            `json:"perPage"`
}

// Aggregator queries catalogs concurrently and merges their results.
type Aggregator struct {
	searchers map[string]book.Searcher
	order     []string
	logger    *slog.Logger
	stats     *stats.Registry
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures an Aggregator.
type Option func(*Aggregator)

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// WithStats records each catalog call in r.
func WithStats(r *stats.Registry) Option {
	return func(a *Aggregator) { a.stats = r }
}

// WithMetrics records each catalog call and merge size in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithTracerProvider replaces the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Aggregator) { a.tracer = tp.Tracer(tracerName) }
}

// New creates an Aggregator over the given catalogs, keyed by source name.
// The default query order is book.Sources, followed by any other name in
// lexical order.
func New(searchers map[string]book.Searcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		searchers: make(map[string]book.Searcher, len(searchers)),
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for name, s := range searchers {
		if s != nil {
			a.searchers[name] = s
		}
	}
	for _, name := range book.Sources {
		if _, ok := a.searchers[name]; ok {
			a.order = append(a.order, name)
		}
	}
	var extra []string
	for name := range a.searchers {
		if !book.IsSource(name) {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	a.order = append(a.order, extra...)

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sources returns the configured catalogs in default order.
func (a *Aggregator) Sources() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// ParseSources splits a comma separated list of catalog names. Names are
// trimmed and lower-cased, empty entries dropped.
func ParseSources(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Search runs the query against the requested catalogs and returns the merged
// result. Catalog failures only shrink the result; the returned error is
// always an *InvalidRequestError.
func (a *Aggregator) Search(ctx context.Context, req Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, &InvalidRequestError{Field: "query", Reason: "must not be empty"}
	}
	if req.Page < 1 {
		return nil, &InvalidRequestError{Field: "page", Reason: "must be at least 1"}
	}
	if req.Limit < 1 || req.Limit > MaxLimit {
		return nil, &InvalidRequestError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxLimit)}
	}
	sources, err := a.resolve(req.Sources)
	if err != nil {
		return nil, err
	}

	ctx, span := a.tracer.Start(ctx, "aggregate.Search", trace.WithAttributes(
		attribute.String("query", query),
		attribute.Int("page", req.Page),
		attribute.Int("limit", req.Limit),
		attribute.StringSlice("sources", sources),
	))
	defer span.End()

	calls := make([]call, len(sources))
	for i, name := range sources {
		calls[i] = call{source: name, query: query, page: req.Page, limit: req.Limit}
	}
	outcomes := a.gather(ctx, calls)

	counts := make(map[string]int, len(outcomes))
	var pool []book.Book
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		counts[o.source] = len(o.page.Books)
		pool = append(pool, o.page.Books...)
	}

	unique := Deduplicate(pool)
	ranked := Rank(unique, pool)

	if a.metrics != nil {
		a.metrics.MergedResults.Observe(float64(len(unique)))
	}
	span.SetAttributes(
		attribute.Int("books.raw", len(pool)),
		attribute.Int("books.unique", len(unique)),
	)
	a.logger.Debug("Aggregate search completed",
		"query", query,
		"sources", counts,
		"raw", len(pool),
		"unique", len(unique),
	)

	return &Result{
		Query:        query,
		TotalResults: len(unique),
		Sources:      counts,
		Books:        Paginate(ranked, req.Page, req.Limit),
		Page:         req.Page,
		PerPage:      req.Limit,
	}, nil
}

// resolve validates the requested catalogs, dropping duplicates.
func (a *Aggregator) resolve(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return a.Sources(), nil
	}
	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, name := range requested {
		if _, ok := a.searchers[name]; !ok {
			return nil, &InvalidRequestError{
				Field:  "sources",
				Reason: fmt.Sprintf("unknown source %q, expected one of %s", name, strings.Join(a.order, ", ")),
			}
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

type call struct {
	source string
	query  string
	page   int
	limit  int
}

// outcome is either a page or a SourceError, never both.
type outcome struct {
	source string
	page   *book.Page
	err    error
}

// gather runs every call concurrently and waits for all of them. Each call
// writes only its own slot, and failures never cancel the others.
func (a *Aggregator) gather(ctx context.Context, calls []call) []outcome {
	outcomes := make([]outcome, len(calls))

	var g errgroup.Group
	for i, c := range calls {
		g.Go(func() error {
			outcomes[i] = a.invoke(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (a *Aggregator) invoke(ctx context.Context, c call) (o outcome) {
	o.source = c.source

	ctx, span := a.tracer.Start(ctx, "aggregate.source", trace.WithAttributes(
		attribute.String("source", c.source),
	))
	defer span.End()

	begin := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.page = nil
			o.err = &SourceError{Source: c.source, Err: fmt.Errorf("panic: %v", r)}
		}
		a.record(span, o, time.Since(begin))
	}()

	page, err := a.searchers[c.source].Search(ctx, c.query, c.page, c.limit)
	switch {
	case err != nil:
		o.err = &SourceError{Source: c.source, Err: err}
	case page == nil:
		o.page = &book.Page{Books: []book.Book{}}
	default:
		o.page = page
	}
	return o
}

func (a *Aggregator) record(span trace.Span, o outcome, took time.Duration) {
	outcomeLabel := "success"
	if o.err != nil {
		outcomeLabel = "failure"
		span.RecordError(o.err)
		span.SetStatus(codes.Error, o.err.Error())
		a.logger.Warn("Source failed", "source", o.source, "error", o.err, "duration", took)
		if a.stats != nil {
			a.stats.RecordFailure(o.source, took, o.err)
		}
	} else {
		span.SetAttributes(attribute.Int("books", len(o.page.Books)))
		if a.stats != nil {
			a.stats.RecordSuccess(o.source, took)
		}
	}

	if a.metrics != nil {
		a.metrics.UpstreamRequests.WithLabelValues(o.source, outcomeLabel).Inc()
		a.metrics.UpstreamDuration.WithLabelValues(o.source).Observe(took.Seconds())
	}
}
