package routing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/iziplay/freebooks-api/pkg/aggregate"
	"github.com/iziplay/freebooks-api/pkg/book"
	"github.com/iziplay/freebooks-api/pkg/metrics"
	"github.com/iziplay/freebooks-api/pkg/stats"
)

// Version is reported by the info endpoint and the OpenAPI document.
const Version = "1.0.0"

// Services holds what the routes call into. Catalogs left nil get no
// passthrough routes.
type Services struct {
	Aggregator  *aggregate.Aggregator
	OpenLibrary OpenLibrary
	Gutenberg   Gutenberg
	GoogleBooks GoogleBooks
	Stats       *stats.Registry
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

type SourceInfo struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Books    string `json:"books"`
	Endpoint string `json:"endpoint"`
}

type InfoOutput struct {
	Body struct {
		Name        string            `json:"name"`
		Version     string            `json:"version"`
		Description string            `json:"description"`
		Sources     []SourceInfo      `json:"sources"`
		Endpoints   map[string]string `json:"endpoints"`
	}
}

type PlainOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type SourceStatsOutput struct {
	Body struct {
		Sources []stats.SourceStats `json:"sources"`
	}
}

type SearchAllInput struct {
	Query   string `query:"q" required:"true" minLength:"1" doc:"Search query"`
	Page    int    `query:"page" default:"1" minimum:"1" doc:"Page number"`
	Limit   int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Results per page"`
	Sources string `query:"sources" doc:"Comma separated sources to query, all when empty" example:"openlibrary,gutenberg"`
}

type SearchAllOutput struct {
	Body *aggregate.Result
}

type CompareInput struct {
	Query string `query:"q" required:"true" minLength:"1" doc:"Search query"`
	Limit int    `query:"limit" default:"10" minimum:"1" maximum:"50" doc:"Results per source"`
}

type CompareOutput struct {
	Body *aggregate.Comparison
}

type RandomInput struct {
	Count int `query:"count" default:"10" minimum:"1" maximum:"50" doc:"Number of random books"`
}

type RandomOutput struct {
	Body *aggregate.Sample
}

var sourceInfo = []SourceInfo{
	{Name: "Open Library", URL: "https://openlibrary.org", Books: "Millions", Endpoint: "/v1/openlibrary"},
	{Name: "Project Gutenberg", URL: "https://www.gutenberg.org", Books: "70,000+", Endpoint: "/v1/gutenberg"},
	{Name: "Google Books", URL: "https://books.google.com", Books: "Millions (metadata)", Endpoint: "/v1/googlebooks"},
}

func Setup(api huma.API, svc Services) {
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	api.UseMiddleware(requestIDMiddleware(), accessLogMiddleware(logger, svc.Metrics))

	huma.Register(api, huma.Operation{
		OperationID: "GetInfo",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "API information",
		Description: "Name, version, sources and main endpoints of the API",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, input *struct{}) (*InfoOutput, error) {
		resp := &InfoOutput{}
		resp.Body.Name = "Free Books API"
		resp.Body.Version = Version
		resp.Body.Description = "Search legal free book sources from a single endpoint"
		resp.Body.Sources = sourceInfo
		resp.Body.Endpoints = map[string]string{
			"docs":    "/docs",
			"search":  "/v1/search/all",
			"health":  "/healthz",
			"metrics": "/metrics",
		}
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "HealthCheck",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Health check",
		Description: "Check if the API is running",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, input *struct{}) (*PlainOutput, error) {
		return &PlainOutput{
			ContentType: "text/plain",
			Body:        []byte("OK"),
		}, nil
	})

	if svc.Stats != nil {
		huma.Register(api, huma.Operation{
			OperationID: "GetSourceStatistics",
			Method:      http.MethodGet,
			Path:        "/v1/statistics/sources",
			Summary:     "Get source statistics",
			Description: "Get request and failure counts of every upstream catalog",
			Tags:        []string{"Statistics"},
		}, func(ctx context.Context, input *struct{}) (*SourceStatsOutput, error) {
			resp := &SourceStatsOutput{}
			resp.Body.Sources = svc.Stats.Snapshot()
			return resp, nil
		})
	}

	if svc.Aggregator != nil {
		setupSearch(api, svc.Aggregator)
	}
	if svc.OpenLibrary != nil {
		setupOpenLibrary(api, svc.OpenLibrary)
	}
	if svc.Gutenberg != nil {
		setupGutenberg(api, svc.Gutenberg)
	}
	if svc.GoogleBooks != nil {
		setupGoogleBooks(api, svc.GoogleBooks)
	}
}

func setupSearch(api huma.API, agg *aggregate.Aggregator) {
	huma.Register(api, huma.Operation{
		OperationID: "SearchAll",
		Method:      http.MethodGet,
		Path:        "/v1/search/all",
		Summary:     "Search all sources",
		Description: "Search every catalog at once. Results are merged, deduplicated by title and first author, and ranked by how many sources agree on them. Failing catalogs are left out of the answer.",
		Tags:        []string{"Search"},
	}, func(ctx context.Context, input *SearchAllInput) (*SearchAllOutput, error) {
		res, err := agg.Search(ctx, aggregate.Request{
			Query:   input.Query,
			Page:    input.Page,
			Limit:   input.Limit,
			Sources: aggregate.ParseSources(input.Sources),
		})
		if err != nil {
			return nil, toHTTPError("failed to search", err)
		}
		return &SearchAllOutput{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "CompareSources",
		Method:      http.MethodGet,
		Path:        "/v1/search/compare",
		Summary:     "Compare sources",
		Description: "Run the same query on every catalog and return the answers side by side",
		Tags:        []string{"Search"},
	}, func(ctx context.Context, input *CompareInput) (*CompareOutput, error) {
		cmp, err := agg.Compare(ctx, input.Query, input.Limit)
		if err != nil {
			return nil, toHTTPError("failed to compare sources", err)
		}
		return &CompareOutput{Body: cmp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "RandomBooks",
		Method:      http.MethodGet,
		Path:        "/v1/search/random",
		Summary:     "Random books",
		Description: "Get a random selection of books drawn from every catalog",
		Tags:        []string{"Search"},
	}, func(ctx context.Context, input *RandomInput) (*RandomOutput, error) {
		sample, err := agg.Random(ctx, input.Count)
		if err != nil {
			return nil, toHTTPError("failed to sample books", err)
		}
		return &RandomOutput{Body: sample}, nil
	})
}

// queryParams maps validation fields to the query parameter carrying them.
var queryParams = map[string]string{
	"query": "q",
}

// toHTTPError turns an aggregator or catalog error into a huma status error.
// Upstream errors are logged, never echoed to the caller.
func toHTTPError(msg string, err error) error {
	var invalid *aggregate.InvalidRequestError
	if errors.As(err, &invalid) {
		param, ok := queryParams[invalid.Field]
		if !ok {
			param = invalid.Field
		}
		return huma.Error422UnprocessableEntity(msg, &huma.ErrorDetail{
			Message:  invalid.Reason,
			Location: "query." + param,
		})
	}
	if errors.Is(err, book.ErrNotFound) {
		return huma.Error404NotFound("not found")
	}
	slog.Warn("Catalog request failed", "error", err)
	return huma.Error503ServiceUnavailable(msg)
}
