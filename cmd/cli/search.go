package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iziplay/freebooks-api/pkg/aggregate"
	"github.com/iziplay/freebooks-api/pkg/book"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	res, err := deps.Aggregator.Search(deps.Ctx, aggregate.Request{
		Query:   c.Query,
		Page:    c.Page,
		Limit:   c.Limit,
		Sources: aggregate.ParseSources(c.Sources),
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, res)
	}

	if len(res.Sources) == 0 {
		fmt.Fprintln(deps.Stderr, "warning: no catalog answered")
	}
	fmt.Fprintf(deps.Stdout, "%d books for %q (%s)\n", res.TotalResults, res.Query, contributions(res.Sources))
	if len(res.Books) == 0 {
		fmt.Fprintln(deps.Stdout, "No books on this page.")
		return nil
	}
	offset := (res.Page - 1) * res.PerPage
	for i, b := range res.Books {
		printBook(deps.Stdout, offset+i+1, b)
	}
	return nil
}

// contributions renders source counts in catalog order, e.g. "openlibrary: 2, gutenberg: 1".
func contributions(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	for _, name := range book.Sources {
		if n, ok := counts[name]; ok {
			parts = append(parts, fmt.Sprintf("%s: %d", name, n))
		}
	}
	if len(parts) == 0 {
		return "no source"
	}
	return strings.Join(parts, ", ")
}

func printBook(w io.Writer, n int, b book.Book) {
	authors := "unknown author"
	if len(b.Authors) > 0 {
		authors = strings.Join(b.Authors, ", ")
	}
	fmt.Fprintf(w, "%3d. %s by %s [%s]", n, b.Title, authors, b.Source)
	if b.PublishedDate != "" {
		fmt.Fprintf(w, " (%s)", b.PublishedDate)
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
