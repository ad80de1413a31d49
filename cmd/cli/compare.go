package main

import (
	"fmt"

	"github.com/iziplay/freebooks-api/pkg/book"
)

// Run executes the compare command.
func (c *CompareCmd) Run(deps *Dependencies) error {
	cmp, err := deps.Aggregator.Compare(deps.Ctx, c.Query, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, cmp)
	}

	for _, name := range book.Sources {
		res, ok := cmp.Sources[name]
		if !ok {
			continue
		}
		if !res.Available {
			fmt.Fprintf(deps.Stdout, "== %s: unavailable\n", name)
			continue
		}
		fmt.Fprintf(deps.Stdout, "== %s: %d total\n", name, res.Total)
		for i, b := range res.Books {
			printBook(deps.Stdout, i+1, b)
		}
	}
	return nil
}
