package main

import "fmt"

// Run executes the random command.
func (c *RandomCmd) Run(deps *Dependencies) error {
	sample, err := deps.Aggregator.Random(deps.Ctx, c.Count)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, sample)
	}

	if sample.Count == 0 {
		fmt.Fprintln(deps.Stdout, "No books found.")
		return nil
	}
	for i, b := range sample.Books {
		printBook(deps.Stdout, i+1, b)
	}
	return nil
}
