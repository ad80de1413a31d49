package main

import (
	"context"
	"io"

	"github.com/iziplay/freebooks-api/pkg/aggregate"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Aggregator *aggregate.Aggregator
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Search  SearchCmd  `cmd:"" help:"Search every catalog and print the merged result"`
	Compare CompareCmd `cmd:"" help:"Print each catalog's answer side by side"`
	Random  RandomCmd  `cmd:"" help:"Print a random selection of books"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query   string `arg:"" help:"Search query"`
	Page    int    `short:"p" default:"1" help:"Page number"`
	Limit   int    `short:"l" default:"20" help:"Results per page"`
	Sources string `short:"s" help:"Comma separated sources to query (openlibrary, gutenberg, googlebooks)"`
	JSON    bool   `name:"json" help:"Print raw JSON"`
}

// CompareCmd is the "compare" subcommand.
type CompareCmd struct {
	Query string `arg:"" help:"Search query"`
	Limit int    `short:"l" default:"10" help:"Results per source"`
	JSON  bool   `name:"json" help:"Print raw JSON"`
}

// RandomCmd is the "random" subcommand.
type RandomCmd struct {
	Count int  `short:"c" default:"10" help:"Number of books"`
	JSON  bool `name:"json" help:"Print raw JSON"`
}
