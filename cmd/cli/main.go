package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	freebooks "github.com/iziplay/freebooks-api"
	"github.com/iziplay/freebooks-api/pkg/aggregate"
	"github.com/iziplay/freebooks-api/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Lookup reads configuration variables. Set before calling Run().
	Lookup func(string) (string, bool)

	// Aggregator overrides the one built from configuration.
	Aggregator *aggregate.Aggregator
}

// NewMain returns a new instance of Main reading the process environment.
func NewMain() *Main {
	return &Main{
		Lookup: os.LookupEnv,
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("freebooks"),
		kong.Description("Search legal free book sources from the command line."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'freebooks --help' to see available commands")
	}
	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if m.Aggregator == nil {
		cfg, err := config.Load(m.Lookup)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		// catalog failures are reported on stderr, never mixed with results
		logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()}))
		catalogs := freebooks.NewCatalogs(cfg, logger)
		m.Aggregator = aggregate.New(catalogs.Searchers(), aggregate.WithLogger(logger))
	}
	deps.Aggregator = m.Aggregator

	return kongCtx.Run(deps)
}
