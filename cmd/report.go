package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/githar-go/internal/github"
	"github.com/masmgr/githar-go/internal/history"
	"github.com/masmgr/githar-go/internal/output"
)

func reportAction(c *cli.Context) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	opts, err := NewReportOptions(cfg)
	if err != nil {
		return err
	}

	targets, err := resolveTargets(c.Args().Slice(), c.String("local"), c.String("remote"))
	if err != nil {
		return err
	}

	verbose := c.Bool("verbose")
	client, err := github.NewClient(
		github.WithBaseURL(cfg.API.BaseURL),
		github.WithToken(cfg.API.Token),
		github.WithLogger(newLogger(verbose, c.App.ErrWriter)),
	)
	if err != nil {
		return err
	}

	writer, err := output.OpenReportWriter(opts.OutputPath, c.App.Writer)
	if err != nil {
		return err
	}
	defer func() { err = closeReport(writer, err) }()

	var status io.Writer
	if verbose {
		status = c.App.ErrWriter
	}
	return runReport(c.Context, client, targets, opts, writer, status)
}

// closeReport closes the report output. A close failure is returned unless
// err already holds an earlier failure.
func closeReport(w io.Closer, err error) error {
	if cerr := w.Close(); cerr != nil && err == nil {
		return fmt.Errorf("failed to close report output: %w", cerr)
	}
	return err
}

// runReport fetches, renders and writes one report per target, in order.
// The first failure stops the run; reports already written stay written.
// A non-nil status receives one progress line per repository.
func runReport(ctx context.Context, fetcher history.Fetcher, targets []Target, opts ReportOptions, writer *output.ReportWriter, status io.Writer) error {
	for _, target := range targets {
		start := time.Now()
		id := target.Repository

		q := history.NewQuery(id, opts.Filters)
		q.Label = target.Label
		q.Format = opts.Format

		q, err := fetcher.Fetch(ctx, q)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", id, err)
		}

		renderer := output.NewRenderer(q.Format)
		if err := writer.Write(renderer.RenderQuery(q, opts.Skip)); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", id, err)
		}

		if status != nil {
			shown := len(q.Records(opts.Skip))
			color.New(color.FgGreen).Fprintf(status, "%s: %d commits, %d merges skipped (%s)\n",
				id, shown, q.MergeCount(), time.Since(start).Round(time.Millisecond))
		}
	}

	return nil
}
