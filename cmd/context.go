package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/masmgr/githar-go/config"
	"github.com/masmgr/githar-go/internal/git"
	"github.com/masmgr/githar-go/internal/history"
	"github.com/masmgr/githar-go/internal/output"
)

// ReportOptions holds everything a report run needs besides the fetcher.
// It is built once and never modified.
type ReportOptions struct {
	Filters    history.Filters
	Format     output.Format
	Skip       history.SkipMatcher
	OutputPath string
}

// NewReportOptions validates the merged configuration and converts it.
func NewReportOptions(cfg *config.Config) (ReportOptions, error) {
	filters := history.Filters{
		Author: cfg.Filters.Author,
		Since:  cfg.Filters.Since,
		Until:  cfg.Filters.Until,
	}
	if err := filters.Validate(); err != nil {
		return ReportOptions{}, err
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return ReportOptions{}, err
	}

	skip, err := history.NewSkipMatcher(cfg.Skip)
	if err != nil {
		return ReportOptions{}, err
	}

	return ReportOptions{
		Filters:    filters,
		Format:     format,
		Skip:       skip,
		OutputPath: cfg.Output.Path,
	}, nil
}

// Target is one repository to report on. Label is the argument as written
// and heads the report.
type Target struct {
	Repository history.Identifier
	Label      string
}

// resolveTargets parses the repository arguments. Without arguments the
// repository is taken from a remote of the local clone at localPath.
func resolveTargets(args []string, localPath, remote string) ([]Target, error) {
	if len(args) == 0 {
		id, err := git.ResolveIdentifier(localPath, remote)
		if err != nil {
			return nil, fmt.Errorf("no repository given: %w", err)
		}
		return []Target{{Repository: id, Label: id.String()}}, nil
	}

	targets := make([]Target, 0, len(args))
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("option %q after a repository: options go before <owner/name>...", arg)
		}
		id, err := history.ParseIdentifier(arg)
		if err != nil {
			return nil, err
		}
		targets = append(targets, Target{Repository: id, Label: arg})
	}
	return targets, nil
}

// newLogger creates the diagnostics logger. Reports never go through it.
func newLogger(verbose bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
