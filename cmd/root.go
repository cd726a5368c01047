package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/githar-go/config"
	"github.com/masmgr/githar-go/internal/git"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "githar",
		Usage:     "Commit history reports for GitHub repositories",
		UsageText: "githar [options] <owner/name>...",
		ArgsUsage: "<owner/name>...",
		Flags:     reportFlags(),
		Action:    reportAction,
	}
}

func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.StringFlag{
			Name:  "author",
			Usage: "Only commits by this GitHub login or email",
		},
		&cli.StringFlag{
			Name:  "since",
			Usage: "Only commits after this date (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "until",
			Usage: "Only commits before this date (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (text, markdown)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: "GitHub token (default: $GITHAR_TOKEN or $GITHUB_TOKEN)",
		},
		&cli.StringFlag{
			Name:  "api-url",
			Usage: "GitHub API base URL",
		},
		&cli.StringSliceFlag{
			Name:  "skip",
			Usage: "Glob patterns for commit subjects to leave out (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:  "local",
			Usage: "Local clone used to find the repository when none is given",
			Value: ".",
		},
		&cli.StringFlag{
			Name:  "remote",
			Usage: "Remote of the local clone to read",
			Value: git.DefaultRemote,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log requests and print per-repository progress",
		},
	}
}

// loadConfig loads configuration from file or defaults, then applies flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"author", &cfg.Filters.Author},
		{"since", &cfg.Filters.Since},
		{"until", &cfg.Filters.Until},
		{"format", &cfg.Output.Format},
		{"output", &cfg.Output.Path},
		{"token", &cfg.API.Token},
		{"api-url", &cfg.API.BaseURL},
	}
	for _, o := range overrides {
		if c.IsSet(o.flag) {
			*o.target = c.String(o.flag)
		}
	}
	if skip := c.StringSlice("skip"); len(skip) > 0 {
		cfg.Skip = skip
	}

	return cfg, nil
}

// Run executes the CLI application.
func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := App().RunContext(ctx, os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
