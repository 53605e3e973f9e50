package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cssaudit/internal/config"
	"cssaudit/internal/report"
	"cssaudit/pkg/analyzer"
)

var version = "dev"

var (
	cfg config.Config
	log *zap.Logger
)

// setup prepares configuration and logging after the command line has been
// parsed but before any subcommand runs
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error
	cfg, err = config.Load(cmd.String("config"))
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("quiet") {
		cfg.Logging = "none"
	}
	if cmd.Bool("verbose") {
		cfg.Logging = "debug"
	}
	log = cfg.PrepareLogger()
	log.Debug("program started", zap.Strings("args", os.Args), zap.String("ver", version))
	return ctx, nil
}

func teardown(context.Context, *cli.Command) error {
	if log != nil {
		_ = log.Sync()
	}
	return nil
}

// analysisRoot is the positional ROOT argument, defaulting to the working
// directory
func analysisRoot(cmd *cli.Command) (string, error) {
	root := "."
	if cmd.NArg() > 0 {
		root = cmd.Args().First()
	}
	return filepath.Abs(root)
}

func runDuplicates(_ context.Context, cmd *cli.Command) error {
	root, err := analysisRoot(cmd)
	if err != nil {
		return err
	}

	result, err := analyzer.New(cfg, log).Duplicates(root, analyzer.DuplicatesOptions{
		Merge:   cmd.Bool("merge"),
		PerPage: cmd.Bool("per-page"),
	})
	if err != nil {
		return err
	}

	report.NewConsole(os.Stdout, root).Duplicates(result)

	if out := cmd.String("output-html"); out != "" {
		return report.WriteHTML(out, report.HTMLData{
			Title:      "Duplicate analysis",
			Root:       root,
			Duplicates: result,
		})
	}
	return nil
}

func runUnused(_ context.Context, cmd *cli.Command) error {
	root, err := analysisRoot(cmd)
	if err != nil {
		return err
	}

	result, err := analyzer.New(cfg, log).Unused(root)
	if err != nil {
		return err
	}

	report.NewConsole(os.Stdout, root).Unused(result)

	if out := cmd.String("output-html"); out != "" {
		return report.WriteHTML(out, report.HTMLData{
			Title:  "Unused selector analysis",
			Root:   root,
			Unused: result,
		})
	}
	return nil
}

func runStructure(_ context.Context, cmd *cli.Command) error {
	root, err := analysisRoot(cmd)
	if err != nil {
		return err
	}

	result, err := analyzer.New(cfg, log).Structure(root)
	if err != nil {
		return err
	}

	report.NewConsole(os.Stdout, root).Structure(result)

	if out := cmd.String("output-html"); out != "" {
		return report.WriteHTML(out, report.HTMLData{
			Title:     "Structure analysis",
			Root:      root,
			Structure: result,
		})
	}
	return nil
}

func runAnalyze(_ context.Context, cmd *cli.Command) error {
	root, err := analysisRoot(cmd)
	if err != nil {
		return err
	}

	result, err := analyzer.New(cfg, log).Analyze(root, analyzer.DuplicatesOptions{
		Merge:   cmd.Bool("merge"),
		PerPage: cmd.Bool("per-page"),
	})
	if err != nil {
		return err
	}

	report.NewConsole(os.Stdout, root).Analyze(result)

	if out := cmd.String("output-html"); out != "" {
		return report.WriteHTML(out, report.HTMLData{
			Title:      "Comprehensive analysis",
			Root:       root,
			Duplicates: result.Duplicates,
			Unused:     result.Unused,
			Structure:  result.Structure,
		})
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	htmlFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "output-html",
			Usage: "additionally write the report to `FILE` as standalone HTML",
		}
	}

	app := &cli.Command{
		Name:            "cssaudit",
		Usage:           "static analysis for project stylesheets",
		Version:         version,
		HideHelpCommand: true,
		Before:          setup,
		After:           teardown,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress all diagnostics"},
		},
		Commands: []*cli.Command{
			{
				Name:      "duplicates",
				Usage:     "Find selectors, media queries and comments defined more than once",
				ArgsUsage: "[ROOT]",
				Action:    runDuplicates,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "merge", Usage: "merge each duplicate selector's declarations in cascade order"},
					&cli.BoolFlag{Name: "per-page", Usage: "additionally merge per page using each page's own load order"},
					htmlFlag(),
				},
			},
			{
				Name:      "unused",
				Usage:     "Find class/ID selectors defined in CSS but never used in source files",
				ArgsUsage: "[ROOT]",
				Action:    runUnused,
				Flags:     []cli.Flag{htmlFlag()},
			},
			{
				Name:      "structure",
				Usage:     "Summarize stylesheet organization: rules, comments, naming prefixes, load order",
				ArgsUsage: "[ROOT]",
				Action:    runStructure,
				Flags:     []cli.Flag{htmlFlag()},
			},
			{
				Name:      "analyze",
				Usage:     "Run all analyses and produce one combined report",
				ArgsUsage: "[ROOT]",
				Action:    runAnalyze,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "merge", Usage: "merge each duplicate selector's declarations in cascade order"},
					&cli.BoolFlag{Name: "per-page", Usage: "additionally merge per page using each page's own load order"},
					htmlFlag(),
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
