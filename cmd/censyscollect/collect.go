package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/moltwatch/censyscollect/internal/censys"
	"github.com/moltwatch/censyscollect/internal/collector"
	"github.com/moltwatch/censyscollect/internal/config"
	"github.com/moltwatch/censyscollect/internal/database"
	"github.com/moltwatch/censyscollect/internal/log"
	"github.com/moltwatch/censyscollect/internal/model"
	"github.com/moltwatch/censyscollect/internal/pipeline"
	"github.com/moltwatch/censyscollect/internal/report"
)

// NewCollectCmd creates the collect command.
func NewCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run a paged host search and export the results",
		Long: `Collect runs a Censys hosts search page by page, keeps every raw host
document, and flattens the HTTP endpoints whose page title exactly
matches the allow-list into CSV rows.

Two files are written per run, named after the label and the current
date in Japan Standard Time:
  censys_hosts_jp_<label>_<YYYY-MM-DD>.jsonl   one raw host document per line
  censys_hosts_jp_<label>_<YYYY-MM-DD>.csv     flattened endpoint rows

A run that stops early (rate limit, quota, network error) still exports
everything fetched so far and exits successfully; the reason is noted
in the run summary.

Credentials are read from the CENSYS_API_ID and CENSYS_API_SECRET
environment variables. A .env file in the working directory is loaded
automatically.

Examples:
  # Collect with the default query and allow-list
  censyscollect collect

  # Custom query, capped at 5 pages
  censyscollect collect --query 'services.port: 8080' --max-pages 5

  # Slow down between pages and write under a custom directory
  censyscollect collect --sleep 1s --out-dir results

  # Machine-readable run summary
  censyscollect collect --json -o summary.json`,
		Args: cobra.NoArgs,
		RunE: runCollectCmd,
	}

	// Search flags
	cmd.Flags().StringP("query", "q", config.DefaultQuery,
		"CenQL query to execute")
	cmd.Flags().StringSliceP("titles", "t", config.DefaultTitles(),
		"HTML title allow-list (exact, case-sensitive match)")
	cmd.Flags().StringP("label", "l", config.DefaultLabel,
		"Label embedded in output file names")

	// Pagination flags
	cmd.Flags().Int("per-page", config.DefaultPerPage,
		"Results requested per API page (API maximum is 100)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum pages to fetch (0 = until exhausted)")
	cmd.Flags().DurationP("sleep", "s", config.DefaultPageDelay,
		"Pause between page fetches")
	cmd.Flags().Duration("timeout", config.DefaultTimeout,
		"Per-request HTTP timeout")

	// Output flags
	cmd.Flags().StringP("out-dir", "d", config.DefaultOutDir,
		"Directory for the JSONL and CSV artifacts")
	cmd.Flags().Bool("no-db", false,
		"Skip recording the run in the history database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .censyscollect in current or home directory)")

	// Summary flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write run summary to specified file path (creates directories if needed)")

	return cmd
}

// runCollectCmd executes the collect command.
func runCollectCmd(cmd *cobra.Command, _ []string) error {
	// Load .env before reading credentials. Missing file is fine; real
	// environment variables always win over .env values.
	_ = godotenv.Load() //nolint:errcheck

	// Build config from flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Credentials are checked before any network call so a missing key
	// never produces partial output.
	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	// Set up structured logging with secret masking
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCollect(ctx, cfg, creds, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the config file and cobra command flags.
// Flags win over file values, which win over defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load file defaults first so explicit flags can override them.
	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, silently skip a missing file.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Flags override the file only when set on the command line.
	if cmd.Flags().Changed("query") {
		if cfg.Query, err = cmd.Flags().GetString("query"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("titles") {
		if cfg.Titles, err = cmd.Flags().GetStringSlice("titles"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("label") {
		if cfg.Label, err = cmd.Flags().GetString("label"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("per-page") {
		if cfg.PerPage, err = cmd.Flags().GetInt("per-page"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-pages") {
		if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("sleep") {
		if cfg.PageDelay, err = cmd.Flags().GetDuration("sleep"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("out-dir") {
		if cfg.OutDir, err = cmd.Flags().GetString("out-dir"); err != nil {
			return nil, err
		}
	}

	cfg.JSONSummary, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownSummary, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.SummaryFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runCollect executes the collection run.
func runCollect(ctx context.Context, cfg *config.Config, creds config.Credentials, logger *slog.Logger) error {
	logger.Info("starting collection",
		"query", cfg.Query,
		"perPage", cfg.PerPage,
		"maxPages", cfg.MaxPages,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.RunDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	client := censys.NewClient(creds,
		censys.WithTimeout(cfg.Timeout),
		censys.WithLogger(logger),
	)

	c := collector.New(client,
		collector.WithPerPage(cfg.PerPage),
		collector.WithMaxPages(cfg.MaxPages),
		collector.WithPageDelay(cfg.PageDelay),
		collector.WithLogger(logger),
	)

	p := pipeline.DefaultPipeline(c, db, cfg,
		pipeline.WithLogger(logger),
	)

	run := model.NewCollectionRun(cfg.Query, cfg.Label, cfg.Titles)

	fmt.Printf("Collecting %q...\n", cfg.Label)
	startTime := time.Now()

	if err := p.Execute(ctx, run); err != nil {
		// A collection that stopped early is not a pipeline error; this
		// is an export or persistence failure, or cancellation.
		return fmt.Errorf("collection run failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Run completed in %s\n", elapsed.Round(time.Millisecond))

	// A run that stopped early still completed: everything fetched was
	// exported, so the command exits successfully either way.
	return outputSummary(cfg, run)
}

// outputSummary writes the run summary in the requested format.
func outputSummary(cfg *config.Config, run *model.CollectionRun) error {
	// Determine output destination
	var output *os.File
	if cfg.SummaryFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.SummaryFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.SummaryFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONSummary:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownSummary:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(run)
	return err
}
