// Package main implements the tabular binary: grouping, joins and pivots
// over CSV files.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arkilian/tabular/internal/config"
	"github.com/arkilian/tabular/internal/csvio"
	"github.com/arkilian/tabular/internal/logging"
	"github.com/arkilian/tabular/internal/observability"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// globalFlags are accepted before the subcommand.
type globalFlags struct {
	configFile  string
	envFile     string
	logLevel    string
	logFormat   string
	seqURL      string
	delimiter   string
	nullToken   string
	showVersion bool
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tabular", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var g globalFlags
	fs.StringVar(&g.configFile, "config", "", "Path to configuration file (YAML or JSON)")
	fs.StringVar(&g.envFile, "env-file", ".env", "Path to a .env file loaded before the environment")
	fs.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&g.logFormat, "log-format", "", "Log format: text, json")
	fs.StringVar(&g.seqURL, "seq-url", "", "Seq server URL for log shipping")
	fs.StringVar(&g.delimiter, "delimiter", "", "CSV field delimiter")
	fs.StringVar(&g.nullToken, "null", "", "CSV token for missing cells")
	fs.BoolVar(&g.showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "tabular - columnar grouping, joins and pivots over CSV\n\n")
		fmt.Fprintf(stderr, "Usage: tabular [options] <command> [command options]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-8s %s\n", c.name, c.summary)
		}
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  tabular groupby -in sales.csv -by region -agg sum:amount,count\n")
		fmt.Fprintf(stderr, "  tabular merge -left a.csv -right b.csv -on id -kind left\n")
		fmt.Fprintf(stderr, "  tabular stack -in wide.csv -values q1,q2,q3\n")
		fmt.Fprintf(stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(stderr, "  TABULAR_LOG_LEVEL             Log level\n")
		fmt.Fprintf(stderr, "  TABULAR_MAX_COMPOSITE_GROUPS  Composite group cap before hashing\n")
		fmt.Fprintf(stderr, "  TABULAR_PARALLEL_THRESHOLD    Rows from which the group sort is partitioned\n")
		fmt.Fprintf(stderr, "  TABULAR_SEQ_URL               Seq server URL\n")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if g.showVersion {
		fmt.Fprintf(stdout, "tabular version %s (commit: %s)\n", version, commit)
		return 0
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(g)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger, closeLog, err := logging.Setup(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to set up logging: %v\n", err)
		return 1
	}
	defer closeLog()
	logger = logger.With("run_id", uuid.New().String())

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := lookup(name)
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		fs.Usage()
		return 2
	}

	env := &runEnv{
		cfg:    cfg,
		logger: logger,
		csv:    csvOptions(cfg),
		stdout: stdout,
		stderr: stderr,
		stats:  observability.NewOpStats(time.Hour),
	}
	start := time.Now()
	if err := cmd.run(env, rest); err != nil {
		logger.Error("command failed", "command", name, "error", err)
		return 1
	}
	logger.Debug("command finished", "command", name, "duration", time.Since(start))
	env.stats.Prune()
	for _, o := range env.stats.Ops() {
		logger.Debug("op stats", "op", o.Op, "rows_in", o.RowsIn, "rows_out", o.RowsOut, "elapsed", o.Elapsed)
	}
	for _, k := range env.stats.TopKeys(5) {
		logger.Debug("key usage", "column", k.Column, "count", k.Frequency)
	}
	return 0
}

// loadConfig loads configuration from file, .env, environment, and flags.
func loadConfig(g globalFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error

	// Start with defaults or load from file
	if g.configFile != "" {
		cfg, err = config.LoadFromFile(g.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// Apply .env then environment variables
	if g.envFile != "" {
		if err := config.LoadDotEnv(g.envFile); err != nil {
			return nil, err
		}
	}
	config.LoadFromEnv(cfg)

	// Apply command line flags (highest priority)
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}
	if g.seqURL != "" {
		cfg.Logging.SeqURL = g.seqURL
	}
	if g.delimiter != "" {
		cfg.CSV.Delimiter = g.delimiter
	}
	if g.nullToken != "" {
		cfg.CSV.NullToken = g.nullToken
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func csvOptions(cfg *config.Config) csvio.Options {
	opts := csvio.DefaultOptions()
	opts.Delimiter = []rune(cfg.CSV.Delimiter)[0]
	opts.NullToken = cfg.CSV.NullToken
	return opts
}

// runEnv is what every subcommand gets to work with.
type runEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	csv    csvio.Options
	stdout io.Writer
	stderr io.Writer
	stats  *observability.OpStats
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
