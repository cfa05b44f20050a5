package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avisanghavi/clout/internal/config"
	"github.com/avisanghavi/clout/internal/db"
	"github.com/avisanghavi/clout/internal/db/sqlite"
	"github.com/avisanghavi/clout/internal/llm"
	"github.com/avisanghavi/clout/internal/logging"
	"github.com/avisanghavi/clout/internal/network"
	"github.com/avisanghavi/clout/internal/observability"
)

// Persistent flags shared by every command
var (
	flagConfigPath  string
	flagAPIKey      string
	flagDatabaseURL string
	flagDataDir     string
	flagLogFile     string
	flagSeed        int64
	flagConcurrency int
	flagVerbose     bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	flags.StringVar(&flagAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	flags.StringVar(&flagDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var; SQLite is used when empty)")
	flags.StringVar(&flagDataDir, "data-dir", "", "SQLite data directory (default ~/.clout/data)")
	flags.StringVar(&flagLogFile, "log-file", "", "Write JSON logs to this file as well (rotated)")
	flags.Int64Var(&flagSeed, "seed", 0, "Seed for the simulated mutual-connection finder (random when unset)")
	flags.IntVar(&flagConcurrency, "concurrency", 0, "Number of messages drafted in parallel")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "Print detailed debug information")
}

// loadConfig merges the config file, explicitly set flags, the environment and defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if flagConfigPath != "" {
		loadedCfg, err := config.LoadConfig(flagConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
	}

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = flagAPIKey
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = flagDatabaseURL
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if flags.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}
	if flags.Changed("seed") {
		seed := flagSeed
		cfg.Seed = &seed
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = flagConcurrency
	}
	if flags.Changed("verbose") {
		cfg.Verbose = flagVerbose
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// app holds the collaborators a command needs
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	store   db.Store
	client  llm.Client
	out     io.Writer
	printer *observability.Printer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{
		Verbose: cfg.Verbose,
		File:    cfg.LogFile,
		Console: cmd.ErrOrStderr(),
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	out := cmd.OutOrStdout()
	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		client:  client,
		out:     out,
		printer: observability.NewPrinter(out),
	}, nil
}

func (a *app) Close() {
	_ = a.client.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// params returns the generation parameters for message and ICP generation.
func (a *app) params() llm.Params {
	return a.cfg.LLM().Params(llm.TierStandard)
}

func (a *app) finder() network.SharedConnectionFinder {
	if a.cfg.Seed != nil {
		return network.NewSeededFinder(*a.cfg.Seed)
	}
	return network.NewSeededFinder(time.Now().UnixNano())
}

func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return database, nil
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return store, nil
}

// newClient returns the guarded Gemini client, or llm.Unavailable when no API key is configured.
func newClient(ctx context.Context, cfg config.Config, logger *zap.Logger) (llm.Client, error) {
	if cfg.APIKey == "" {
		logger.Warn("no API key configured; messages and ICP will use fallback templates")
		return llm.Unavailable, nil
	}

	inner, err := llm.NewClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	return llm.NewGuardedClient(inner, llm.GuardOptions{
		Timeout:           cfg.LLMTimeout(),
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Concurrency,
	}), nil
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
}
