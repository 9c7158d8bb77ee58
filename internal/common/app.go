package common

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pmc2md/models"
	"github.com/dtnitsch/pmc2md/pkg/abstract"
	"github.com/dtnitsch/pmc2md/pkg/caching"
	"github.com/dtnitsch/pmc2md/pkg/converter"
	"github.com/dtnitsch/pmc2md/pkg/db"
	"github.com/dtnitsch/pmc2md/pkg/downloader"
	"github.com/dtnitsch/pmc2md/pkg/fetcher"
	"github.com/dtnitsch/pmc2md/pkg/gate"
	"github.com/dtnitsch/pmc2md/pkg/resolver"
	"github.com/dtnitsch/pmc2md/pkg/storage"
	"github.com/dtnitsch/pmc2md/pkg/supplement"
)

// NewLogger builds the JSON stderr logger from --quiet and --verbose.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads --config and applies the global flag overrides.
func LoadConfig(c *cli.Context) (models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if email := c.String("email"); email != "" {
		cfg.Email = email
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
		cfg.CacheDir = filepath.Join(cfg.DataDir, "cache")
		cfg.DBPath = filepath.Join(cfg.CacheDir, db.DefaultDBName)
	}
	if c.IsSet("workers") {
		cfg.Concurrency = c.Int("workers")
	}
	return cfg, nil
}

// App holds the collaborators a command needs.
type App struct {
	Config          models.Config
	Logger          *slog.Logger
	DB              *db.DB
	Storage         *storage.Storage
	SupplementCache *caching.Cache
	Resolver        *resolver.Resolver
	Supplements     *supplement.Client
	Downloader      *downloader.Downloader
}

// NewApp loads configuration and wires the pipeline. Close must be called.
func NewApp(c *cli.Context) (*App, error) {
	logger := NewLogger(c)
	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, err
	}
	return Build(cfg, logger)
}

// Build wires the pipeline for cfg.
func Build(cfg models.Config, logger *slog.Logger) (*App, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	cache, err := caching.NewCache(filepath.Join(cfg.CacheDir, "supplements"), 0)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open supplement cache: %w", err)
	}

	res := resolver.New(database, resolver.Options{
		URL:         cfg.IDConvURL,
		Email:       cfg.Email,
		Tool:        cfg.Tool,
		BatchSize:   cfg.BatchSize,
		Delay:       cfg.ResolveDelay,
		CacheExpiry: cfg.CacheExpiry,
		Timeout:     cfg.RequestTimeout,
		MaxRetries:  cfg.MaxRetries,
		Logger:      logger,
	})
	supp := supplement.New(cache, supplement.Options{
		BaseURL:    cfg.BioCURL,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		Delay:      cfg.PrefetchDelay,
		Logger:     logger,
	})
	abs := abstract.New(abstract.Options{
		URL:        cfg.EFetchURL,
		Email:      cfg.Email,
		Tool:       cfg.Tool,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	f := fetcher.NewFetcher(fetcher.Options{
		BaseURL:    cfg.ArticleBaseURL,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	store := storage.New(cfg.DataDir)

	d := &downloader.Downloader{
		Converter:   converter.New(),
		Fetcher:     f,
		Resolver:    res,
		Supplements: supp,
		Abstracts:   abs,
		Storage:     store,
		Runs:        database,
		Gate:        gate.New(cfg.Concurrency),
		Workers:     cfg.Concurrency,
		Logger:      logger,
	}

	return &App{
		Config:          cfg,
		Logger:          logger,
		DB:              database,
		Storage:         store,
		SupplementCache: cache,
		Resolver:        res,
		Supplements:     supp,
		Downloader:      d,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
