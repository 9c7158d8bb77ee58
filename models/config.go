// Package models defines data structures for configuration and conversion.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the downloader, resolver and API.
// Values come from an optional YAML file; CLI flags override them.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	CacheDir string `yaml:"cache_dir"`
	DBPath   string `yaml:"db_path"`

	// NCBI tool identification
	Email string `yaml:"email"`
	Tool  string `yaml:"tool"`

	Concurrency    int           `yaml:"concurrency"`
	BatchSize      int           `yaml:"batch_size"`
	ResolveDelay   time.Duration `yaml:"resolve_delay"`
	PrefetchDelay  time.Duration `yaml:"prefetch_delay"`
	CacheExpiry    time.Duration `yaml:"cache_expiry"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries"`

	UserAgent      string `yaml:"user_agent"`
	ArticleBaseURL string `yaml:"article_base_url"`
	IDConvURL      string `yaml:"idconv_url"`
	BioCURL        string `yaml:"bioc_url"`
	EFetchURL      string `yaml:"efetch_url"`

	ListenAddr string `yaml:"listen_addr"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		DataDir:        "data",
		CacheDir:       "data/cache",
		DBPath:         "data/cache/pmc2md.db",
		Tool:           "pmc2md",
		Concurrency:    3,
		BatchSize:      200,
		ResolveDelay:   400 * time.Millisecond,
		PrefetchDelay:  200 * time.Millisecond,
		CacheExpiry:    30 * 24 * time.Hour,
		RequestTimeout: 30 * time.Second,
		MaxRetries:     5,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		ArticleBaseURL: "https://www.ncbi.nlm.nih.gov/pmc/articles",
		IDConvURL:      "https://www.ncbi.nlm.nih.gov/pmc/utils/idconv/v1.0/",
		BioCURL:        "https://www.ncbi.nlm.nih.gov/research/bionlp/RESTful/supplmat.cgi",
		EFetchURL:      "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi",
		ListenAddr:     ":8000",
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults restores defaults for zero or negative values.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.Tool == "" {
		c.Tool = def.Tool
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.BatchSize <= 0 || c.BatchSize > def.BatchSize {
		c.BatchSize = def.BatchSize
	}
	if c.ResolveDelay < 0 {
		c.ResolveDelay = def.ResolveDelay
	}
	if c.PrefetchDelay < 0 {
		c.PrefetchDelay = def.PrefetchDelay
	}
	if c.CacheExpiry <= 0 {
		c.CacheExpiry = def.CacheExpiry
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.ArticleBaseURL == "" {
		c.ArticleBaseURL = def.ArticleBaseURL
	}
	if c.IDConvURL == "" {
		c.IDConvURL = def.IDConvURL
	}
	if c.BioCURL == "" {
		c.BioCURL = def.BioCURL
	}
	if c.EFetchURL == "" {
		c.EFetchURL = def.EFetchURL
	}
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
}
