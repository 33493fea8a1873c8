// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and SEATFINDER_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"context"
	"runtime"
	"strings"
	"time"
)

// Storage backends.
const (
	StorageFile  = "file"
	StorageMinio = "minio"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogDB is the SQLite file holding the stadium catalog.
	CatalogDB string `koanf:"catalog_db"`

	// CatalogCSV, when set, is imported into the catalog at startup.
	CatalogCSV string `koanf:"catalog_csv"`

	// StatsAPIURL and SavantURL are the roster and Statcast base URLs.
	StatsAPIURL string `koanf:"stats_api_url"`
	SavantURL   string `koanf:"savant_url"`

	// LookbackDays sizes the home-run date window ending today.
	LookbackDays int `koanf:"lookback_days"`

	// FetchWorkers sets per-player fetch concurrency. FetchDelayMS is the
	// minimum spacing between upstream requests across all workers.
	FetchWorkers int `koanf:"fetch_workers"`
	FetchDelayMS int `koanf:"fetch_delay_ms"`

	// HTTPTimeoutMS and HTTPRetryMax configure outbound HTTP clients.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`
	HTTPRetryMax  int `koanf:"http_retry_max"`

	// ImageCacheSize is the number of decoded stadium images kept in memory.
	ImageCacheSize int `koanf:"image_cache_size"`

	// CandidateLimit is how many top-density points are checked for a seat.
	CandidateLimit int `koanf:"candidate_limit"`

	// BandwidthRule selects the KDE bandwidth rule: scott or silverman.
	BandwidthRule string `koanf:"bandwidth_rule"`

	// MarkerRadius and MinOutputWidth shape the rendered artifact.
	MarkerRadius   int `koanf:"marker_radius"`
	MinOutputWidth int `koanf:"min_output_width"`

	// StorageBackend is file or minio. OutputDir is used by the file backend.
	StorageBackend string `koanf:"storage_backend"`
	OutputDir      string `koanf:"output_dir"`

	MinioEndpoint  string `koanf:"minio_endpoint"`
	MinioAccessKey string `koanf:"minio_access_key"`
	MinioSecretKey string `koanf:"minio_secret_key"`
	MinioBucket    string `koanf:"minio_bucket"`
	MinioUseSSL    bool   `koanf:"minio_use_ssl"`

	// KafkaBrokers is a comma-separated broker list. Empty disables notifications.
	KafkaBrokers string `koanf:"kafka_brokers"`
	KafkaTopic   string `koanf:"kafka_topic"`

	// MaxBodyBytes caps POST /predict bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		CatalogDB:      "stadiums.db",
		StatsAPIURL:    "https://statsapi.mlb.com",
		SavantURL:      "https://baseballsavant.mlb.com",
		LookbackDays:   365,
		FetchWorkers:   runtime.NumCPU(),
		FetchDelayMS:   500,
		HTTPTimeoutMS:  15_000,
		HTTPRetryMax:   3,
		ImageCacheSize: 32,
		CandidateLimit: 100,
		BandwidthRule:  "scott",
		MarkerRadius:   10,
		MinOutputWidth: 1000,
		StorageBackend: StorageFile,
		OutputDir:      "output",
		MinioBucket:    "seatfinder",
		KafkaTopic:     "seatfinder.predictions",
		MaxBodyBytes:   1 << 20,
	}
}

// Brokers splits KafkaBrokers into a list, dropping empty entries.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// FetchDelay returns the minimum spacing between upstream requests.
func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelayMS) * time.Millisecond
}

// HTTPTimeout returns the outbound request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}
