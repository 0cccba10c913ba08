// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration for one sync invocation.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the ops listener, e.g. ":9090".
	// Empty disables the listener.
	MetricsAddr string `koanf:"metrics_addr"`

	// Timezone is the reference timezone attendance wall-clock times are
	// interpreted in.
	Timezone string `koanf:"timezone"`

	// WorkerCount sets the number of normalization workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory raw event queue.
	QueueSize int `koanf:"queue_size"`

	// MergeChunkSize caps rows per upsert statement inside the merge
	// transaction.
	MergeChunkSize int `koanf:"merge_chunk_size"`

	// DBDSN is the MySQL DSN for both the staging and canonical tables.
	DBDSN string `koanf:"db_dsn"`

	// StagingTable holds raw (payload, load_ts) rows.
	StagingTable string `koanf:"staging_table"`

	// CanonicalTable is the reconciled attendance table.
	CanonicalTable string `koanf:"canonical_table"`

	// Source API settings. BaseURL empty means extraction is skipped and
	// the run reconciles whatever is already staged.
	SourceBaseURL     string `koanf:"source_base_url"`
	SourceEntriesPath string `koanf:"source_entries_path"`
	SourceKeyID       string `koanf:"source_key_id"`
	SourceKeySecret   string `koanf:"source_key_secret"`
	SourceToken       string `koanf:"source_token"`
	SourcePageSize    int    `koanf:"source_page_size"`

	// WindowDays sets how many days back the extraction window starts.
	WindowDays int `koanf:"window_days"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		MetricsAddr:       "",
		Timezone:          "Asia/Manila",
		WorkerCount:       runtime.NumCPU() * 2,
		QueueSize:         10_000,
		MergeChunkSize:    500,
		DBDSN:             "",
		StagingTable:      "jibble_raw_attendance",
		CanonicalTable:    "jibble_attendance",
		SourceBaseURL:     "",
		SourceEntriesPath: "/v1/time-entries",
		SourcePageSize:    200,
		WindowDays:        1,
	}
}
