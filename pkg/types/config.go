// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address (default ":8090").
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout and WriteTimeout bound request processing.
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// StoreConfig holds settings for the SQLite backing store.
type StoreConfig struct {
	// Path is the database file location (default "scholaros.db").
	Path string `json:"path" yaml:"path"`
}

// SearchConfig holds settings for the search engine.
type SearchConfig struct {
	// DefaultLimit is the result count when the caller does not ask for
	// one (default 5).
	DefaultLimit int `json:"default_limit" yaml:"default_limit"`

	// MaxLimit caps the accepted per-request limit (default 24). Requests
	// outside [1, MaxLimit] are rejected as invalid.
	MaxLimit int `json:"max_limit" yaml:"max_limit"`

	// ResultCap is the hard ceiling on returned results regardless of the
	// requested limit (default 20).
	ResultCap int `json:"result_cap" yaml:"result_cap"`

	// SourceCap bounds the candidates fetched per source (default 25).
	SourceCap int `json:"source_cap" yaml:"source_cap"`

	// SourceTimeout is the per-source fetch deadline (default 800ms).
	// A source that misses it contributes zero candidates.
	SourceTimeout time.Duration `json:"source_timeout" yaml:"source_timeout"`
}

// HistoryConfig holds settings for the search-history subsystem.
type HistoryConfig struct {
	// Window is how many recent entries feed the personalization signal
	// (default 100, capped at 200).
	Window int `json:"window" yaml:"window"`

	// RecentDefaultLimit and RecentMaxLimit bound the recent-searches
	// read path (defaults 10 and 50).
	RecentDefaultLimit int `json:"recent_default_limit" yaml:"recent_default_limit"`
	RecentMaxLimit     int `json:"recent_max_limit" yaml:"recent_max_limit"`

	// Workers sizes the asynchronous recorder pool (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// RankingConfig holds settings for the scoring model.
type RankingConfig struct {
	// WeightsFile optionally points at a YAML file overriding the default
	// ranking weights.
	WeightsFile string `json:"weights_file,omitempty" yaml:"weights_file,omitempty"`
}

// ServiceConfig groups all subsystem configurations.
type ServiceConfig struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Search  SearchConfig  `json:"search" yaml:"search"`
	History HistoryConfig `json:"history" yaml:"history"`
	Ranking RankingConfig `json:"ranking" yaml:"ranking"`
}

// DefaultServiceConfig returns the built-in configuration used when no
// config file or environment overrides are present.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Server: ServerConfig{
			Addr:         ":8090",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Store: StoreConfig{Path: "scholaros.db"},
		Search: SearchConfig{
			DefaultLimit:  5,
			MaxLimit:      24,
			ResultCap:     20,
			SourceCap:     25,
			SourceTimeout: 800 * time.Millisecond,
		},
		History: HistoryConfig{
			Window:             100,
			RecentDefaultLimit: 10,
			RecentMaxLimit:     50,
			Workers:            4,
		},
	}
}
