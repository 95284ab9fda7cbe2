// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholar-harvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// HarvestConfig holds settings for the author harvest run.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxPapers is the target number of unique records to collect (default 50).
	MaxPapers int `json:"max_papers" yaml:"max_papers"`

	// PageDelay is the pacing delay between consecutive page loads (default 2s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// SettleDelay is the wait between the two stability checks the pagination
	// controller performs before declaring the source exhausted (default 2s).
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay"`

	// DedupBuffer caps the extra rows requested per iteration to absorb
	// duplicates from a "load more" action (default 20).
	DedupBuffer int `json:"dedup_buffer" yaml:"dedup_buffer"`

	// CollectDebug enables per-paper candidate collection in the debug report.
	CollectDebug bool `json:"collect_debug" yaml:"collect_debug"`
}

// FallbackConfig holds settings for the download-link fallback chain.
type FallbackConfig struct {
	HTTPConfig `yaml:",inline"`

	// MirrorDomains lists mirror-service base URLs probed in order by the
	// mirror stage. Operators substitute jurisdiction-appropriate services.
	MirrorDomains []string `json:"mirror_domains" yaml:"mirror_domains"`

	// MirrorDelay is the pacing delay between consecutive mirror attempts
	// (default 2500ms). Mirror services tend to be lightly provisioned.
	MirrorDelay time.Duration `json:"mirror_delay" yaml:"mirror_delay"`

	// UnpaywallEmail is the contact address the open-access lookup service
	// requires on each request.
	UnpaywallEmail string `json:"unpaywall_email,omitempty" yaml:"unpaywall_email,omitempty"`
}

// APIConfig holds settings for the open-access/API collaborator.
type APIConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RequestsPerSecond paces outgoing API calls (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// IdentityConfig holds settings for author-identity resolution.
type IdentityConfig struct {
	// CacheDir is the directory holding the lookup cache database. Empty
	// disables cross-run caching.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// CacheTTL bounds how long a resolved identity may be reused (default 12h).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Harvest  HarvestConfig  `json:"harvest" yaml:"harvest"`
	Fallback FallbackConfig `json:"fallback" yaml:"fallback"`
	API      APIConfig      `json:"api" yaml:"api"`
	Identity IdentityConfig `json:"identity" yaml:"identity"`
}
