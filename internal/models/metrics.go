package models

import "time"

// SystemMetrics is a JSON friendly summary of the service's instrumentation.
type SystemMetrics struct {
	CacheHitRatio             float64   `json:"cache_hit_ratio"`
	CacheHits                 uint64    `json:"cache_hits"`
	CacheMisses               uint64    `json:"cache_misses"`
	RequestsTotal             uint64    `json:"requests_total"`
	AverageRequestDurationMs  float64   `json:"average_request_duration_ms"`
	UpstreamFetches           uint64    `json:"upstream_fetches"`
	UpstreamRetries           uint64    `json:"upstream_retries"`
	AverageUpstreamDurationMs float64   `json:"average_upstream_duration_ms"`
	RefreshSuccesses          uint64    `json:"refresh_successes"`
	RefreshFailures           uint64    `json:"refresh_failures"`
	CasesLoaded               int       `json:"cases_loaded"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generated_at"`
}
