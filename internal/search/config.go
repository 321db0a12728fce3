package search

import "github.com/chromabeam/engine/internal/coreerr"

// DatabaseConfig holds the subset of the session configuration the query
// engine reads: the beam search parameters plus the sample_rate/
// window_stride pair needed to convert key/query positions into seconds for
// the result record (spec.md §6.2).
type DatabaseConfig struct {
	SampleRate          int
	WindowStride        int
	SearchBeamCount     int
	SearchWindowSize    int
	SearchNonmaxOverlap float64
	SearchLengthPenalty uint32
	SearchScorePenalty  uint32
}

// DefaultDatabaseConfig mirrors original_source/src/config.rs's defaults.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		SampleRate:          11500,
		WindowStride:        2048,
		SearchBeamCount:     1000,
		SearchWindowSize:    3,
		SearchNonmaxOverlap: 1.0,
		SearchLengthPenalty: 3,
		SearchScorePenalty:  100,
	}
}

// Validate checks the invariants the query engine relies on.
// search_nonmax_overlap is threaded through and validated but never read by
// Update/Finalize — no NMS merge pass is implemented (spec.md §9).
func (cfg DatabaseConfig) Validate() error {
	if cfg.SampleRate <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "sample_rate must be positive"}
	}
	if cfg.WindowStride <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "window_stride must be positive"}
	}
	if cfg.SearchBeamCount <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "search_beam_count must be positive"}
	}
	if cfg.SearchWindowSize <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "search_window_size must be positive"}
	}
	if cfg.SearchNonmaxOverlap < 0 {
		return &coreerr.InvalidConfiguration{Reason: "search_nonmax_overlap must not be negative"}
	}
	return nil
}
