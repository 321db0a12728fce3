package fingerprint

import "github.com/chromabeam/engine/internal/coreerr"

// ExtractorConfig holds the subset of the session configuration (spec.md
// §6 table) that the feature extractor reads. Defaults match
// original_source/src/config.rs's SessionConfiguration::default.
type ExtractorConfig struct {
	SampleRate           int
	WindowSize           int
	WindowStride         int
	ChromaNOctaves       int
	ChromaBinsPerOctave  int
	ChromaFRef           float64
	ChromaQFactor        float64
	QuantizerMinEnergy   float64
	QuantizerBitsPerBin  int
	QuantizerTopK        int
}

// DefaultExtractorConfig returns the values carried over from the original
// Rust implementation's SessionConfiguration::default.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		SampleRate:          11500,
		WindowSize:          4096,
		WindowStride:        2048,
		ChromaNOctaves:      8,
		ChromaBinsPerOctave: 12,
		ChromaFRef:          27.5,
		ChromaQFactor:       20.0,
		QuantizerMinEnergy:  0.05,
		QuantizerBitsPerBin: 5,
		QuantizerTopK:       8,
	}
}

// Validate checks the invariants spec.md §6 places on extractor config.
// quantizer_min_energy is threaded through and validated but never read by
// the extractor itself (spec.md §9: "expose it as unused unless spec'd
// downstream").
func (cfg ExtractorConfig) Validate() error {
	if cfg.SampleRate <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "sample_rate must be positive"}
	}
	if cfg.WindowSize <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "window_size must be positive"}
	}
	if cfg.WindowStride <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "window_stride must be positive"}
	}
	if cfg.WindowStride > cfg.WindowSize {
		return &coreerr.InvalidConfiguration{Reason: "window_stride must not exceed window_size"}
	}
	if cfg.ChromaNOctaves <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "chroma_n_octaves must be positive"}
	}
	if cfg.ChromaBinsPerOctave <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "chroma_bins_per_octave must be positive"}
	}
	if cfg.ChromaFRef <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "chroma_f_ref must be positive"}
	}
	if cfg.ChromaQFactor <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "chroma_q_factor must be positive"}
	}
	if cfg.QuantizerMinEnergy < 0 {
		return &coreerr.InvalidConfiguration{Reason: "quantizer_min_energy must not be negative"}
	}
	if cfg.QuantizerBitsPerBin <= 0 {
		return &coreerr.InvalidConfiguration{Reason: "quantizer_bits_per_bin must be positive"}
	}
	if cfg.QuantizerTopK < 0 {
		return &coreerr.InvalidConfiguration{Reason: "quantizer_topk must not be negative"}
	}
	if cfg.QuantizerTopK > cfg.ChromaBinsPerOctave {
		return &coreerr.InvalidConfiguration{Reason: "quantizer_topk must not exceed chroma_bins_per_octave"}
	}
	if cfg.ChromaBinsPerOctave*cfg.QuantizerBitsPerBin > 64 {
		return &coreerr.InvalidConfiguration{Reason: "chroma_bins_per_octave * quantizer_bits_per_bin must not exceed 64"}
	}
	return nil
}
