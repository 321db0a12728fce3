// Package config loads the engine's session configuration (spec.md §6) from
// environment variables and an optional config file, using the same
// viper-based layering the teacher's CLI module uses for its own config.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/chromabeam/engine/internal/session"
)

// envPrefix namespaces every environment variable this package reads, e.g.
// CHROMABEAM_WINDOW_SIZE.
const envPrefix = "CHROMABEAM"

// Load builds a session.Config from defaults, an optional file at path (may
// be empty to skip), and environment variables, in that order of
// precedence (env wins). It does not validate the result — callers pass it
// to session.New, which validates both halves.
func Load(path string) (session.Config, error) {
	cfg := session.DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return session.Config{}, err
		}
	}

	cfg.Extractor.SampleRate = v.GetInt("sample_rate")
	cfg.Extractor.WindowSize = v.GetInt("window_size")
	cfg.Extractor.WindowStride = v.GetInt("window_stride")
	cfg.Extractor.ChromaNOctaves = v.GetInt("chroma_n_octaves")
	cfg.Extractor.ChromaBinsPerOctave = v.GetInt("chroma_bins_per_octave")
	cfg.Extractor.ChromaFRef = v.GetFloat64("chroma_f_ref")
	cfg.Extractor.ChromaQFactor = v.GetFloat64("chroma_q_factor")
	cfg.Extractor.QuantizerMinEnergy = v.GetFloat64("quantizer_min_energy")
	cfg.Extractor.QuantizerBitsPerBin = v.GetInt("quantizer_bits_per_bin")
	cfg.Extractor.QuantizerTopK = v.GetInt("quantizer_topk")

	cfg.Database.SampleRate = cfg.Extractor.SampleRate
	cfg.Database.WindowStride = cfg.Extractor.WindowStride
	cfg.Database.SearchBeamCount = v.GetInt("search_beam_count")
	cfg.Database.SearchWindowSize = v.GetInt("search_window_size")
	cfg.Database.SearchNonmaxOverlap = v.GetFloat64("search_nonmax_overlap")
	cfg.Database.SearchLengthPenalty = uint32(v.GetUint("search_length_penalty"))
	cfg.Database.SearchScorePenalty = uint32(v.GetUint("search_score_penalty"))

	return cfg, nil
}

func bindDefaults(v *viper.Viper, cfg session.Config) {
	v.SetDefault("sample_rate", cfg.Extractor.SampleRate)
	v.SetDefault("window_size", cfg.Extractor.WindowSize)
	v.SetDefault("window_stride", cfg.Extractor.WindowStride)
	v.SetDefault("chroma_n_octaves", cfg.Extractor.ChromaNOctaves)
	v.SetDefault("chroma_bins_per_octave", cfg.Extractor.ChromaBinsPerOctave)
	v.SetDefault("chroma_f_ref", cfg.Extractor.ChromaFRef)
	v.SetDefault("chroma_q_factor", cfg.Extractor.ChromaQFactor)
	v.SetDefault("quantizer_min_energy", cfg.Extractor.QuantizerMinEnergy)
	v.SetDefault("quantizer_bits_per_bin", cfg.Extractor.QuantizerBitsPerBin)
	v.SetDefault("quantizer_topk", cfg.Extractor.QuantizerTopK)
	v.SetDefault("search_beam_count", cfg.Database.SearchBeamCount)
	v.SetDefault("search_window_size", cfg.Database.SearchWindowSize)
	v.SetDefault("search_nonmax_overlap", cfg.Database.SearchNonmaxOverlap)
	v.SetDefault("search_length_penalty", cfg.Database.SearchLengthPenalty)
	v.SetDefault("search_score_penalty", cfg.Database.SearchScorePenalty)
}
