package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chromabeam/engine/internal/fingerprint"
	"github.com/chromabeam/engine/internal/wavio"
)

var extractSampleRate int

var extractCmd = &cobra.Command{
	Use:   "extract <wav-file>",
	Short: "Extract an acoustic fingerprint sequence from a WAV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		cfg := fingerprint.DefaultExtractorConfig()
		if extractSampleRate > 0 {
			cfg.SampleRate = extractSampleRate
		}

		samples, nativeRate, err := wavio.Load(f, cfg.SampleRate)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		log.Debug("decoded WAV", "path", path, "native_sample_rate", nativeRate, "samples", len(samples))

		extractor, err := fingerprint.NewExtractor(cfg)
		if err != nil {
			return fmt.Errorf("build extractor: %w", err)
		}

		seq := extractor.Features(samples)

		if output == "json" {
			fmt.Printf(`{"file":%q,"fingerprint_count":%d,"sample_rate":%d}`+"\n", path, len(seq), cfg.SampleRate)
			return nil
		}

		color.New(color.FgGreen, color.Bold).Printf("%s\n", path)
		fmt.Printf("  fingerprints:  %d\n", len(seq))
		fmt.Printf("  sample rate:   %d Hz\n", cfg.SampleRate)
		if len(seq) > 0 {
			fmt.Printf("  first:         %016x\n", uint64(seq[0]))
			fmt.Printf("  last:          %016x\n", uint64(seq[len(seq)-1]))
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().IntVar(&extractSampleRate, "sample-rate", 0, "resample to this rate before extraction (0 = use default)")
}
