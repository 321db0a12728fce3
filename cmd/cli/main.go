package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	apiURL string = "http://localhost:8787"
	output string = "text" // "text" or "json"
)

var rootCmd = &cobra.Command{
	Use:   "chromabeam",
	Short: "chromabeam CLI - extract, register, and query acoustic fingerprints",
	Long: `chromabeam is a command-line client for the chromabeam acoustic
fingerprint search engine. Extract fingerprints from WAV files, register
them as keys, run queries against a running server, or run the server
itself.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	log.SetReportTimestamp(false)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
