package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chromabeam/engine/internal/fingerprint"
	"github.com/chromabeam/engine/internal/wavio"
)

var (
	registerName   string
	registerArtist string
	registerKeyID  string
)

var registerCmd = &cobra.Command{
	Use:   "register <wav-file>",
	Short: "Register a WAV file as a key on a running chromabeam server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		name, artist := registerName, registerArtist
		if name == "" || artist == "" {
			if f, err := os.Open(path); err == nil {
				if m, err := tag.ReadFrom(f); err == nil {
					if name == "" {
						name = m.Title()
					}
					if artist == "" {
						artist = m.Artist()
					}
				}
				f.Close()
			}
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		samples, _, err := wavio.Load(f, fingerprint.DefaultExtractorConfig().SampleRate)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}

		body := make([]byte, len(samples)*2)
		for i, s := range samples {
			body[2*i] = byte(s)
			body[2*i+1] = byte(s >> 8)
		}

		id := registerKeyID
		if id == "" {
			id = uuid.New().String()
		}

		q := url.Values{}
		if name != "" {
			q.Set("name", name)
		}
		if artist != "" {
			q.Set("artist", artist)
		}
		q.Set("filename", filepath.Base(path))

		reqURL := fmt.Sprintf("%s/v1/keys/%s?%s", apiURL, id, q.Encode())
		log.Debug("registering key", "id", id, "url", reqURL, "bytes", len(body))

		req, err := http.NewRequest(http.MethodPost, reqURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/octet-stream")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned %s: %s", resp.Status, respBody)
		}

		if output == "json" {
			fmt.Println(string(respBody))
			return nil
		}

		var parsed struct {
			ID               string `json:"id"`
			FingerprintCount int    `json:"fingerprint_count"`
		}
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			fmt.Println(string(respBody))
			return nil
		}

		color.New(color.FgGreen, color.Bold).Printf("registered %s\n", parsed.ID)
		fmt.Printf("  name:          %s\n", name)
		fmt.Printf("  artist:        %s\n", artist)
		fmt.Printf("  fingerprints:  %d\n", parsed.FingerprintCount)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "key name (default: read from file tags)")
	registerCmd.Flags().StringVar(&registerArtist, "artist", "", "key artist (default: read from file tags)")
	registerCmd.Flags().StringVar(&registerKeyID, "id", "", "key UUID (default: generated)")
}
