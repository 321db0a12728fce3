package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chromabeam/engine/internal/fingerprint"
	"github.com/chromabeam/engine/internal/wavio"
)

const queryFrameSamples = 4096 // one extractor window per frame, sent as it streams

var queryTopN int

type queryResult struct {
	ID         string  `json:"ID"`
	Score      float32 `json:"Score"`
	KeyStart   float32 `json:"KeyStart"`
	KeyEnd     float32 `json:"KeyEnd"`
	QueryStart float32 `json:"QueryStart"`
}

type leaderboardMessage struct {
	Final   bool          `json:"final"`
	Results []queryResult `json:"results"`
}

var queryCmd = &cobra.Command{
	Use:   "query <wav-file>",
	Short: "Stream a WAV file to a running chromabeam server and print matches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		cfg := fingerprint.DefaultExtractorConfig()
		samples, _, err := wavio.Load(f, cfg.SampleRate)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}

		wsURL := "ws" + apiURL[len("http"):] + "/v1/query/ws"
		log.Debug("connecting", "url", wsURL)

		ctx := context.Background()
		conn, _, err := websocket.Dial(ctx, wsURL, nil)
		if err != nil {
			return fmt.Errorf("connect to %s: %w", wsURL, err)
		}
		defer conn.CloseNow()

		var final leaderboardMessage
		done := make(chan error, 1)
		go func() {
			for {
				_, data, err := conn.Read(ctx)
				if err != nil {
					done <- nil
					return
				}
				var msg leaderboardMessage
				if err := json.Unmarshal(data, &msg); err != nil {
					continue
				}
				if msg.Final {
					final = msg
					continue
				}
				printLeaderboard(msg, false)
			}
		}()

		for i := 0; i < len(samples); i += queryFrameSamples {
			end := i + queryFrameSamples
			if end > len(samples) {
				end = len(samples)
			}
			frame := samples[i:end]
			body := make([]byte, len(frame)*2)
			for j, s := range frame {
				body[2*j] = byte(s)
				body[2*j+1] = byte(s >> 8)
			}
			if err := conn.Write(ctx, websocket.MessageBinary, body); err != nil {
				return fmt.Errorf("send frame: %w", err)
			}
			time.Sleep(time.Millisecond) // pace writes so the server can analyze as it goes
		}

		conn.Close(websocket.StatusNormalClosure, "done sending")
		<-done

		printLeaderboard(final, true)
		return nil
	},
}

func printLeaderboard(msg leaderboardMessage, final bool) {
	if output == "json" {
		b, _ := json.Marshal(msg)
		fmt.Println(string(b))
		return
	}

	label := "leaderboard"
	if final {
		label = "final results"
	}
	color.New(color.FgCyan, color.Bold).Printf("--- %s ---\n", label)

	n := len(msg.Results)
	if n > queryTopN {
		n = queryTopN
	}
	for i := 0; i < n; i++ {
		r := msg.Results[i]
		fmt.Printf("  %2d. %s  score=%.3f  key=[%.2fs-%.2fs]  query_start=%.2fs\n",
			i+1, r.ID, r.Score, r.KeyStart, r.KeyEnd, r.QueryStart)
	}
	if n == 0 {
		fmt.Println("  (no matches)")
	}
}

func init() {
	queryCmd.Flags().IntVar(&queryTopN, "top", 10, "number of results to print")
}
