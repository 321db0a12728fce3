package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chromabeam/engine/internal/apiserver"
	"github.com/chromabeam/engine/internal/bootstrap"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chromabeam engine server in-process",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			os.Setenv("PORT", servePort)
		}

		eng, err := bootstrap.Start()
		if err != nil {
			return err
		}
		defer eng.Close()

		port := servePort
		if port == "" {
			port = os.Getenv("PORT")
		}
		if port == "" {
			port = "8787"
		}
		srv := apiserver.New(apiserver.Deps{
			Session:      eng.Session,
			KeyRegistry:  eng.KeyRegistry,
			RedisClient:  eng.RedisClient,
			ExtractorCfg: eng.Config.Extractor,
			Addr:         ":" + port,
		})

		go func() {
			log.Info("chromabeam engine listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal("server failed", "err", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (default: PORT env or 8787)")
}
