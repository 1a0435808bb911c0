package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bookrag/internal/answer"
	"bookrag/internal/api"
	"bookrag/internal/config"
	"bookrag/internal/embed"
	"bookrag/internal/index"
	"bookrag/internal/llm"
	"bookrag/internal/retrieve"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve question answering over HTTP",
	Long: `Serve loads the index once and exposes POST /api/ask. If the index is
missing or unusable the server still starts and refuses every question,
so a half-provisioned deployment degrades instead of crash-looping.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "config.yaml", "Path to the config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	stats := llm.NewStats(time.Hour)
	completer, err := llm.New(cfg, stats)
	if err != nil {
		return err
	}

	var guard api.Answerer
	idx, err := index.Load(cfg.IndexPath)
	if err != nil || len(idx.Chunks) == 0 || strings.TrimSpace(idx.EmbModel) == "" {
		log.Warn("serving without usable index, all questions will be refused",
			"path", cfg.IndexPath, "error", err)
		guard = answer.Refuser{}
	} else {
		emb := embed.NewClient(cfg.OllamaBaseURL, idx.EmbModel, cfg.RequestTimeout)
		retriever := retrieve.New(idx, emb)
		guard = answer.NewGuard(retriever, completer, cfg.K, cfg.SimThreshold, log)
	}

	srv := api.NewServer(guard, stats, log, cfg.APIKey)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting bookrag", "port", cfg.Port, "provider", completer.Name())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
