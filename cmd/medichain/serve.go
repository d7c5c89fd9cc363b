package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"medichain/internal/analysis"
	"medichain/internal/auth"
	"medichain/internal/config"
	"medichain/internal/server"
	"medichain/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MediChain HTTP service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := store.SeedDemoData(cmd.Context(), st); err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	requester, err := buildRequester(cfg)
	if err != nil {
		return err
	}

	ttl, err := cfg.TokenTTL()
	if err != nil {
		return err
	}
	authSvc := auth.NewService(st, cfg.Auth.TokenSecret, ttl)

	srv := server.New(authSvc, requester, st, st, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create storage directory: %w", err)
			}
		}
		return store.NewLocalStore(cfg.Storage.Path)
	}
}

func buildRequester(cfg *config.Config) (*analysis.Requester, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, fmt.Errorf("invalid llm config: %w", err)
	}
	timeout, err := cfg.LLMTimeout()
	if err != nil {
		return nil, err
	}

	gc := analysis.DefaultGeminiConfig(cfg.LLM.APIKey)
	gc.Timeout = timeout
	if cfg.LLM.Model != "" {
		gc.Model = cfg.LLM.Model
	}
	if cfg.LLM.BaseURL != "" {
		gc.BaseURL = cfg.LLM.BaseURL
	}
	if cfg.LLM.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = cfg.LLM.MaxOutputTokens
	}

	return analysis.NewRequester(analysis.NewGeminiClientWithConfig(gc)), nil
}
