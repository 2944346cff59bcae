package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"podcast-studio/pkg/aiclient"
	"podcast-studio/pkg/config"
	"podcast-studio/pkg/content"
	"podcast-studio/pkg/db"
	"podcast-studio/pkg/extraction"
	"podcast-studio/pkg/httpclient"
	"podcast-studio/pkg/langdetect"
	"podcast-studio/pkg/review"
	"podcast-studio/pkg/server"
	"podcast-studio/pkg/translation"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	supaClient := db.NewSupabaseClient(db.SupabaseConfig{
		ConnectionString: cfg.Supabase.ConnectionString,
		SupabaseURL:      cfg.Supabase.URL,
		SupabaseKey:      cfg.Supabase.Key,
		Password:         cfg.Supabase.Password,
		MaxOpenConns:     cfg.Supabase.MaxOpenConns,
		MaxIdleConns:     cfg.Supabase.MaxIdleConns,
	})
	if err := supaClient.Connect(ctx); err != nil {
		logger.Error("connect supabase", "error", err)
		os.Exit(1)
	}
	defer supaClient.Close()

	store := db.NewStore(supaClient)

	endpoints := aiclient.New(aiclient.Config{
		BaseURL: cfg.AI.BaseURL,
		Token:   cfg.AI.Token,
		Timeout: cfg.AI.Timeout,
	})

	translator := translation.New(endpoints, store, langdetect.NewValidator(), logger, translation.Config{
		WorkerCount: cfg.Fanout.WorkerCount,
		RetryCount:  cfg.Fanout.RetryCount,
		Timeout:     cfg.AI.Timeout,
	})

	extractor := extraction.New(endpoints, store,
		content.NewPreparer(httpclient.CloudflareClient), translator, logger)

	srv := server.New(logger, review.NewManager(), extractor, translator, store)

	stop := make(chan struct{})
	srv.StartSweepLoop(stop, 30*time.Minute, 24*time.Hour)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server started", "addr", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	close(stop)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
