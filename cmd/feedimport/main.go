package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"podcast-studio/pkg/config"
	"podcast-studio/pkg/db"
	"podcast-studio/pkg/feed"
)

func main() {
	var (
		feedURL    = flag.String("feed", "", "Podcast RSS/Atom feed URL to import episodes from")
		configPath = flag.String("config", "", "Path to config file (optional)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *feedURL == "" {
		logger.Error("-feed is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client := db.NewSupabaseClient(db.SupabaseConfig{
		ConnectionString: cfg.Supabase.ConnectionString,
		SupabaseURL:      cfg.Supabase.URL,
		SupabaseKey:      cfg.Supabase.Key,
		Password:         cfg.Supabase.Password,
	})
	if err := client.Connect(ctx); err != nil {
		logger.Error("connect supabase", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	importer := feed.NewImporter(db.NewStore(client))

	start := time.Now()
	saved, err := importer.ImportURL(ctx, *feedURL)
	if err != nil {
		logger.Error("import failed", "feed", *feedURL, "saved", saved, "error", err)
		os.Exit(1)
	}

	logger.Info("import complete", "feed", *feedURL, "episodes", saved, "elapsed", time.Since(start).String())
}
