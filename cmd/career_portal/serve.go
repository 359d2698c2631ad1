package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jonathan/career-portal/internal/config"
	"github.com/jonathan/career-portal/internal/localstore"
	"github.com/jonathan/career-portal/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort      int
	servePageCache bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for tracking jobs, optimizing resumes and importing postings.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: PORT or 8080)")
	serveCmd.Flags().BoolVar(&servePageCache, "page-cache", false, "Cache scraped pages in the local store")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	databaseURL := databaseURL()
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	serverCfg, err := config.NewServerConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		serverCfg.Port = servePort
	}
	scrapeCfg, err := scrapeConfig()
	if err != nil {
		return err
	}

	cfg := server.Config{
		Port:            serverCfg.Port,
		DatabaseURL:     databaseURL,
		ShutdownTimeout: serverCfg.ShutdownTimeout,
		AllowedOrigins:  serverCfg.AllowedOrigins,
		Scrape:          *scrapeCfg,
	}
	if servePageCache {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		cfg.PageCache = store
		slog.Info("caching scraped pages", slog.String("store", resolvedStorePath()))
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// databaseURL prefers DATABASE_URL over the config file.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fileConfig.DatabaseURL
}

// scrapeConfig reads the scrape settings from the environment and overlays
// the config file.
func scrapeConfig() (*config.ScrapeConfig, error) {
	cfg, err := config.NewScrapeConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(fileConfig); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolvedStorePath() string {
	if storePath != "" {
		return storePath
	}
	return localstore.DefaultPath()
}

// openStore opens the local store selected by --store or the config file.
func openStore() (*localstore.Store, error) {
	store, err := localstore.Open(resolvedStorePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return store, nil
}
