// Package main provides the entry point for the Career Portal CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/career-portal/internal/config"
	"github.com/jonathan/career-portal/internal/localstore"
	"github.com/jonathan/career-portal/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	storePath  string
	userID     string

	// fileConfig holds the values loaded from --config, if any.
	fileConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "career_portal",
	Short: "Career Portal job tracker and resume optimizer",
	Long: "Career Portal tracks job applications through their pipeline, imports postings from job boards " +
		"and tailors resumes to each posting's keywords, from the command line or via REST API.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides LOG_FORMAT)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Path to the local store (default ~/.career_portal/store.db)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "Scope local store data to this user")
}

// setup loads the config file and installs the logger before any command
// runs. Flags win over the config file, which wins over the environment.
func setup(_ *cobra.Command, _ []string) error {
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		fileConfig = cfg.MergeWithDefaults(config.Config{StorePath: localstore.DefaultPath()})
	}

	logCfg, err := config.NewLogConfig()
	if err != nil {
		return err
	}
	if err := logCfg.Override(fileConfig.LogLevel, fileConfig.LogFormat); err != nil {
		return err
	}
	if err := logCfg.Override(logLevel, logFormat); err != nil {
		return err
	}
	logging.Init(*logCfg)

	if storePath == "" {
		storePath = fileConfig.StorePath
	}
	if userID == "" {
		userID = fileConfig.UserID
	}
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
