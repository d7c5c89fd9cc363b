package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"medichain/internal/config"
	"medichain/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "medichain",
	Short: "MediChain - AI symptom analysis service",
	Long: `MediChain is an AI-assisted symptom checker.

It accepts symptom descriptions, screens them for emergency indicators
before any remote call, and runs a single schema-validated LLM analysis
per submission. Reports are persisted for signed-in users and served
through role-scoped dashboard endpoints.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; environment variables win either way.
		_ = godotenv.Load()

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logging.Initialize(cfg.Logging.Dir, cfg.Logging.DebugMode || verbose); err != nil {
			return fmt.Errorf("failed to initialize category logs: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the HTTP service.
		return runServe(cmd, args)
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
