package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "wordmatch",
		Short:        "Word/meaning matching game served over WebSocket",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on (overrides config)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewPlayCmd(&configPath))
	cmd.AddCommand(NewImportCmd(&configPath))
	cmd.AddCommand(NewGenerateCmd(&configPath))
	return cmd
}

// setIDFromPath names a set after its workbook: "sets/places.xlsx" is "places".
func setIDFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
