package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/markbook/internal/app"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "markbook",
	Short: "Recalculate weighted markbook grades",
	Long: `markbook rolls assessment marks up into section and course grades.

Markbooks are read from YAML files or from the configured database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (default: built-in defaults)")

	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(gpaCmd)
}

// loadConfig falls back to defaults so a single YAML file can be recalculated without setup.
func loadConfig() (*app.Config, error) {
	if configPath == "" {
		config := app.DefaultConfig()
		if dsn := os.Getenv("MARKBOOK_DATABASE_DSN"); dsn != "" {
			config.Database.DSN = dsn
		}
		return config, config.Validate()
	}
	return app.LoadConfig(configPath)
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug.Printf("No .env file loaded: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
