// Package commands implements the CLI command structure using Cobra.
package commands

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configDir  string
	jsonOutput bool
	verbose    bool
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "deepseek",
	Short: "DeepSeek plugin CLI",
	Long: `Command-line interface for the DeepSeek chat plugin.

Use it to chat with DeepSeek models, manage API keys and configuration,
and build the plugin shared library for distribution.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional; ignore when absent.
		_ = godotenv.Load()
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default is ~/.deepseek)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

// ConfigDir returns the effective config directory.
func ConfigDir() string {
	if configDir != "" {
		return configDir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".deepseek"
	}
	return filepath.Join(home, ".deepseek")
}

// IsJSONOutput returns true if JSON output is enabled.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsVerbose returns true if verbose output is enabled.
func IsVerbose() bool {
	return verbose
}
