package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KIIGIN/bot-constructor/internal/compiler"
	"github.com/KIIGIN/bot-constructor/internal/config"
	"github.com/KIIGIN/bot-constructor/internal/logging"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

var rootCmd = &cobra.Command{
	Use:           "botengine",
	Short:         "botengine runs graph-based Telegram bot scenarios",
	Long:          `botengine serves Telegram webhooks, walking each participant through a scenario graph of messages, menus, delays and input blocks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")
}

// loadConfig reads --config, falling back to built-in defaults and BOT_* variables.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("BOT_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, fallbackLevel string) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = fallbackLevel
	}
	return logging.New(logging.ParseLevel(level))
}

// readScenario compiles a scenario document from disk.
func readScenario(path string) (*domain.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return compiler.NewParser().Parse(data)
}
