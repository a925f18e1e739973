package main

import (
	"fmt"
	"os"

	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/pkg/display"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "abacus",
	Short: "Abacus is a keypad calculator for the terminal, HTTP and MCP clients",
	Long: `Abacus is a basic arithmetic calculator driven by key presses.

It runs interactively in a terminal, reads key sequences from stdin in
headless mode, hosts calculator sessions over HTTP, or exposes itself as an
MCP tool server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file (default ./"+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("ascii", false, "Use ASCII operator symbols (* / mod)")
}

// loadConfig reads the configuration file and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("ascii") {
		cfg.ASCII, _ = cmd.Flags().GetBool("ascii")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func glyphsFor(cfg *config.Config) display.Glyphs {
	if cfg.ASCII {
		return display.ASCIIGlyphs
	}
	return display.DefaultGlyphs
}
