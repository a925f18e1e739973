package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/cli"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the calculator as MCP tools (press_keys, format_result) so AI agents
can drive it.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		km, err := cfg.Keymap()
		if err != nil {
			return err
		}

		level, _ := logging.ParseLevel(cfg.LogLevel)
		// Stdout carries JSON-RPC; logs go to stderr.
		logger := logging.New(level)
		log.SetOutput(os.Stderr)

		engine := abacus.NewEngine(
			abacus.WithLogger(logger),
			abacus.WithLifecycleHooks(cli.CreateHooks(logger, nil)),
		)
		srv := mcp.NewServer(engine, mcp.WithKeymap(km), mcp.WithLogger(logger))

		transport, _ := cmd.Flags().GetString("transport")
		switch transport {
		case "stdio":
			logger.Info("starting abacus MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			addr, _ := cmd.Flags().GetString("addr")
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()
			return srv.ServeSSE(sigCtx, addr)
		default:
			return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().String("addr", ":8081", "Listen address for the sse transport")
}
