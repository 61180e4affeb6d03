package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/standardbeagle/pagedit/internal/config"
	"github.com/standardbeagle/pagedit/internal/debug"
	"github.com/standardbeagle/pagedit/internal/proxy"
	"github.com/standardbeagle/pagedit/internal/store"
	"github.com/standardbeagle/pagedit/internal/tools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server on stdio",
	Long: `Run a Model Context Protocol server on stdio exposing the saved pages
and page injection to AI agents.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pages := store.New(config.Resolve(root, cfg.Store.Dir))
	ws := "ws://" + net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)) + proxy.WebSocketPath
	server := tools.NewServer(Version, pages, ws)

	// stdout carries the protocol.
	debug.SetOutput(os.Stderr)
	debug.Info("mcp", "pagedit %s serving %s", Version, pages.Dir())

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
