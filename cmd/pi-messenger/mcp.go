package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pi-agent/pi-messenger/internal/mcpserver"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server integration",
	}
	cmd.AddCommand(mcpServeCmd())
	return cmd
}

func mcpServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP stdio server for tool-based coordination",
		Long: `Starts an MCP server on stdin/stdout exposing the mesh's actions as
tools (pi_join, pi_send, pi_plan, ...) instead of requiring shell-outs to
this CLI for every action.

Configure in an MCP-aware host's settings:
  {
    "mcpServers": {
      "pi-messenger": {
        "type": "stdio",
        "command": "pi-messenger",
        "args": ["mcp", "serve"]
      }
    }
  }`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCPServe()
		},
	}
}

func runMCPServe() error {
	repoPath, err := filepath.Abs(flagRepo)
	if err != nil {
		return fmt.Errorf("resolve repo path: %w", err)
	}
	server, err := mcpserver.NewServer(repoPath, mcpserver.WithVersion(Version))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return server.Run(ctx)
}
