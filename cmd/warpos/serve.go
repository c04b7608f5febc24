package main

import (
	"fmt"
	"log"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/jcmrs/warpos/internal/config"
	"github.com/jcmrs/warpos/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long:  `Serve the WARPOS tools over the Model Context Protocol on stdin/stdout, for use from an assistant client.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Stdout belongs to the protocol; everything else goes to stderr.
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if homeDir != "" {
		cfg.Home = homeDir
	}

	s, cleanup, err := server.New(cfg)
	if err != nil {
		cleanup()
		return fmt.Errorf("initialize server: %w", err)
	}
	defer cleanup()

	log.Printf("warpos %s serving on stdio (home: %s, applier: %s)", server.Version, cfg.Home, cfg.Applier)
	return mcpserver.ServeStdio(s)
}
