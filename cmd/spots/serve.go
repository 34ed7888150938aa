package main

import (
	"log"

	"github.com/ironsheep/white-spot-mcp/internal/analysis"
	"github.com/ironsheep/white-spot-mcp/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

func (a *app) serve() error {
	debug := a.cfg.Debug()
	if debug {
		log.Printf("White Spot MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Defaults: %+v", a.cfg.Defaults)
	}

	srv := server.New(analysis.New(nil, a.cfg.Defaults), server.Options{
		Version: Version,
		Debug:   debug,
	})
	if err := srv.Run(); err != nil {
		log.Printf("Server error: %v", err)
		return err
	}
	return nil
}
