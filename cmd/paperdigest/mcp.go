package main

import (
	"github.com/dgallion1/paperdigest/internal/mcpserver"
	"github.com/spf13/cobra"
)

func mcpCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the summarizer as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, log, err := g.service(cmd)
			if err != nil {
				return err
			}
			return mcpserver.Run(cmd.Context(), svc, log)
		},
	}
}
