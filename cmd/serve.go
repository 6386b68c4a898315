package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/lukman83/wbops/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting wbops MCP server on stdio...")

	if err := mcpserver.Serve(r); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
