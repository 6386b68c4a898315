package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/lukman83/wbops/internal/jobs"
)

const (
	serverName    = "wbops"
	serverVersion = "1.0.0"
)

func newServer(runner *jobs.Runner) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	registerTools(s, runner)
	return s
}

// Serve starts the MCP stdio server with all tools registered.
func Serve(runner *jobs.Runner) error {
	return server.ServeStdio(newServer(runner))
}
