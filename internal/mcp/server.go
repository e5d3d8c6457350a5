// ABOUTME: MCP server setup for the BMI engine and measurement history.
// ABOUTME: Wraps the MCP server with a storage Repository and a logger.
package mcp

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/harperreed/bmi/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	logger    *log.Logger
}

// NewServer creates a new MCP server with the given storage. A nil logger
// discards output.
func NewServer(repo storage.Repository, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "bmi",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		logger:    logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Debug("serving MCP over stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
