// Package mcpserver exposes the mesh dispatcher as an MCP tool server, the
// stdio-based integration surface agent hosts (Claude Code and friends)
// talk to instead of shelling out to the CLI for every action.
package mcpserver

import (
	"context"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pi-agent/pi-messenger/internal/mesh"
)

// Server wraps a Mesh with an MCP tool surface: one tool per dispatcher
// action family, sharing the single Mesh (and therefore the single joined
// session) for the lifetime of the stdio connection.
type Server struct {
	mesh    *mesh.Mesh
	version string
	server  *gomcp.Server
}

// Option configures the MCP server.
type Option func(*Server)

// WithVersion sets the server version string.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer builds an MCP server backed by a Mesh rooted at repoPath.
func NewServer(repoPath string, opts ...Option) (*Server, error) {
	m, err := mesh.New(repoPath)
	if err != nil {
		return nil, err
	}

	s := &Server{mesh: m, version: "dev"}
	for _, opt := range opts {
		opt(s)
	}

	s.server = gomcp.NewServer(&gomcp.Implementation{
		Name:    "pi-messenger",
		Version: s.version,
	}, nil)
	s.registerTools()
	return s, nil
}

// Run serves MCP requests on stdin/stdout until the client disconnects or
// ctx is canceled, then closes the underlying Mesh (stopping the flusher
// and inbox watcher, unregistering presence).
func (s *Server) Run(ctx context.Context) error {
	defer func() { _ = s.mesh.Close() }()
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

func result(r mesh.Result) ActionOutput {
	return ActionOutput{Text: r.Text, Details: r.Details}
}
