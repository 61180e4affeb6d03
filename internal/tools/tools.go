// Package tools exposes pagedit to MCP clients.
package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/pagedit/internal/store"
)

// NewServer returns an MCP server with every pagedit tool registered.
func NewServer(version string, pages *store.PageStore, defaultSocket string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "pagedit", Version: version},
		&mcp.ServerOptions{
			Instructions: `Tools for pagedit, an in-browser page editor.

Available tools:
- saved_pages: List, read and delete pages saved from the editor
- inject_page: Make a local HTML file editable`,
		},
	)
	RegisterSavedPagesTool(server, pages)
	RegisterInjectTool(server, defaultSocket)
	return server
}
