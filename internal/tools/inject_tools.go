package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/pagedit/internal/proxy"
)

// InjectInput defines input for the inject_page tool.
type InjectInput struct {
	Path   string `json:"path" jsonschema:"HTML file to make editable"`
	Output string `json:"output,omitempty" jsonschema:"Output file (defaults to <name>-editable.<ext>)"`
	Server string `json:"server,omitempty" jsonschema:"WebSocket URL of a running pagedit server"`
}

// InjectOutput defines output for inject_page.
type InjectOutput struct {
	Output string `json:"output"`
	Server string `json:"server"`
}

// RegisterInjectTool adds the inject_page tool. defaultServer is the socket
// URL used when the call names none.
func RegisterInjectTool(server *mcp.Server, defaultServer string) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "inject_page",
		Description: `Write a copy of an HTML file with the pagedit editor injected.
The copy connects to a running "pagedit serve" or "pagedit proxy" server.
Example: inject_page {path: "site/index.html"} → {output: "site/index-editable.html"}`,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input InjectInput) (*mcp.CallToolResult, InjectOutput, error) {
		if input.Path == "" {
			return errorResult("path required"), InjectOutput{}, nil
		}
		ws := input.Server
		if ws == "" {
			ws = defaultServer
		}

		out, err := proxy.InjectFile(filepath.Clean(input.Path), input.Output, ws)
		if err != nil {
			return errorResult(fmt.Sprintf("failed to inject: %v", err)), InjectOutput{}, nil
		}
		return nil, InjectOutput{Output: out, Server: ws}, nil
	})
}
