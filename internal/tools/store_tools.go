package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/pagedit/internal/store"
)

// SavedPagesInput represents input for the saved_pages tool.
type SavedPagesInput struct {
	Action string `json:"action" jsonschema:"Action: list, get, delete"`
	URL    string `json:"url,omitempty" jsonschema:"Page URL (required for get and delete)"`
	Folder string `json:"folder,omitempty" jsonschema:"Folder key filter for list, e.g. /docs/"`
}

// SavedPagesOutput represents output from the saved_pages tool.
type SavedPagesOutput struct {
	Success bool            `json:"success"`
	Pages   []PageSummary   `json:"pages,omitempty"`
	Page    *SavedPageEntry `json:"page,omitempty"`
	Count   int             `json:"count,omitempty"`
	Message string          `json:"message,omitempty"`
}

// PageSummary is one entry of a listing.
type PageSummary struct {
	URL       string `json:"url"`
	Folder    string `json:"folder"`
	Size      int    `json:"size"`
	Saves     int    `json:"saves"`
	UpdatedAt string `json:"updated_at"`
}

// SavedPageEntry is a saved page with its markup.
type SavedPageEntry struct {
	URL       string `json:"url"`
	HTML      string `json:"html"`
	Saves     int    `json:"saves"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// RegisterSavedPagesTool registers the saved_pages MCP tool with the server.
func RegisterSavedPagesTool(server *mcp.Server, pages *store.PageStore) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "saved_pages",
		Description: `Read pages saved from the in-browser editor.

Every save keeps the latest cleaned body markup of a page, keyed by its URL
without query or fragment.

Actions:
  list: List saved pages, newest first (optional folder filter)
  get: Return the saved markup of a page
  delete: Forget a saved page

Examples:
  saved_pages {action: "list"}
  saved_pages {action: "list", folder: "/docs/"}
  saved_pages {action: "get", url: "http://localhost:3000/about"}
  saved_pages {action: "delete", url: "http://localhost:3000/about"}`,
	}, makeSavedPagesHandler(pages))
}

func makeSavedPagesHandler(pages *store.PageStore) func(context.Context, *mcp.CallToolRequest, SavedPagesInput) (*mcp.CallToolResult, SavedPagesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SavedPagesInput) (*mcp.CallToolResult, SavedPagesOutput, error) {
		switch input.Action {
		case "list":
			return handlePagesList(pages, input)
		case "get":
			return handlePagesGet(pages, input)
		case "delete":
			return handlePagesDelete(pages, input)
		default:
			return errorResult(fmt.Sprintf("unknown action: %s (use: list, get, delete)", input.Action)), SavedPagesOutput{}, nil
		}
	}
}

func handlePagesList(pages *store.PageStore, input SavedPagesInput) (*mcp.CallToolResult, SavedPagesOutput, error) {
	list, err := pages.List(input.Folder)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to list saved pages: %v", err)), SavedPagesOutput{}, nil
	}

	out := SavedPagesOutput{Success: true, Count: len(list), Pages: make([]PageSummary, 0, len(list))}
	for _, s := range list {
		out.Pages = append(out.Pages, PageSummary{
			URL:       s.URL,
			Folder:    s.Folder,
			Size:      s.Size,
			Saves:     s.Saves,
			UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
		})
	}
	if len(list) == 0 {
		out.Message = "no saved pages"
	}
	return nil, out, nil
}

func handlePagesGet(pages *store.PageStore, input SavedPagesInput) (*mcp.CallToolResult, SavedPagesOutput, error) {
	if input.URL == "" {
		return errorResult("url required"), SavedPagesOutput{}, nil
	}

	page, err := pages.Get(input.URL)
	if errors.Is(err, store.ErrNotFound) {
		return nil, SavedPagesOutput{Success: false, Message: fmt.Sprintf("no save for %s", input.URL)}, nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("failed to read saved page: %v", err)), SavedPagesOutput{}, nil
	}

	return nil, SavedPagesOutput{
		Success: true,
		Page: &SavedPageEntry{
			URL:       page.URL,
			HTML:      page.HTML,
			Saves:     page.Saves,
			CreatedAt: page.CreatedAt.Format(time.RFC3339),
			UpdatedAt: page.UpdatedAt.Format(time.RFC3339),
		},
	}, nil
}

func handlePagesDelete(pages *store.PageStore, input SavedPagesInput) (*mcp.CallToolResult, SavedPagesOutput, error) {
	if input.URL == "" {
		return errorResult("url required"), SavedPagesOutput{}, nil
	}

	err := pages.Delete(input.URL)
	if errors.Is(err, store.ErrNotFound) {
		return nil, SavedPagesOutput{Success: false, Message: fmt.Sprintf("no save for %s", input.URL)}, nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("failed to delete saved page: %v", err)), SavedPagesOutput{}, nil
	}
	return nil, SavedPagesOutput{Success: true, Message: fmt.Sprintf("deleted %s", input.URL)}, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
