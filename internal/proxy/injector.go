package proxy

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WebSocketPath is where the page script connects.
const WebSocketPath = "/__pagedit_ws"

//go:embed client.js
var clientJS string

// ClientScript returns the script tags that load the editor client and point
// it at wsPath.
func ClientScript(wsPath string) string {
	if wsPath == "" {
		wsPath = WebSocketPath
	}
	quoted, _ := json.Marshal(wsPath)

	var sb strings.Builder
	sb.Grow(len(clientJS) + 128)
	sb.WriteString(`<script id="_pagedit_config">window.__PAGEDIT_WS__ = `)
	sb.Write(quoted)
	sb.WriteString(";</script>\n<script>\n")
	sb.WriteString(clientJS)
	sb.WriteString("</script>\n")
	return sb.String()
}

// Inject places the client script into an HTML document. It prefers the end
// of <head>, then the start of <head>, <body> or <html>, and prepends as a
// last resort.
func Inject(body []byte, wsPath string) []byte {
	script := []byte(ClientScript(wsPath))
	lower := bytes.ToLower(body)

	if idx := bytes.Index(lower, []byte("</head>")); idx != -1 {
		return insertAt(body, idx, script)
	}
	if idx := bytes.Index(lower, []byte("<head>")); idx != -1 {
		return insertAt(body, idx+len("<head>"), script)
	}
	for _, open := range []string{"<body", "<html"} {
		if at := afterTag(lower, open); at != -1 {
			return insertAt(body, at, script)
		}
	}
	return insertAt(body, 0, script)
}

// afterTag returns the offset just past the first tag opened by open, or -1.
func afterTag(lower []byte, open string) int {
	idx := bytes.Index(lower, []byte(open))
	if idx == -1 {
		return -1
	}
	end := bytes.IndexByte(lower[idx:], '>')
	if end == -1 {
		return -1
	}
	return idx + end + 1
}

func insertAt(body []byte, at int, script []byte) []byte {
	result := make([]byte, 0, len(body)+len(script))
	result = append(result, body[:at]...)
	result = append(result, script...)
	return append(result, body[at:]...)
}

// EditableName returns the default output path of InjectFile:
// "page.html" becomes "page-editable.html".
func EditableName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-editable" + ext
}

// InjectFile writes src with the client injected to dst, or to
// EditableName(src) when dst is empty, and returns the path written.
// wsURL should be absolute when the output is opened from disk.
func InjectFile(src, dst, wsURL string) (string, error) {
	page, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", src, err)
	}
	if dst == "" {
		dst = EditableName(src)
	}
	if err := os.WriteFile(dst, Inject(page, wsURL), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return dst, nil
}

// ShouldInject reports whether a response of contentType is an HTML page.
func ShouldInject(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}
