package store

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// NormalizeURL drops the query and fragment and trailing slashes, keeping a
// single "/" for a bare host, so every address of a page maps to one key.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return cleanURLString(rawURL)
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	normalized := u.String()
	if u.Path == "" || u.Path == "/" {
		if !strings.HasSuffix(normalized, "/") {
			normalized += "/"
		}
		return normalized
	}
	return strings.TrimRight(normalized, "/")
}

func cleanURLString(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i != -1 {
		rawURL = rawURL[:i]
	}
	rawURL = strings.TrimRight(rawURL, "/")
	if rawURL == "" {
		return "/"
	}
	return rawURL
}

// GetFolderKey returns the directory part of a page URL's path:
//   - "/products/123" -> "/products/"
//   - "/products/" -> "/products/"
//   - "/products" -> "/"
//   - "https://example.com/api/users/42" -> "/api/users/"
func GetFolderKey(rawURL string) string {
	trailing := strings.HasSuffix(rawURL, "/")

	p := NormalizeURL(rawURL)
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	} else if i := strings.Index(p, "://"); i != -1 {
		rest := p[i+3:]
		if j := strings.Index(rest, "/"); j != -1 {
			p = rest[j:]
		} else {
			p = "/"
		}
	}

	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return "/"
	}
	if trailing {
		return "/" + trimmed + "/"
	}
	segments := strings.Split(trimmed, "/")
	if len(segments) == 1 {
		return "/"
	}
	return "/" + strings.Join(segments[:len(segments)-1], "/") + "/"
}

// HashScopeKey maps a key to a short filesystem-safe name: the first 16 hex
// digits of its SHA-256, or "global" for the empty key.
func HashScopeKey(key string) string {
	if key == "" {
		return "global"
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}
