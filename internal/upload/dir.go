package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/pagedit/internal/debug"
)

// DirUploader writes uploads into a local directory that the pagedit server
// exposes under BaseURL.
type DirUploader struct {
	Dir     string
	BaseURL string
}

// NewDirUploader creates dir if needed.
func NewDirUploader(dir, baseURL string) (*DirUploader, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DirUploader{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload implements Uploader.
func (u *DirUploader) Upload(ctx context.Context, f File) (string, error) {
	if _, err := validate(f); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := ObjectKey("", f)
	dst := filepath.Join(u.Dir, key)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, f.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to rename upload: %w", err)
	}

	debug.Log("upload", "stored %s (%d bytes) as %s", f.Name, len(f.Data), key)
	return u.BaseURL + "/" + key, nil
}
