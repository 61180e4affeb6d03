// Package upload stores replacement images picked in the editor and returns
// the URL the page should load them from.
package upload

import (
	"context"
	"errors"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrEmptyFile is returned for uploads with no content.
	ErrEmptyFile = errors.New("upload: empty file")

	// ErrNotImage is returned when the content type is not an image.
	ErrNotImage = errors.New("upload: not an image")
)

// File is one picked file.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Uploader stores a file and yields its public URL.
type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
}

// validate checks f and returns its content type.
func validate(f File) (string, error) {
	if len(f.Data) == 0 {
		return "", ErrEmptyFile
	}
	ct := f.ContentType
	if ct == "" {
		ct = mime.TypeByExtension(path.Ext(f.Name))
	}
	if !strings.HasPrefix(ct, "image/") {
		return "", ErrNotImage
	}
	return ct, nil
}

// ObjectKey returns a fresh, collision-free key for f, keeping its extension.
func ObjectKey(prefix string, f File) string {
	ext := strings.ToLower(path.Ext(f.Name))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(f.ContentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	key := uuid.NewString() + ext
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}
