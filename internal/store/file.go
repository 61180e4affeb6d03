package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func (s *PageStore) pagePath(normalized string) string {
	return filepath.Join(s.dir, HashScopeKey(normalized)+".json")
}

// loadPage reads a page file. A missing file yields nil and no error.
func loadPage(path string) (*SavedPage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read saved page: %w", err)
	}

	var p SavedPage
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse saved page %s: %w", filepath.Base(path), err)
	}
	return &p, nil
}

// writePage stores p through a temp file and a rename so readers never see
// a partial file.
func writePage(path string, p *SavedPage) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal saved page: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create saves directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
