package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/standardbeagle/pagedit/internal/debug"
)

var (
	// ErrNotFound is returned when no save exists for a page.
	ErrNotFound = fmt.Errorf("saved page not found")

	// ErrEmptyURL is returned when a page URL is missing.
	ErrEmptyURL = fmt.Errorf("page url is required")
)

// PageStore keeps saved pages under one directory.
type PageStore struct {
	dir string
	mu  sync.RWMutex
}

// New returns a PageStore rooted at dir. The directory is created on the
// first save.
func New(dir string) *PageStore {
	return &PageStore{dir: dir}
}

// Dir returns the directory the store writes to.
func (s *PageStore) Dir() string { return s.dir }

// Save records markup as the latest state of the page at baseURI. It
// satisfies the editor's save sink.
func (s *PageStore) Save(ctx context.Context, baseURI, markup string) error {
	if strings.TrimSpace(baseURI) == "" {
		return ErrEmptyURL
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	key := NormalizeURL(baseURI)

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.pagePath(key)
	page, err := loadPage(path)
	if err != nil {
		return err
	}

	now := time.Now()
	if page == nil {
		page = &SavedPage{Version: 1, URL: key, CreatedAt: now}
	}
	page.HTML = markup
	page.Saves++
	page.UpdatedAt = now

	if err := writePage(path, page); err != nil {
		return err
	}
	debug.Log("store", "saved %s (%d bytes, save #%d)", key, len(markup), page.Saves)
	return nil
}

// Get returns the saved state of the page at rawURL.
func (s *PageStore) Get(rawURL string) (*SavedPage, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrEmptyURL
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	page, err := loadPage(s.pagePath(NormalizeURL(rawURL)))
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrNotFound
	}
	return page, nil
}

// Delete forgets the saved state of the page at rawURL.
func (s *PageStore) Delete(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return ErrEmptyURL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.pagePath(NormalizeURL(rawURL)))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove saved page: %w", err)
	}
	return nil
}

// List summarizes every saved page, most recently updated first. A non-empty
// folder keeps only pages whose folder key equals it.
func (s *PageStore) List(folder string) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, fmt.Errorf("failed to read saves directory: %w", err)
	}

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		page, err := loadPage(filepath.Join(s.dir, e.Name()))
		if err != nil {
			debug.Warn("store", "skipping %s: %v", e.Name(), err)
			continue
		}
		if page == nil {
			continue
		}
		sum := page.Summary()
		if folder != "" && sum.Folder != folder {
			continue
		}
		out = append(out, sum)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}
