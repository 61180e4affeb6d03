// Package store keeps the latest saved markup of each edited page on disk,
// one JSON file per normalized page URL.
package store

import (
	"time"
)

// SavesDir is the default directory, relative to the project, for saved
// pages.
const SavesDir = ".pagedit/saves"

// SavedPage is the last saved state of one page.
type SavedPage struct {
	Version   int       `json:"version"`
	URL       string    `json:"url"`
	HTML      string    `json:"html"`
	Saves     int       `json:"saves"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary describes a saved page without its markup.
type Summary struct {
	URL       string    `json:"url"`
	Folder    string    `json:"folder"`
	Size      int       `json:"size"`
	Saves     int       `json:"saves"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary returns the listing entry for p.
func (p *SavedPage) Summary() Summary {
	return Summary{
		URL:       p.URL,
		Folder:    GetFolderKey(p.URL),
		Size:      len(p.HTML),
		Saves:     p.Saves,
		UpdatedAt: p.UpdatedAt,
	}
}
