// Package config loads pagedit's project configuration from .pagedit.kdl and
// its secrets from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	kdl "github.com/sblinch/kdl-go"

	"github.com/standardbeagle/pagedit/internal/overlay"
)

// FileName is the name of the pagedit configuration file.
const FileName = ".pagedit.kdl"

// Upload backends.
const (
	BackendDir = "dir"
	BackendS3  = "s3"
)

// Config represents the pagedit configuration.
type Config struct {
	Server  *ServerConfig  `kdl:"server"`
	Overlay *OverlayConfig `kdl:"overlay"`
	Upload  *UploadConfig  `kdl:"upload"`
	Store   *StoreConfig   `kdl:"store"`
}

// ServerConfig configures the HTTP server of serve and proxy.
type ServerConfig struct {
	Host string `kdl:"host"`
	Port int    `kdl:"port"`
	// AllowAllOrigins lets host frames on any origin talk to the server.
	AllowAllOrigins bool `kdl:"allow-all-origins"`
}

// OverlayConfig sets the look of the editor decorations.
type OverlayConfig struct {
	ContainerColor  string  `kdl:"container-color"`
	LeafColor       string  `kdl:"leaf-color"`
	SelectionBorder string  `kdl:"selection-border"`
	SelectionShadow string  `kdl:"selection-shadow"`
	LabelWidth      float64 `kdl:"label-width"`
	LabelHeight     float64 `kdl:"label-height"`
	LabelOffset     float64 `kdl:"label-offset"`
	ButtonsInset    float64 `kdl:"buttons-inset"`
}

// UploadConfig selects where replaced images go.
type UploadConfig struct {
	// Backend is "dir" or "s3".
	Backend string `kdl:"backend"`

	// Dir is the local upload directory of the dir backend.
	Dir string `kdl:"dir"`

	Bucket       string `kdl:"bucket"`
	Endpoint     string `kdl:"endpoint"`
	Region       string `kdl:"region"`
	PublicDomain string `kdl:"public-domain"`
	Prefix       string `kdl:"prefix"`
}

// StoreConfig places the saved-page store.
type StoreConfig struct {
	Dir string `kdl:"dir"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	o := overlay.DefaultConfig()
	return &Config{
		Server: &ServerConfig{
			Host: "127.0.0.1",
			Port: 7878,
		},
		Overlay: &OverlayConfig{
			ContainerColor:  o.ContainerColor,
			LeafColor:       o.LeafColor,
			SelectionBorder: o.SelectionBorder,
			SelectionShadow: o.SelectionShadow,
			LabelWidth:      o.LabelWidth,
			LabelHeight:     o.LabelHeight,
			LabelOffset:     o.LabelOffset,
			ButtonsInset:    o.ButtonsInset,
		},
		Upload: &UploadConfig{
			Backend: BackendDir,
			Dir:     ".pagedit/uploads",
			Region:  "auto",
		},
		Store: &StoreConfig{
			Dir: ".pagedit/saves",
		},
	}
}

// Load loads configuration for the project at dir. It looks for .pagedit.kdl
// in the directory and its parents and falls back to the defaults.
func Load(dir string) (*Config, error) {
	path := FindConfigFile(dir)
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// FindConfigFile searches for .pagedit.kdl starting from dir and walking up.
func FindConfigFile(dir string) string {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(absDir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(absDir)
		if parent == absDir {
			return ""
		}
		absDir = parent
	}
}

// LoadFile loads configuration from a specific file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(string(data))
}

// Parse parses KDL configuration over the defaults and validates it.
func Parse(data string) (*Config, error) {
	cfg := DefaultConfig()
	if err := kdl.Unmarshal([]byte(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fill restores defaults for sections a file emptied out.
func (c *Config) fill() {
	def := DefaultConfig()
	if c.Server == nil {
		c.Server = def.Server
	}
	if c.Overlay == nil {
		c.Overlay = def.Overlay
	}
	if c.Upload == nil {
		c.Upload = def.Upload
	}
	if c.Upload.Backend == "" {
		c.Upload.Backend = BackendDir
	}
	if c.Store == nil {
		c.Store = def.Store
	}
}

// Validate reports settings no component can run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	switch c.Upload.Backend {
	case BackendDir:
		if c.Upload.Dir == "" {
			return fmt.Errorf("upload backend %q needs a dir", BackendDir)
		}
	case BackendS3:
		if c.Upload.Bucket == "" {
			return fmt.Errorf("upload backend %q needs a bucket", BackendS3)
		}
	default:
		return fmt.Errorf("unknown upload backend %q", c.Upload.Backend)
	}
	if c.Store.Dir == "" {
		return fmt.Errorf("store dir is required")
	}
	return nil
}

// OverlayConfig converts the overlay section for the overlay manager. Unset
// values keep the stock look.
func (c *Config) OverlayConfig() overlay.Config {
	out := overlay.DefaultConfig()
	o := c.Overlay
	if o == nil {
		return out
	}
	setString(&out.ContainerColor, o.ContainerColor)
	setString(&out.LeafColor, o.LeafColor)
	setString(&out.SelectionBorder, o.SelectionBorder)
	setString(&out.SelectionShadow, o.SelectionShadow)
	setFloat(&out.LabelWidth, o.LabelWidth)
	setFloat(&out.LabelHeight, o.LabelHeight)
	setFloat(&out.LabelOffset, o.LabelOffset)
	setFloat(&out.ButtonsInset, o.ButtonsInset)
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

// Resolve makes a configured path absolute against the project root.
func Resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// WriteDefault writes a default configuration file with documentation.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return os.WriteFile(path, []byte(defaultKDL), 0644)
}

const defaultKDL = `// pagedit configuration

// Server used by "pagedit serve" and "pagedit proxy"
server {
    host "127.0.0.1"
    port 7878
    // allow-all-origins true   // accept host frames from any origin
}

// Editor decorations
overlay {
    container-color "#4285f4"   // inspect highlight over divs
    leaf-color "#ea4335"        // inspect highlight over everything else
    selection-border "2px solid #34a853"
    selection-shadow "0 0 10px rgba(52, 168, 83, 0.5)"
    label-width 180
    label-height 24
}

// Where replaced images are stored
upload {
    backend "dir"               // "dir" or "s3"
    dir ".pagedit/uploads"

    // S3 or R2; keys come from PAGEDIT_S3_ACCESS_KEY_ID and
    // PAGEDIT_S3_SECRET_ACCESS_KEY (a .env file is read too)
    // backend "s3"
    // bucket "site-images"
    // endpoint "https://<account>.r2.cloudflarestorage.com"
    // public-domain "images.example.com"
    // prefix "pages/"
}

// Saved pages
store {
    dir ".pagedit/saves"
}
`
