package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/standardbeagle/pagedit/internal/debug"
	"github.com/standardbeagle/pagedit/internal/upload"
)

// Environment variables holding upload credentials.
const (
	EnvAccessKeyID     = "PAGEDIT_S3_ACCESS_KEY_ID"
	EnvSecretAccessKey = "PAGEDIT_S3_SECRET_ACCESS_KEY"
)

// Secrets are credentials kept out of the config file.
type Secrets struct {
	AccessKeyID     string
	SecretAccessKey string
}

// LoadSecrets reads a .env file next to the config file, or in dir when
// there is none, then takes the credentials from the environment. Variables
// already set win over the file.
func LoadSecrets(dir string) Secrets {
	envDir := dir
	if path := FindConfigFile(dir); path != "" {
		envDir = filepath.Dir(path)
	}
	envFile := filepath.Join(envDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			debug.Warn("config", "failed to load %s: %v", envFile, err)
		}
	}
	return Secrets{
		AccessKeyID:     strings.TrimSpace(os.Getenv(EnvAccessKeyID)),
		SecretAccessKey: strings.TrimSpace(os.Getenv(EnvSecretAccessKey)),
	}
}

// NewUploader builds the configured upload backend. root resolves a relative
// upload dir, and publicPath is the URL prefix the dir backend's files are
// served under.
func (c *Config) NewUploader(ctx context.Context, root, publicPath string, secrets Secrets) (upload.Uploader, error) {
	u := c.Upload
	switch u.Backend {
	case BackendS3:
		return upload.NewS3Uploader(ctx, upload.S3Config{
			Bucket:          u.Bucket,
			Region:          u.Region,
			Endpoint:        u.Endpoint,
			AccessKeyID:     secrets.AccessKeyID,
			SecretAccessKey: secrets.SecretAccessKey,
			PublicDomain:    u.PublicDomain,
			Prefix:          u.Prefix,
		})
	case BackendDir, "":
		return upload.NewDirUploader(Resolve(root, u.Dir), publicPath)
	}
	return nil, fmt.Errorf("unknown upload backend %q", u.Backend)
}

// UploadDir returns the local directory to serve uploads from, or "" when
// uploads go elsewhere.
func (c *Config) UploadDir(root string) string {
	if c.Upload.Backend != BackendDir {
		return ""
	}
	return Resolve(root, c.Upload.Dir)
}
