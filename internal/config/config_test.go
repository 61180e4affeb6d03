package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/standardbeagle/pagedit/internal/upload"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Port != 7878 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Upload.Backend != BackendDir {
		t.Errorf("backend = %q", cfg.Upload.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestParse(t *testing.T) {
	data := `
server {
    port 9000
}
overlay {
    container-color "#000000"
    label-width 200
}
upload {
    backend "s3"
    bucket "images"
    public-domain "img.example.com"
}
store {
    dir "saved"
}
`
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Upload.Backend != BackendS3 || cfg.Upload.Bucket != "images" || cfg.Upload.PublicDomain != "img.example.com" {
		t.Errorf("upload = %+v", cfg.Upload)
	}
	if cfg.Store.Dir != "saved" {
		t.Errorf("store dir = %q", cfg.Store.Dir)
	}

	o := cfg.OverlayConfig()
	if o.ContainerColor != "#000000" || o.LabelWidth != 200 {
		t.Errorf("overlay = %+v", o)
	}
	if o.LeafColor != "#ea4335" || o.LabelHeight != 24 {
		t.Errorf("unset overlay values should keep the stock look: %+v", o)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse("")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Store.Dir != DefaultConfig().Store.Dir {
		t.Errorf("store dir = %q", cfg.Store.Dir)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad syntax", `server {`, "failed to parse"},
		{"unknown backend", `upload { backend "ftp" }`, "unknown upload backend"},
		{"s3 without bucket", `upload { backend "s3" }`, "needs a bucket"},
		{"port range", `server { port 70000 }`, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(nested); got != "" {
		t.Errorf("found unexpected config %q", got)
	}

	path := filepath.Join(root, FileName)
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if got := FindConfigFile(nested); got != path {
		t.Errorf("FindConfigFile = %q, want %q", got, path)
	}
	if err := WriteDefault(path); err == nil {
		t.Error("WriteDefault should refuse to overwrite")
	}

	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("Load of default file: %v", err)
	}
	if cfg.Server.Port != 7878 || cfg.Upload.Backend != BackendDir {
		t.Errorf("default file parsed as %+v %+v", cfg.Server, cfg.Upload)
	}
}

func TestLoadSecrets(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvAccessKeyID+"=from-file\n"+EnvSecretAccessKey+"=secret\n"), 0644)

	t.Setenv(EnvAccessKeyID, "from-env")
	t.Setenv(EnvSecretAccessKey, "")
	os.Unsetenv(EnvSecretAccessKey)

	s := LoadSecrets(dir)
	if s.AccessKeyID != "from-env" {
		t.Errorf("AccessKeyID = %q, environment should win", s.AccessKeyID)
	}
	if s.SecretAccessKey != "secret" {
		t.Errorf("SecretAccessKey = %q", s.SecretAccessKey)
	}
}

func TestNewUploaderDir(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	u, err := cfg.NewUploader(context.Background(), root, "/uploads", Secrets{})
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	d, ok := u.(*upload.DirUploader)
	if !ok {
		t.Fatalf("uploader = %T", u)
	}
	if d.Dir != filepath.Join(root, ".pagedit/uploads") || d.BaseURL != "/uploads" {
		t.Errorf("dir uploader = %+v", d)
	}
	if cfg.UploadDir(root) != d.Dir {
		t.Errorf("UploadDir = %q", cfg.UploadDir(root))
	}

	cfg.Upload.Backend = BackendS3
	if cfg.UploadDir(root) != "" {
		t.Error("s3 backend should not serve a local dir")
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("/p", "x/y"); got != filepath.Join("/p", "x/y") {
		t.Errorf("Resolve relative = %q", got)
	}
	if got := Resolve("/p", "/abs"); got != "/abs" {
		t.Errorf("Resolve absolute = %q", got)
	}
}
