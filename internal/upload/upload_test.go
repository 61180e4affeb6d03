package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var png = File{Name: "Photo.PNG", ContentType: "image/png", Data: []byte("\x89PNG fake")}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		f       File
		wantErr error
	}{
		{"image", png, nil},
		{"type from extension", File{Name: "a.jpg", Data: []byte{1}}, nil},
		{"empty", File{Name: "a.png", ContentType: "image/png"}, ErrEmptyFile},
		{"not image", File{Name: "a.txt", ContentType: "text/plain", Data: []byte{1}}, ErrNotImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validate(tt.f)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	a := ObjectKey("img/", png)
	b := ObjectKey("img/", png)
	if a == b {
		t.Error("keys must be unique")
	}
	if !strings.HasPrefix(a, "img/") || !strings.HasSuffix(a, ".png") {
		t.Errorf("key = %q", a)
	}
	if k := ObjectKey("", File{ContentType: "image/png"}); !strings.HasSuffix(k, ".png") {
		t.Errorf("extension from content type missing: %q", k)
	}
}

func TestDirUploader(t *testing.T) {
	dir := t.TempDir()
	u, err := NewDirUploader(filepath.Join(dir, "up"), "http://localhost:8080/uploads/")
	if err != nil {
		t.Fatalf("NewDirUploader: %v", err)
	}

	url, err := u.Upload(context.Background(), png)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/uploads/") {
		t.Fatalf("url = %q", url)
	}

	name := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, "up", name))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != string(png.Data) {
		t.Error("stored bytes differ")
	}
}

func TestDirUploaderCanceled(t *testing.T) {
	u, _ := NewDirUploader(t.TempDir(), "/uploads")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := u.Upload(ctx, png); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3UploaderPutsObject(t *testing.T) {
	fake := &fakeS3{}
	u := &S3Uploader{
		cfg:    S3Config{Bucket: "pages", Region: "auto", PublicDomain: "https://cdn.example.com/", Prefix: "edits"},
		client: fake,
	}

	url, err := u.Upload(context.Background(), png)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	key := *fake.in.Key
	if *fake.in.Bucket != "pages" || !strings.HasPrefix(key, "edits/") {
		t.Errorf("bucket/key = %s/%s", *fake.in.Bucket, key)
	}
	if *fake.in.ContentType != "image/png" {
		t.Errorf("content type = %s", *fake.in.ContentType)
	}
	if string(fake.body) != string(png.Data) {
		t.Error("body differs")
	}
	if want := "https://cdn.example.com/" + key; url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
}

func TestS3UploaderError(t *testing.T) {
	boom := errors.New("boom")
	u := &S3Uploader{cfg: S3Config{Bucket: "b"}, client: &fakeS3{err: boom}}
	if _, err := u.Upload(context.Background(), png); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestS3PublicURLFallback(t *testing.T) {
	u := &S3Uploader{cfg: S3Config{Bucket: "b", Region: "us-east-1"}}
	if got := u.publicURL("k.png"); got != "https://b.s3.us-east-1.amazonaws.com/k.png" {
		t.Errorf("publicURL = %q", got)
	}
}

func TestNewS3UploaderRequiresBucket(t *testing.T) {
	if _, err := NewS3Uploader(context.Background(), S3Config{}); !errors.Is(err, ErrMissingBucket) {
		t.Errorf("err = %v, want ErrMissingBucket", err)
	}
}
