package editor

import (
	"context"
	"errors"

	"golang.org/x/net/html"

	"github.com/standardbeagle/pagedit/internal/debug"
	"github.com/standardbeagle/pagedit/internal/dom"
	"github.com/standardbeagle/pagedit/internal/upload"
)

var (
	// ErrNoUploader is recorded when an image is chosen but no upload
	// backend is configured.
	ErrNoUploader = errors.New("no upload backend configured")

	// ErrTargetDetached is recorded when the image was removed from the page
	// before its upload finished.
	ErrTargetDetached = errors.New("image no longer in document")
)

// ImageState is the progress of an image replacement.
type ImageState int

const (
	ImageWaiting ImageState = iota
	ImageUploading
	ImageDone
	ImageFailed
)

func (s ImageState) String() string {
	switch s {
	case ImageWaiting:
		return "waiting"
	case ImageUploading:
		return "uploading"
	case ImageDone:
		return "done"
	case ImageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PendingImage is the image picked for replacement. Only the latest pick is
// tracked; Token identifies it so completions of earlier picks are ignored.
type PendingImage struct {
	Target *html.Node
	Token  uint64
	State  ImageState
	URL    string
	Err    error
}

// UploadStatus is sent to the client whenever a PendingImage changes.
type UploadStatus struct {
	Target string
	State  ImageState
	URL    string
	Err    string
}

// Pending returns a copy of the current image replacement, if any.
func (e *Editor) Pending() (PendingImage, bool) {
	if e.pending == nil {
		return PendingImage{}, false
	}
	return *e.pending, true
}

func (e *Editor) pickImage(img *html.Node) {
	if e.cancelUpload != nil {
		e.cancelUpload()
		e.cancelUpload = nil
	}
	e.uploadSeq++
	e.pending = &PendingImage{Target: img, Token: e.uploadSeq, State: ImageWaiting}
	e.enqueue(func(c Client) error { return c.OpenFilePicker() })
	e.tracef("pick image %s, token %d", describe(img), e.uploadSeq)
}

// HandleFileChosen uploads f as the replacement for the pending image. With
// a dispatcher attached the upload runs on its own goroutine and completes
// through an UploadDone event; otherwise it runs inline.
func (e *Editor) HandleFileChosen(f upload.File) {
	p := e.pending
	if p == nil || p.State != ImageWaiting {
		debug.Warn(component, "file %q chosen with no image pending", f.Name)
		return
	}
	if e.uploader == nil {
		e.fail(p, ErrNoUploader)
		return
	}

	p.State = ImageUploading
	e.enqueueStatus(p)

	ctx, cancel := context.WithCancel(e.ctx)
	e.cancelUpload = cancel
	token, uploader, post := p.Token, e.uploader, e.post

	if post == nil {
		url, err := uploader.Upload(ctx, f)
		cancel()
		e.FinishUpload(token, url, err)
		return
	}
	go func() {
		url, err := uploader.Upload(ctx, f)
		cancel()
		post(UploadDone{Token: token, URL: url, Err: err})
	}()
}

// FinishUpload applies an upload result. Results for anything but the
// latest pick are dropped.
func (e *Editor) FinishUpload(token uint64, url string, err error) {
	p := e.pending
	if p == nil || p.Token != token {
		e.tracef("dropping stale upload result, token %d", token)
		return
	}
	e.cancelUpload = nil

	if err != nil {
		e.fail(p, err)
		return
	}
	if !e.doc.Contains(p.Target) {
		e.fail(p, ErrTargetDetached)
		return
	}

	dom.SetAttr(p.Target, "src", url)
	p.State = ImageDone
	p.URL = url
	e.doc.MarkDirty()
	e.enqueueStatus(p)
	debug.Info(component, "image replaced with %s", url)
}

func (e *Editor) fail(p *PendingImage, err error) {
	p.State = ImageFailed
	p.Err = err
	debug.Error(component, "image upload failed: %v", err)
	e.enqueueStatus(p)
}

func (e *Editor) enqueueStatus(p *PendingImage) {
	st := UploadStatus{State: p.State, URL: p.URL}
	if p.Err != nil {
		st.Err = p.Err.Error()
	}
	target := p.Target
	e.enqueue(func(c Client) error {
		st.Target, _ = e.doc.Path(target)
		return c.UploadStatus(st)
	})
}
