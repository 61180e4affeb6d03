// Package editor runs the interaction-mode state machine over one document.
//
// An Editor is the context object of a single editing session: it owns the
// current mode and the per-mode state, drives the overlay decorations and
// performs structural and text edits. Every transition between two
// non-Normal modes passes through Normal, so the teardown of the old mode
// always completes before the setup of the new one begins.
//
// An Editor is not safe for concurrent use. A Dispatcher serializes all
// input onto one goroutine.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/standardbeagle/pagedit/internal/debug"
	"github.com/standardbeagle/pagedit/internal/dom"
	"github.com/standardbeagle/pagedit/internal/overlay"
	"github.com/standardbeagle/pagedit/internal/upload"
)

const component = "editor"

// Host is the parent frame.
type Host interface {
	// Ready asks the host to choose the initial mode.
	Ready() error
	// Save hands over the cleaned body markup and the page location.
	Save(html, baseURI string) error
}

// Client is the page-side script mirroring the document.
type Client interface {
	Render(html string) error
	Overlay(updates map[string]overlay.Update) error
	Focus(path string) error
	OpenFilePicker() error
	UploadStatus(status UploadStatus) error
}

// SaveSink persists saved markup in addition to handing it to the host.
type SaveSink interface {
	Save(ctx context.Context, baseURI, html string) error
}

// Config wires an Editor to its collaborators. Every field is optional.
type Config struct {
	Host     Host
	Client   Client
	Uploader upload.Uploader
	Sink     SaveSink
	Overlay  overlay.Config

	// Context bounds uploads started by the editor.
	Context context.Context
}

type textEditState struct {
	element     *html.Node
	onFocusLost func(*html.Node)
}

type divEditState struct {
	selected   *html.Node
	parent     *html.Node
	next       *html.Node
	snapshot   dom.StyleSnapshot
	duplicates []*html.Node
}

// Editor is one editing session over a document.
type Editor struct {
	doc      *dom.Document
	layout   dom.Layout
	overlays *overlay.Manager

	host     Host
	client   Client
	uploader upload.Uploader
	sink     SaveSink
	ctx      context.Context

	mode         Mode
	tracking     bool
	inTransition bool
	text         textEditState
	div          divEditState

	pending      *PendingImage
	uploadSeq    uint64
	cancelUpload context.CancelFunc
	post         func(Event) bool

	queue []func(Client) error
	trace func(string)
}

// New returns an Editor in Normal mode. The overlay decorations are created
// by Ready.
func New(doc *dom.Document, layout dom.Layout, cfg Config) *Editor {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Editor{
		doc:      doc,
		layout:   layout,
		overlays: overlay.NewManager(doc, layout, cfg.Overlay),
		host:     cfg.Host,
		client:   cfg.Client,
		uploader: cfg.Uploader,
		sink:     cfg.Sink,
		ctx:      ctx,
	}
}

// Mode returns the active mode.
func (e *Editor) Mode() Mode { return e.mode }

// Document returns the edited document.
func (e *Editor) Document() *dom.Document { return e.doc }

// Overlays returns the overlay manager.
func (e *Editor) Overlays() *overlay.Manager { return e.overlays }

// Tracking reports whether pointer moves are being followed.
func (e *Editor) Tracking() bool { return e.tracking }

// TextTarget returns the element being text-edited, or nil.
func (e *Editor) TextTarget() *html.Node { return e.text.element }

// Selected returns the element under structural edit, or nil.
func (e *Editor) Selected() *html.Node { return e.div.selected }

// Duplicates returns the clone stack of the structural-edit session, oldest
// first.
func (e *Editor) Duplicates() []*html.Node {
	return append([]*html.Node(nil), e.div.duplicates...)
}

func (e *Editor) tracef(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if e.trace != nil {
		e.trace(msg)
	}
	debug.Log(component, "%s", msg)
}

// Ready creates the decorations and tells the host the page is ready.
func (e *Editor) Ready() error {
	e.overlays.EnsureCreated()
	if e.host == nil {
		return nil
	}
	if err := e.host.Ready(); err != nil {
		return fmt.Errorf("failed to notify host: %w", err)
	}
	return nil
}

// SwitchMode applies a switch-mode value from the host. Unknown values are
// ignored.
func (e *Editor) SwitchMode(wire int) {
	m, ok := ModeFromWire(wire)
	if !ok {
		debug.Warn(component, "ignoring unknown mode value %d", wire)
		return
	}
	switch m {
	case Normal:
		e.EnterNormal()
	case Inspecting:
		e.EnterInspecting()
	}
}

// EnterNormal tears down the active mode and hides the save affordance. It
// is a no-op in Normal.
func (e *Editor) EnterNormal() {
	if e.mode == Normal {
		return
	}
	from := e.mode
	e.inTransition = true
	defer func() { e.inTransition = false }()

	e.tracef("teardown %s", from)
	switch from {
	case Inspecting:
		e.teardownInspecting()
	case TextEditing:
		e.teardownTextEditing()
	case DivEditing:
		e.teardownDivEditing()
	}
	e.overlays.Hide(overlay.Save)
	e.mode = Normal
	e.tracef("enter %s", Normal)
}

// EnterInspecting starts following the pointer. Re-entry is a no-op.
func (e *Editor) EnterInspecting() {
	if e.mode == Inspecting {
		return
	}
	e.EnterNormal()
	e.tracking = true
	e.overlays.Show(overlay.Save)
	e.mode = Inspecting
	e.tracef("enter %s", Inspecting)
}

// EnterTextEditing makes target editable and focuses it. It only acts from
// Inspecting, on an editable-text element that is not yet editable, carries
// text and holds no form controls.
func (e *Editor) EnterTextEditing(target *html.Node) bool {
	if e.mode != Inspecting || overlay.Classify(target) != overlay.CategoryEditableText {
		return false
	}
	if isEditable(target) {
		return false
	}
	if strings.TrimSpace(dom.Text(target)) == "" || dom.HasDescendant(target, dom.IsFormControl) {
		e.tracef("skip text edit of %s", describe(target))
		return false
	}

	e.EnterNormal()
	dom.SetAttr(target, "contenteditable", "true")
	e.text = textEditState{element: target, onFocusLost: e.focusLost}
	e.doc.MarkDirty()
	e.enqueue(func(c Client) error {
		path, ok := e.doc.Path(target)
		if !ok {
			return nil
		}
		return c.Focus(path)
	})
	e.mode = TextEditing
	e.tracef("enter %s on %s", TextEditing, describe(target))
	return true
}

// focusLost is the one-shot handler registered on entering TextEditing.
func (e *Editor) focusLost(target *html.Node) {
	if target == nil || target != e.text.element {
		e.tracef("stale focus-lost for %s", describe(target))
		return
	}
	dom.RemoveAttr(target, "contenteditable")
	e.doc.MarkDirty()
	if e.inTransition {
		return
	}
	e.EnterInspecting()
}

// HandleBlur is the page reporting that the text-edited element lost focus,
// with its edited inner markup when available.
func (e *Editor) HandleBlur(target *html.Node, markup *string) {
	if e.mode != TextEditing || target == nil || target != e.text.element {
		e.tracef("ignoring blur of %s", describe(target))
		return
	}
	if markup != nil {
		e.applyMarkup(target, *markup)
	}
	h := e.text.onFocusLost
	e.text.onFocusLost = nil
	if h != nil {
		h(target)
	}
}

// HandleInput records in-progress text edits without re-rendering.
func (e *Editor) HandleInput(target *html.Node, markup string) {
	if e.mode != TextEditing || target == nil || target != e.text.element {
		return
	}
	e.applyMarkup(target, markup)
}

func (e *Editor) applyMarkup(target *html.Node, markup string) {
	if err := dom.SetInnerHTML(target, markup); err != nil {
		debug.Warn(component, "discarding edited markup for %s: %v", describe(target), err)
	}
}

// EnterDivEditing selects a container for structural editing. It only acts
// from Inspecting.
func (e *Editor) EnterDivEditing(target *html.Node) bool {
	if e.mode != Inspecting || overlay.Classify(target) != overlay.CategoryContainer {
		return false
	}
	if target.Parent == nil {
		return false
	}

	e.EnterNormal()
	e.div = divEditState{
		selected: target,
		parent:   target.Parent,
		next:     target.NextSibling,
		snapshot: dom.Snapshot(target),
	}
	e.overlays.Select(target)
	e.overlays.ShowButtons(target)
	e.doc.MarkDirty()
	e.mode = DivEditing
	e.tracef("enter %s on %s", DivEditing, describe(target))
	return true
}

func (e *Editor) teardownInspecting() {
	e.overlays.Hide(overlay.Inspector)
	e.overlays.Hide(overlay.Highlight)
	e.overlays.Hide(overlay.Hover)
	e.tracking = false
}

func (e *Editor) teardownTextEditing() {
	if h := e.text.onFocusLost; h != nil {
		e.text.onFocusLost = nil
		h(e.text.element)
	}
	e.text = textEditState{}
}

func (e *Editor) teardownDivEditing() {
	s := e.div
	if s.selected != nil {
		s.snapshot.Restore(s.selected)
	}
	for _, c := range s.duplicates {
		s.snapshot.Restore(c)
	}
	e.div = divEditState{}
	e.overlays.Hide(overlay.Buttons)
	e.doc.MarkDirty()
}

// HandlePointerMove follows the pointer while Inspecting: the inspector
// label describes the containing element and the hover highlight tracks the
// element under the pointer.
func (e *Editor) HandlePointerMove(x, y float64, target *html.Node) {
	if !e.tracking {
		return
	}
	if target == nil || overlay.IsInternal(target) {
		debug.Trace(component, "pointer %.0f,%.0f over nothing", x, y)
		e.overlays.Hide(overlay.Hover)
		return
	}
	debug.Trace(component, "pointer %.0f,%.0f over %s", x, y, describe(target))
	e.overlays.ShowInspectorLabel(x, y, target)
	e.overlays.PositionHighlight(overlay.Hover, target)
}

// Save returns to Normal, then hands the body markup, stripped of every
// editor element, to the host and the save sink.
func (e *Editor) Save(ctx context.Context) error {
	e.EnterNormal()
	markup, err := e.doc.BodyMarkup(overlay.HasInternalID)
	if err != nil {
		return fmt.Errorf("failed to serialize body: %w", err)
	}

	var errs []error
	if e.host != nil {
		if err := e.host.Save(markup, e.doc.BaseURI); err != nil {
			errs = append(errs, fmt.Errorf("failed to send save: %w", err))
		}
	}
	if e.sink != nil {
		if err := e.sink.Save(ctx, e.doc.BaseURI, markup); err != nil {
			errs = append(errs, fmt.Errorf("failed to persist save: %w", err))
		}
	}
	debug.Info(component, "saved %s (%d bytes)", e.doc.BaseURI, len(markup))
	return errors.Join(errs...)
}

func (e *Editor) enqueue(cmd func(Client) error) {
	e.queue = append(e.queue, cmd)
}

// Flush brings the client up to date: a full render when the document
// changed, otherwise the changed decorations, then any queued commands.
func (e *Editor) Flush() error {
	queue := e.queue
	e.queue = nil
	if e.client == nil {
		e.doc.TakeDirty()
		e.overlays.DiscardUpdates()
		return nil
	}

	var errs []error
	if e.doc.TakeDirty() {
		markup, err := e.doc.BodyMarkup(nil)
		if err == nil {
			err = e.client.Render(markup)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to render: %w", err))
		}
		e.overlays.DiscardUpdates()
	} else if ups := e.overlays.Updates(); len(ups) > 0 {
		if err := e.client.Overlay(ups); err != nil {
			errs = append(errs, fmt.Errorf("failed to update overlays: %w", err))
		}
	}
	for _, cmd := range queue {
		if err := cmd(e.client); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close cancels any upload in flight.
func (e *Editor) Close() {
	if e.cancelUpload != nil {
		e.cancelUpload()
		e.cancelUpload = nil
	}
}

func isEditable(n *html.Node) bool {
	v, ok := dom.Attr(n, "contenteditable")
	if !ok {
		return false
	}
	v = strings.ToLower(v)
	return v == "" || v == "true" || v == "plaintext-only"
}
