package editor

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/net/html"

	"github.com/standardbeagle/pagedit/internal/debug"
	"github.com/standardbeagle/pagedit/internal/dom"
	"github.com/standardbeagle/pagedit/internal/overlay"
	"github.com/standardbeagle/pagedit/internal/upload"
)

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("dispatcher already running")

// Event is an input to the editor.
type Event interface {
	event()
}

// Ref locates an element: Node when the caller holds it, otherwise the
// element path reported by the page. An empty Ref is no element.
type Ref struct {
	Path string
	Node *html.Node
}

// Report is the geometry the page sends with pointer input. Rects is keyed
// by element path and replaces everything reported before.
type Report struct {
	Rects    map[string]dom.Rect
	Scroll   *dom.Point
	Viewport *dom.Size
}

type (
	PointerMove struct {
		X, Y   float64
		Target Ref
		Report
	}
	Click struct {
		Target Ref
		Report
	}
	Blur struct {
		Target Ref
		HTML   *string
	}
	Input struct {
		Target Ref
		HTML   string
	}
	FileChosen struct {
		File upload.File
	}
	UploadDone struct {
		Token uint64
		URL   string
		Err   error
	}
	SwitchMode struct {
		Wire int
	}
	Duplicate   struct{}
	Remove      struct{}
	SaveRequest struct{}
	Ready       struct{}
)

func (PointerMove) event() {}
func (Click) event()       {}
func (Blur) event()        {}
func (Input) event()       {}
func (FileChosen) event()  {}
func (UploadDone) event()  {}
func (SwitchMode) event()  {}
func (Duplicate) event()   {}
func (Remove) event()      {}
func (SaveRequest) event() {}
func (Ready) event()       {}

// Dispatcher feeds events to one Editor on a single goroutine.
type Dispatcher struct {
	ed  *Editor
	geo *dom.Geometry

	events   chan Event
	done     chan struct{}
	stopOnce sync.Once
	running  bool
	mu       sync.Mutex
}

// NewDispatcher returns a Dispatcher for ed. geo must be the Layout ed was
// created with; geometry reports are written into it.
func NewDispatcher(ed *Editor, geo *dom.Geometry, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	d := &Dispatcher{
		ed:     ed,
		geo:    geo,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	ed.post = d.Post
	return d
}

// Post queues ev. It blocks while the queue is full and returns false once
// the dispatcher has stopped.
func (d *Dispatcher) Post(ev Event) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.events <- ev:
		return true
	case <-d.done:
		return false
	}
}

// Run handles events until ctx is done, then cancels uploads in flight.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrAlreadyRunning
	}
	d.running = true
	d.mu.Unlock()

	defer d.stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-d.events:
			if err := d.Handle(ctx, ev); err != nil {
				debug.Warn(component, "handling %T: %v", ev, err)
			}
		}
	}
}

func (d *Dispatcher) stop() {
	d.stopOnce.Do(func() {
		close(d.done)
		d.ed.Close()
	})
}

// Handle runs one event to completion and flushes the result to the client.
// It must only be called from the goroutine running Run, or when Run is not
// in use.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) error {
	var err error
	ed := d.ed

	switch ev := ev.(type) {
	case PointerMove:
		d.apply(ev.Report)
		target := d.resolve(ev.Target)
		if target == nil && ev.Target.Path == "" {
			target = d.geo.HitTest(ev.X, ev.Y, overlay.IsInternal)
		}
		ed.HandlePointerMove(ev.X, ev.Y, target)
	case Click:
		d.apply(ev.Report)
		ed.HandleClick(d.resolve(ev.Target))
	case Blur:
		ed.HandleBlur(d.resolve(ev.Target), ev.HTML)
	case Input:
		ed.HandleInput(d.resolve(ev.Target), ev.HTML)
	case FileChosen:
		ed.HandleFileChosen(ev.File)
	case UploadDone:
		ed.FinishUpload(ev.Token, ev.URL, ev.Err)
	case SwitchMode:
		ed.SwitchMode(ev.Wire)
	case Duplicate:
		ed.Duplicate()
	case Remove:
		ed.Remove()
	case SaveRequest:
		err = ed.Save(ctx)
	case Ready:
		err = ed.Ready()
	default:
		debug.Warn(component, "unknown event %T", ev)
	}

	return errors.Join(err, ed.Flush())
}

func (d *Dispatcher) apply(r Report) {
	if r.Rects != nil {
		debug.Trace(component, "layout report, %d rects", len(r.Rects))
		d.geo.ResetRects()
		doc := d.ed.Document()
		for path, rect := range r.Rects {
			if n := doc.Resolve(path); n != nil {
				d.geo.SetRect(n, rect)
			}
		}
	}
	if r.Scroll != nil {
		d.geo.SetScroll(*r.Scroll)
	}
	if r.Viewport != nil {
		d.geo.SetViewport(*r.Viewport)
	}
}

func (d *Dispatcher) resolve(ref Ref) *html.Node {
	if ref.Node != nil {
		return ref.Node
	}
	if ref.Path == "" {
		return nil
	}
	n := d.ed.Document().Resolve(ref.Path)
	if n == nil {
		debug.Warn(component, "unresolvable element path %q", ref.Path)
	}
	return n
}
