package proxy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/standardbeagle/pagedit/internal/bridge"
	"github.com/standardbeagle/pagedit/internal/debug"
	"github.com/standardbeagle/pagedit/internal/dom"
	"github.com/standardbeagle/pagedit/internal/editor"
	"github.com/standardbeagle/pagedit/internal/overlay"
	"github.com/standardbeagle/pagedit/internal/upload"
)

const component = "proxy"

// ErrNoHello is returned when a page opens a session without a hello.
var ErrNoHello = errors.New("first message must be hello")

// Deps are shared by every session a server starts.
type Deps struct {
	Uploader upload.Uploader
	Sink     editor.SaveSink
	Overlay  overlay.Config
}

// Session is one page connected to the engine.
type Session struct {
	ID      string    `json:"id"`
	BaseURI string    `json:"base_uri"`
	Started time.Time `json:"started"`

	conn   *bridge.Conn
	disp   *editor.Dispatcher
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// openSession waits for the page's hello and builds the editor around the
// markup it carries.
func openSession(ctx context.Context, conn *bridge.Conn, deps Deps) (*Session, error) {
	hello, err := conn.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read hello: %w", err)
	}
	if hello.Type != bridge.TypeHello || hello.HTML == nil {
		return nil, fmt.Errorf("%w, got %q", ErrNoHello, hello.Type)
	}

	doc, err := dom.ParseString(*hello.HTML, hello.BaseURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	geo := dom.NewGeometry()
	ed := editor.New(doc, geo, editor.Config{
		Host:     conn,
		Client:   conn,
		Uploader: deps.Uploader,
		Sink:     deps.Sink,
		Overlay:  deps.Overlay,
		Context:  ctx,
	})

	s := &Session{
		ID:      uuid.NewString(),
		BaseURI: hello.BaseURI,
		Started: time.Now(),
		conn:    conn,
		disp:    editor.NewDispatcher(ed, geo, 0),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		if err := s.disp.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			debug.Warn(component, "session %s: %v", s.ID, err)
		}
	}()
	s.disp.Post(editor.Ready{})
	return s, nil
}

// serve forwards page messages to the dispatcher until the connection
// closes or the session is stopped.
func (s *Session) serve() {
	defer s.Close()
	for {
		msg, err := s.conn.Read()
		if errors.Is(err, bridge.ErrMalformed) {
			debug.Warn(component, "session %s: %v", s.ID, err)
			if sendErr := s.conn.SendError(err); sendErr != nil {
				return
			}
			continue
		}
		if err != nil {
			if !bridge.IsClosed(err) {
				debug.Warn(component, "session %s: read: %v", s.ID, err)
			}
			return
		}
		ev, err := bridge.ToEvent(msg)
		if err != nil {
			debug.Warn(component, "session %s: %v", s.ID, err)
			if sendErr := s.conn.SendError(err); sendErr != nil {
				return
			}
			continue
		}
		if !s.disp.Post(ev) {
			return
		}
	}
}

// Close stops the session's editor and closes its connection.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		<-s.done
		err = s.conn.Close()
	})
	return err
}

// Done is closed once the session's editor has stopped.
func (s *Session) Done() <-chan struct{} { return s.done }
