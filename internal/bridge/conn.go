package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/standardbeagle/pagedit/internal/editor"
	"github.com/standardbeagle/pagedit/internal/overlay"
)

const (
	writeWait = 10 * time.Second

	// MaxMessageSize bounds inbound messages; chosen files travel inline.
	MaxMessageSize = 32 << 20
)

// Conn is one page connection. It implements editor.Host and editor.Client.
// Writes are serialized; reads must stay on one goroutine.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

var (
	_ editor.Host   = (*Conn)(nil)
	_ editor.Client = (*Conn)(nil)
)

// NewConn wraps an established websocket.
func NewConn(ws *websocket.Conn) *Conn {
	ws.SetReadLimit(MaxMessageSize)
	return &Conn{ws: ws}
}

// Send writes one message.
func (c *Conn) Send(m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := c.ws.WriteJSON(m); err != nil {
		return fmt.Errorf("failed to write %s: %w", m.Type, err)
	}
	return nil
}

// ErrMalformed wraps frames that are not a valid message. The connection
// stays usable after it.
var ErrMalformed = errors.New("malformed message")

// Read blocks for the next message.
func (c *Conn) Read() (Message, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return Message{}, err
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return m, nil
}

// Close sends a normal close frame and closes the socket.
func (c *Conn) Close() error {
	c.mu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.mu.Unlock()
	return c.ws.Close()
}

// IsClosed reports whether err means the connection is gone: a close frame,
// EOF, or a socket already closed on this side.
func IsClosed(err error) bool {
	var ce *websocket.CloseError
	return errors.As(err, &ce) || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}

func (c *Conn) Ready() error {
	return c.Send(Message{Type: TypeRequestEditMode})
}

func (c *Conn) Save(markup, baseURI string) error {
	return c.Send(Message{Type: TypeSave, HTML: &markup, BaseURI: baseURI})
}

func (c *Conn) Render(markup string) error {
	return c.Send(Message{Type: TypeRender, HTML: &markup})
}

func (c *Conn) Overlay(updates map[string]overlay.Update) error {
	return c.Send(Message{Type: TypeOverlay, Overlays: updates})
}

func (c *Conn) Focus(path string) error {
	return c.Send(Message{Type: TypeFocus, Target: &path})
}

func (c *Conn) OpenFilePicker() error {
	return c.Send(Message{Type: TypeOpenFilePicker})
}

func (c *Conn) UploadStatus(s editor.UploadStatus) error {
	return c.Send(StatusMessage(s))
}

// SendError reports a protocol problem to the page.
func (c *Conn) SendError(err error) error {
	return c.Send(Message{Type: TypeError, Error: err.Error()})
}
