package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/standardbeagle/pagedit/internal/editor"
	"github.com/standardbeagle/pagedit/internal/overlay"
)

func TestToEvent(t *testing.T) {
	mode := 2
	path := "0.1"
	markup := "<b>x</b>"

	tests := []struct {
		name string
		msg  Message
		want editor.Event
	}{
		{"switch", Message{Type: TypeSwitchMode, DstModeType: &mode}, editor.SwitchMode{Wire: 2}},
		{"click", Message{Type: TypeClick, Target: &path}, editor.Click{Target: editor.Ref{Path: "0.1"}}},
		{"duplicate", Message{Type: TypeDuplicate}, editor.Duplicate{}},
		{"remove", Message{Type: TypeRemove}, editor.Remove{}},
		{"save", Message{Type: TypeSave}, editor.SaveRequest{}},
		{"input", Message{Type: TypeInput, Target: &path, HTML: &markup}, editor.Input{Target: editor.Ref{Path: "0.1"}, HTML: markup}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToEvent(tt.msg)
			if err != nil {
				t.Fatalf("ToEvent: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToEvent = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestToEventErrors(t *testing.T) {
	tests := []struct {
		msg  Message
		want error
	}{
		{Message{Type: "bogus"}, ErrUnknownType},
		{Message{Type: TypeSwitchMode}, ErrMissingField},
		{Message{Type: TypeClick}, ErrMissingField},
		{Message{Type: TypeInput}, ErrMissingField},
	}
	for _, tt := range tests {
		if _, err := ToEvent(tt.msg); !errors.Is(err, tt.want) {
			t.Errorf("ToEvent(%s) error = %v, want %v", tt.msg.Type, err, tt.want)
		}
	}
}

func TestDecodeWireMessages(t *testing.T) {
	raw := `{"msgType":"pointerMove","x":12,"y":34,"target":"0","rects":{"0":{"top":1,"left":2,"width":3,"height":4}},"scroll":{"x":0,"y":10},"viewport":{"width":800,"height":600}}`
	var m Message
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatal(err)
	}
	ev, err := ToEvent(m)
	if err != nil {
		t.Fatal(err)
	}
	pm, ok := ev.(editor.PointerMove)
	if !ok {
		t.Fatalf("event = %T", ev)
	}
	if pm.X != 12 || pm.Y != 34 || pm.Target.Path != "0" {
		t.Errorf("pointer = %+v", pm)
	}
	if pm.Rects["0"].Width != 3 || pm.Scroll.Y != 10 || pm.Viewport.Width != 800 {
		t.Errorf("report = %+v", pm.Report)
	}

	raw = `{"msgType":"fileChosen","name":"a.png","contentType":"image/png","data":"aGVsbG8="}`
	m = Message{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatal(err)
	}
	ev, _ = ToEvent(m)
	fc := ev.(editor.FileChosen)
	if string(fc.File.Data) != "hello" || fc.File.Name != "a.png" {
		t.Errorf("file = %+v", fc.File)
	}
}

func TestStatusMessage(t *testing.T) {
	m := StatusMessage(editor.UploadStatus{Target: "0.2", State: editor.ImageFailed, Err: "boom"})
	if m.Type != TypeUploadStatus || *m.Target != "0.2" || m.State != "failed" || m.Error != "boom" {
		t.Errorf("message = %+v", m)
	}
}

// pair returns a server-side Conn and the client websocket talking to it.
func pair(t *testing.T) (*Conn, *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	ready := make(chan *Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ready <- NewConn(ws)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	conn := <-ready
	t.Cleanup(func() { conn.Close() })
	return conn, client
}

func TestConnHostAndClientMessages(t *testing.T) {
	conn, client := pair(t)

	send := []func() error{
		conn.Ready,
		func() error { return conn.Save("<p>x</p>", "http://example.com/") },
		func() error { return conn.Render("<div></div>") },
		func() error { return conn.Overlay(map[string]overlay.Update{overlay.HoverID: {Style: "display: none;"}}) },
		func() error { return conn.Focus("0.1") },
		conn.OpenFilePicker,
	}
	for _, fn := range send {
		if err := fn(); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	var got []Message
	for range send {
		var m Message
		if err := client.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		got = append(got, m)
	}

	wantTypes := []string{TypeRequestEditMode, TypeSave, TypeRender, TypeOverlay, TypeFocus, TypeOpenFilePicker}
	for i, m := range got {
		if m.Type != wantTypes[i] {
			t.Errorf("message %d type = %q, want %q", i, m.Type, wantTypes[i])
		}
	}
	if *got[1].HTML != "<p>x</p>" || got[1].BaseURI != "http://example.com/" {
		t.Errorf("save = %+v", got[1])
	}
	if got[3].Overlays[overlay.HoverID].Style != "display: none;" {
		t.Errorf("overlay = %+v", got[3])
	}
	if *got[4].Target != "0.1" {
		t.Errorf("focus = %+v", got[4])
	}
}

func TestConnRead(t *testing.T) {
	conn, client := pair(t)
	mode := 1
	if err := client.WriteJSON(Message{Type: TypeSwitchMode, DstModeType: &mode}); err != nil {
		t.Fatal(err)
	}
	m, err := conn.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.Type != TypeSwitchMode || *m.DstModeType != 1 {
		t.Errorf("message = %+v", m)
	}

	client.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if _, err := conn.Read(); err == nil || !IsClosed(err) {
		t.Errorf("Read after close = %v", err)
	}
}

func TestConnReadMalformedKeepsConnection(t *testing.T) {
	conn, client := pair(t)

	client.WriteMessage(websocket.TextMessage, []byte(`{"msgType":"switchMode","dstModeType":"2"}`))
	_, err := conn.Read()
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("Read = %v, want ErrMalformed", err)
	}
	if IsClosed(err) {
		t.Error("malformed frame reported as closed connection")
	}

	mode := 0
	client.WriteJSON(Message{Type: TypeSwitchMode, DstModeType: &mode})
	m, err := conn.Read()
	if err != nil {
		t.Fatalf("Read after malformed frame: %v", err)
	}
	if m.Type != TypeSwitchMode || *m.DstModeType != 0 {
		t.Errorf("message = %+v", m)
	}
}

func TestIsClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"normal close", &websocket.CloseError{Code: websocket.CloseNormalClosure}, true},
		{"abnormal close", &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, true},
		{"eof", io.EOF, true},
		{"closed here", fmt.Errorf("read: %w", net.ErrClosed), true},
		{"malformed", fmt.Errorf("%w: bad", ErrMalformed), false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClosed(tt.err); got != tt.want {
				t.Errorf("IsClosed(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
