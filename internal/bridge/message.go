// Package bridge carries the editor protocol over a websocket between the
// engine and the script injected into the page. The page script also relays
// the parent frame's messages, so the same connection is the host channel.
package bridge

import (
	"errors"
	"fmt"

	"github.com/standardbeagle/pagedit/internal/dom"
	"github.com/standardbeagle/pagedit/internal/editor"
	"github.com/standardbeagle/pagedit/internal/overlay"
	"github.com/standardbeagle/pagedit/internal/upload"
)

// Message types. The first group arrives from the page, the second is sent
// to it.
const (
	TypeHello       = "hello"
	TypeSwitchMode  = "switchMode"
	TypePointerMove = "pointerMove"
	TypeClick       = "click"
	TypeBlur        = "blur"
	TypeInput       = "input"
	TypeDuplicate   = "duplicate"
	TypeRemove      = "remove"
	TypeSave        = "save"
	TypeFileChosen  = "fileChosen"

	TypeRequestEditMode = "requestEditMode"
	TypeRender          = "render"
	TypeOverlay         = "overlay"
	TypeFocus           = "focus"
	TypeOpenFilePicker  = "openFilePicker"
	TypeUploadStatus    = "uploadStatus"
	TypeError           = "error"
)

var (
	// ErrUnknownType is returned for messages the engine does not handle.
	ErrUnknownType = errors.New("unknown message type")

	// ErrMissingField is returned when a message lacks a required field.
	ErrMissingField = errors.New("missing field")
)

// Message is the JSON envelope for every direction. Only the fields of the
// given type are set.
type Message struct {
	Type string `json:"msgType"`

	DstModeType *int `json:"dstModeType,omitempty"`

	X        float64             `json:"x,omitempty"`
	Y        float64             `json:"y,omitempty"`
	Target   *string             `json:"target,omitempty"`
	Rects    map[string]dom.Rect `json:"rects,omitempty"`
	Scroll   *dom.Point          `json:"scroll,omitempty"`
	Viewport *dom.Size           `json:"viewport,omitempty"`

	HTML    *string `json:"html,omitempty"`
	BaseURI string  `json:"baseURI,omitempty"`

	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"data,omitempty"`

	Overlays map[string]overlay.Update `json:"overlays,omitempty"`

	State string `json:"state,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

func (m Message) target() editor.Ref {
	if m.Target == nil {
		return editor.Ref{}
	}
	return editor.Ref{Path: *m.Target}
}

func (m Message) report() editor.Report {
	return editor.Report{Rects: m.Rects, Scroll: m.Scroll, Viewport: m.Viewport}
}

// ToEvent converts an inbound message into an editor event.
func ToEvent(m Message) (editor.Event, error) {
	switch m.Type {
	case TypeSwitchMode:
		if m.DstModeType == nil {
			return nil, fmt.Errorf("%s: %w dstModeType", m.Type, ErrMissingField)
		}
		return editor.SwitchMode{Wire: *m.DstModeType}, nil
	case TypePointerMove:
		return editor.PointerMove{X: m.X, Y: m.Y, Target: m.target(), Report: m.report()}, nil
	case TypeClick:
		if m.Target == nil {
			return nil, fmt.Errorf("%s: %w target", m.Type, ErrMissingField)
		}
		return editor.Click{Target: m.target(), Report: m.report()}, nil
	case TypeBlur:
		return editor.Blur{Target: m.target(), HTML: m.HTML}, nil
	case TypeInput:
		if m.HTML == nil {
			return nil, fmt.Errorf("%s: %w html", m.Type, ErrMissingField)
		}
		return editor.Input{Target: m.target(), HTML: *m.HTML}, nil
	case TypeDuplicate:
		return editor.Duplicate{}, nil
	case TypeRemove:
		return editor.Remove{}, nil
	case TypeSave:
		return editor.SaveRequest{}, nil
	case TypeFileChosen:
		return editor.FileChosen{File: upload.File{Name: m.Name, ContentType: m.ContentType, Data: m.Data}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
}

// StatusMessage renders an upload status for the page.
func StatusMessage(s editor.UploadStatus) Message {
	target := s.Target
	return Message{
		Type:   TypeUploadStatus,
		Target: &target,
		State:  s.State.String(),
		URL:    s.URL,
		Error:  s.Err,
	}
}
