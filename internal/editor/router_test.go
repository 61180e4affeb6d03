package editor

import (
	"testing"

	"github.com/standardbeagle/pagedit/internal/dom"
	"github.com/standardbeagle/pagedit/internal/overlay"
)

func TestRoute(t *testing.T) {
	doc, err := dom.ParseString(`<html><body>
<div id="box"><p id="p">text</p><img id="img"><em id="done" contenteditable="true">x</em><section id="sec"></section></div>
<div id="_pagedit_buttons"><button id="_pagedit_remove">Remove</button></div>
</body></html>`, "")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		mode Mode
		id   string
		want Action
	}{
		{Inspecting, "box", ActionSelectContainer},
		{Inspecting, "p", ActionEditText},
		{Inspecting, "img", ActionPickImage},
		{Inspecting, "done", ActionNone},
		{Inspecting, "sec", ActionNone},
		{Inspecting, "_pagedit_buttons", ActionNone},
		{Inspecting, "_pagedit_remove", ActionNone},
		{Normal, "box", ActionNone},
		{Normal, "p", ActionNone},
		{TextEditing, "p", ActionNone},
		{DivEditing, "box", ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.id, func(t *testing.T) {
			if got := Route(tt.mode, doc.ElementByID(tt.id)); got != tt.want {
				t.Errorf("Route(%v, %s) = %v, want %v", tt.mode, tt.id, got, tt.want)
			}
		})
	}

	if got := Route(Inspecting, nil); got != ActionNone {
		t.Errorf("Route(nil) = %v", got)
	}
}

func TestModeFromWire(t *testing.T) {
	tests := []struct {
		wire int
		want Mode
		ok   bool
	}{
		{WireNormal, Normal, true},
		{WireEdit, Inspecting, true},
		{WireInspecting, Inspecting, true},
		{3, Normal, false},
		{-1, Normal, false},
	}
	for _, tt := range tests {
		got, ok := ModeFromWire(tt.wire)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ModeFromWire(%d) = %v, %v; want %v, %v", tt.wire, got, ok, tt.want, tt.ok)
		}
	}
}

func TestClickOnImageOpensPicker(t *testing.T) {
	f := newFixture(t)
	f.ed.EnterInspecting()
	f.ed.HandleClick(f.el("pic"))
	f.ed.Flush()

	if f.ed.Mode() != Inspecting {
		t.Errorf("mode = %v", f.ed.Mode())
	}
	if f.client.pickers != 1 {
		t.Errorf("file picker opened %d times", f.client.pickers)
	}
	p, ok := f.ed.Pending()
	if !ok || p.Target != f.el("pic") || p.State != ImageWaiting {
		t.Errorf("pending = %+v, %v", p, ok)
	}
}

func TestClickOnTextWinsOverContainer(t *testing.T) {
	f := newFixture(t)
	f.ed.EnterInspecting()
	f.ed.HandleClick(f.el("intro"))
	if f.ed.Mode() != TextEditing {
		t.Errorf("mode = %v, want text-editing", f.ed.Mode())
	}
	if overlay.Classify(f.el("intro").Parent) != overlay.CategoryContainer {
		t.Fatal("fixture: intro should sit inside a container")
	}
}
