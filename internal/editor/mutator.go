package editor

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/standardbeagle/pagedit/internal/debug"
	"github.com/standardbeagle/pagedit/internal/dom"
	"github.com/standardbeagle/pagedit/internal/overlay"
)

// Duplicate clones the selected element right after itself. When the
// selected element was removed earlier in the session it is put back
// instead. Outside DivEditing it does nothing.
func (e *Editor) Duplicate() {
	if e.mode != DivEditing {
		return
	}
	s := &e.div

	if s.selected.Parent == nil {
		e.reattach()
		return
	}

	c := dom.Clone(s.selected)
	stripInternal(c)
	if id := dom.ID(s.selected); id != "" {
		dom.SetAttr(c, "id", e.copyID(id, len(s.duplicates)+1))
	}
	if !dom.InsertAfter(s.selected, c) {
		return
	}
	s.duplicates = append(s.duplicates, c)
	e.doc.MarkDirty()
	e.tracef("duplicate %s, %d on stack", describe(s.selected), len(s.duplicates))
}

// copyID derives a clone id from the stack depth, skipping suffixes an
// earlier session already left in the document.
func (e *Editor) copyID(id string, depth int) string {
	for n := depth; ; n++ {
		cand := fmt.Sprintf("%s-copy%d", id, n)
		if e.doc.ElementByID(cand) == nil {
			return cand
		}
	}
}

func (e *Editor) reattach() {
	s := &e.div
	if s.parent == nil {
		debug.Warn(component, "cannot reattach %s: parent unknown", describe(s.selected))
		return
	}
	if s.next != nil && s.next.Parent == s.parent {
		s.parent.InsertBefore(s.selected, s.next)
	} else {
		s.parent.AppendChild(s.selected)
	}
	e.overlays.ShowButtons(s.selected)
	e.doc.MarkDirty()
	e.tracef("reattach %s", describe(s.selected))
}

// Remove pops and removes the most recent clone. With no clones left it
// removes the selected element itself, remembering where it was so a later
// Duplicate can put it back. Outside DivEditing it does nothing.
func (e *Editor) Remove() {
	if e.mode != DivEditing {
		return
	}
	s := &e.div

	if n := len(s.duplicates); n > 0 {
		c := s.duplicates[n-1]
		s.duplicates = s.duplicates[:n-1]
		dom.Detach(c)
		e.doc.MarkDirty()
		e.tracef("remove clone of %s, %d on stack", describe(s.selected), len(s.duplicates))
		return
	}

	if s.selected.Parent == nil {
		return
	}
	s.parent = s.selected.Parent
	s.next = s.selected.NextSibling
	dom.Detach(s.selected)
	e.doc.MarkDirty()
	e.tracef("remove %s", describe(s.selected))
}

// stripInternal drops editor elements from a freshly cloned subtree so their
// ids stay unique.
func stripInternal(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if overlay.HasInternalID(c) {
			n.RemoveChild(c)
		} else {
			stripInternal(c)
		}
		c = next
	}
}
