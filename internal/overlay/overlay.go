// Package overlay owns the editor's decoration elements: the inspect and
// hover highlights, the inspector label, the structural-edit button bar, the
// save affordance and the hidden file picker.
//
// Decorations are ordinary elements in the document body, created once and
// reused for the lifetime of the page. Their inline styles are the only
// state the Manager keeps; Updates reports the ones that changed so a client
// can mirror them without re-rendering the page.
package overlay

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/standardbeagle/pagedit/internal/debug"
	"github.com/standardbeagle/pagedit/internal/dom"
)

// Decoration identifies one of the singleton overlay elements.
type Decoration int

const (
	Highlight Decoration = iota
	Hover
	Inspector
	Buttons
	Save
	FileInput

	numDecorations
)

// Element ids. Every id carries Prefix.
const (
	HighlightID = Prefix + "highlight"
	HoverID     = Prefix + "hover"
	InspectorID = Prefix + "inspector"
	ButtonsID   = Prefix + "buttons"
	DuplicateID = Prefix + "duplicate"
	RemoveID    = Prefix + "remove"
	SaveID      = Prefix + "save"
	FileInputID = Prefix + "file"
)

const (
	edgeMargin    = 5
	buttonsMargin = 5
)

var decorationIDs = [numDecorations]string{
	Highlight: HighlightID,
	Hover:     HoverID,
	Inspector: InspectorID,
	Buttons:   ButtonsID,
	Save:      SaveID,
	FileInput: FileInputID,
}

// ID returns the element id of d.
func (d Decoration) ID() string {
	if d < 0 || d >= numDecorations {
		return ""
	}
	return decorationIDs[d]
}

func (d Decoration) String() string { return d.ID() }

// Config holds the visual settings of the overlays.
type Config struct {
	// ContainerColor is the inspect highlight color over block containers.
	ContainerColor string

	// LeafColor is the inspect highlight color over everything else.
	LeafColor string

	// SelectionBorder and SelectionShadow are written onto the element under
	// structural edit.
	SelectionBorder string
	SelectionShadow string

	// LabelWidth and LabelHeight size the inspector label for viewport
	// clamping until the page reports the label's real box.
	LabelWidth  float64
	LabelHeight float64

	// LabelOffset is the horizontal gap between the pointer and the label.
	LabelOffset float64

	// ButtonsInset is how far left of the target's right edge the button bar
	// starts.
	ButtonsInset float64
}

// DefaultConfig returns the stock overlay look.
func DefaultConfig() Config {
	return Config{
		ContainerColor:  "#4285f4",
		LeafColor:       "#ea4335",
		SelectionBorder: "2px solid #34a853",
		SelectionShadow: "0 0 10px rgba(52, 168, 83, 0.5)",
		LabelWidth:      180,
		LabelHeight:     24,
		LabelOffset:     15,
		ButtonsInset:    90,
	}
}

// Update is the state of one decoration as the client should mirror it.
type Update struct {
	Style string `json:"style"`
	Text  string `json:"text,omitempty"`
}

// Manager positions and shows the decorations of one document.
type Manager struct {
	doc    *dom.Document
	layout dom.Layout
	cfg    Config

	nodes   [numDecorations]*html.Node
	changed [numDecorations]bool
}

// NewManager returns a Manager for doc. Call EnsureCreated before use.
func NewManager(doc *dom.Document, layout dom.Layout, cfg Config) *Manager {
	def := DefaultConfig()
	if cfg.ContainerColor == "" {
		cfg.ContainerColor = def.ContainerColor
	}
	if cfg.LeafColor == "" {
		cfg.LeafColor = def.LeafColor
	}
	if cfg.SelectionBorder == "" {
		cfg.SelectionBorder = def.SelectionBorder
	}
	if cfg.SelectionShadow == "" {
		cfg.SelectionShadow = def.SelectionShadow
	}
	if cfg.LabelWidth <= 0 {
		cfg.LabelWidth = def.LabelWidth
	}
	if cfg.LabelHeight <= 0 {
		cfg.LabelHeight = def.LabelHeight
	}
	if cfg.LabelOffset == 0 {
		cfg.LabelOffset = def.LabelOffset
	}
	if cfg.ButtonsInset == 0 {
		cfg.ButtonsInset = def.ButtonsInset
	}
	return &Manager{doc: doc, layout: layout, cfg: cfg}
}

// Config returns the effective configuration.
func (m *Manager) Config() Config { return m.cfg }

// EnsureCreated attaches any missing decoration to the body. Elements already
// present with the right id are adopted as they are. It reports whether the
// document changed.
func (m *Manager) EnsureCreated() bool {
	created := false
	for d := Decoration(0); d < numDecorations; d++ {
		if n := m.doc.ElementByID(d.ID()); n != nil {
			m.nodes[d] = n
			continue
		}
		n := m.build(d)
		m.doc.Body.AppendChild(n)
		m.nodes[d] = n
		created = true
	}
	if created {
		m.doc.MarkDirty()
	}
	return created
}

func (m *Manager) build(d Decoration) *html.Node {
	n := m.element("div", d.ID())
	switch d {
	case Highlight:
		dom.SetAttr(n, "style", "position: absolute; z-index: 9999; pointer-events: none; box-sizing: border-box; display: none;")
		m.paintHighlight(n, m.cfg.LeafColor)
	case Hover:
		dom.SetAttr(n, "style", "position: absolute; z-index: 9998; pointer-events: none; box-sizing: border-box; display: none;")
		m.paintHighlight(n, m.cfg.ContainerColor)
	case Inspector:
		dom.SetAttr(n, "style", "position: fixed; z-index: 10000; pointer-events: none; padding: 4px 8px; background: rgba(0, 0, 0, 0.8); color: #fff; font: 12px monospace; border-radius: 3px; display: none;")
	case Buttons:
		dom.SetAttr(n, "style", "position: absolute; z-index: 10001; gap: 5px; display: none;")
		n.AppendChild(m.button(DuplicateID, "Duplicate"))
		n.AppendChild(m.button(RemoveID, "Remove"))
	case Save:
		n = m.button(d.ID(), "Save")
		dom.SetAttr(n, "style", "position: fixed; right: 20px; bottom: 20px; z-index: 10001; display: none;")
	case FileInput:
		n = m.element("input", d.ID())
		dom.SetAttr(n, "type", "file")
		dom.SetAttr(n, "accept", "image/*")
		dom.SetAttr(n, "style", "display: none;")
	}
	return n
}

func (m *Manager) element(tag, id string) *html.Node {
	n := m.doc.CreateElement(tag)
	dom.SetAttr(n, "id", id)
	return n
}

func (m *Manager) button(id, label string) *html.Node {
	n := m.element("button", id)
	dom.SetAttr(n, "type", "button")
	n.AppendChild(&html.Node{Type: html.TextNode, Data: label})
	return n
}

func (m *Manager) paintHighlight(n *html.Node, color string) {
	dom.SetStyle(n, "border", "2px solid "+color)
	dom.SetStyle(n, "background-color", tint(color))
}

// tint returns a translucent fill for the two stock highlight colors and
// leaves custom colors unfilled.
func tint(color string) string {
	switch color {
	case "#4285f4":
		return "rgba(66, 133, 244, 0.2)"
	case "#ea4335":
		return "rgba(234, 67, 53, 0.1)"
	}
	return ""
}

// Node returns the element of d, or nil if it was never created or has since
// been removed from the document.
func (m *Manager) Node(d Decoration) *html.Node {
	if d < 0 || d >= numDecorations {
		return nil
	}
	n := m.nodes[d]
	if n == nil || !m.doc.Contains(n) {
		return nil
	}
	return n
}

// require returns the element of d, logging when it is missing.
func (m *Manager) require(d Decoration) *html.Node {
	n := m.Node(d)
	if n == nil {
		debug.Error("overlay", "decoration %s not found", d.ID())
	}
	return n
}

func (m *Manager) setStyle(d Decoration, n *html.Node, prop, value string) {
	if dom.Style(n, prop) == value {
		return
	}
	dom.SetStyle(n, prop, value)
	m.changed[d] = true
}

// Show makes d visible.
func (m *Manager) Show(d Decoration) {
	if n := m.require(d); n != nil {
		m.setStyle(d, n, "display", displayFor(d))
	}
}

// Hide makes d invisible.
func (m *Manager) Hide(d Decoration) {
	if n := m.require(d); n != nil {
		m.setStyle(d, n, "display", "none")
	}
}

func displayFor(d Decoration) string {
	if d == Buttons {
		return "flex"
	}
	return "block"
}

// IsVisible reports whether d is currently shown.
func (m *Manager) IsVisible(d Decoration) bool {
	n := m.Node(d)
	return n != nil && dom.Style(n, "display") != "none"
}

// Box returns the absolute box last written onto d.
func (m *Manager) Box(d Decoration) dom.Rect {
	n := m.Node(d)
	if n == nil {
		return dom.Rect{}
	}
	return dom.Rect{
		Top:    parsePx(dom.Style(n, "top")),
		Left:   parsePx(dom.Style(n, "left")),
		Width:  parsePx(dom.Style(n, "width")),
		Height: parsePx(dom.Style(n, "height")),
	}
}

// Text returns the text content of d.
func (m *Manager) Text(d Decoration) string {
	n := m.Node(d)
	if n == nil {
		return ""
	}
	return dom.Text(n)
}

// PositionHighlight moves the highlight d over el using el's reported box and
// the page scroll, and shows it. An element with no reported box hides d.
func (m *Manager) PositionHighlight(d Decoration, el *html.Node) bool {
	n := m.require(d)
	if n == nil {
		return false
	}
	r, ok := m.layout.Rect(el)
	if !ok {
		m.setStyle(d, n, "display", "none")
		return false
	}
	s := m.layout.Scroll()
	m.setStyle(d, n, "top", dom.Px(r.Top+s.Y))
	m.setStyle(d, n, "left", dom.Px(r.Left+s.X))
	m.setStyle(d, n, "width", dom.Px(r.Width))
	m.setStyle(d, n, "height", dom.Px(r.Height))
	m.setStyle(d, n, "display", "block")
	return true
}

// HighlightTarget positions the inspect highlight over el, colored by
// whether el is a container.
func (m *Manager) HighlightTarget(el *html.Node) bool {
	n := m.require(Highlight)
	if n == nil {
		return false
	}
	color := m.cfg.LeafColor
	if IsContainer(el) {
		color = m.cfg.ContainerColor
	}
	m.setStyle(Highlight, n, "border", "2px solid "+color)
	m.setStyle(Highlight, n, "background-color", tint(color))
	return m.PositionHighlight(Highlight, el)
}

// ContainingElement returns the nearest div at or above el, stopping below
// body. When there is none, el itself is returned.
func (m *Manager) ContainingElement(el *html.Node) *html.Node {
	for p := el; p != nil && p != m.doc.Body; p = p.Parent {
		if IsContainer(p) {
			return p
		}
	}
	return el
}

// ShowInspectorLabel describes the element containing el in the inspector
// label, places the label near the pointer at (x, y) inside the viewport and
// highlights the described element.
func (m *Manager) ShowInspectorLabel(x, y float64, el *html.Node) bool {
	n := m.require(Inspector)
	if n == nil {
		return false
	}
	target := m.ContainingElement(el)
	m.setText(Inspector, n, Describe(target))

	w, h := m.cfg.LabelWidth, m.cfg.LabelHeight
	if r, ok := m.layout.Rect(n); ok && r.Width > 0 && r.Height > 0 {
		w, h = r.Width, r.Height
	}
	vp := m.layout.Viewport()
	left, top := x+m.cfg.LabelOffset, y
	if vp.Width > 0 && left+w > vp.Width {
		left = x - w - edgeMargin
	}
	if vp.Height > 0 && top+h > vp.Height {
		top = vp.Height - h - edgeMargin
	}
	m.setStyle(Inspector, n, "left", dom.Px(left))
	m.setStyle(Inspector, n, "top", dom.Px(top))
	m.setStyle(Inspector, n, "display", "block")

	return m.HighlightTarget(target)
}

func (m *Manager) setText(d Decoration, n *html.Node, text string) {
	if dom.Text(n) == text {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	m.changed[d] = true
}

// ShowButtons places the button bar just below the bottom-right corner of el.
func (m *Manager) ShowButtons(el *html.Node) bool {
	n := m.require(Buttons)
	if n == nil {
		return false
	}
	r, ok := m.layout.Rect(el)
	if !ok {
		debug.Warn("overlay", "no geometry for %s, button bar left in place", Describe(el))
	} else {
		s := m.layout.Scroll()
		m.setStyle(Buttons, n, "top", dom.Px(r.Bottom()+s.Y+buttonsMargin))
		m.setStyle(Buttons, n, "left", dom.Px(r.Right()+s.X-m.cfg.ButtonsInset))
	}
	m.setStyle(Buttons, n, "display", "flex")
	return true
}

// Select paints the structural-edit selection onto el.
func (m *Manager) Select(el *html.Node) {
	dom.SetStyle(el, "border", m.cfg.SelectionBorder)
	dom.SetStyle(el, "box-shadow", m.cfg.SelectionShadow)
}

// Updates returns the decorations changed since the last call, keyed by id.
func (m *Manager) Updates() map[string]Update {
	var out map[string]Update
	for d := Decoration(0); d < numDecorations; d++ {
		if !m.changed[d] {
			continue
		}
		m.changed[d] = false
		n := m.Node(d)
		if n == nil {
			continue
		}
		if out == nil {
			out = make(map[string]Update)
		}
		style, _ := dom.Attr(n, "style")
		u := Update{Style: style}
		if d == Inspector {
			u.Text = dom.Text(n)
		}
		out[d.ID()] = u
	}
	return out
}

// DiscardUpdates forgets pending changes, e.g. after a full re-render
// already carried them.
func (m *Manager) DiscardUpdates() {
	m.changed = [numDecorations]bool{}
}

func parsePx(v string) float64 {
	var f float64
	if _, err := fmt.Sscanf(v, "%gpx", &f); err != nil {
		return 0
	}
	return f
}
