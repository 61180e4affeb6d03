package dom

import "golang.org/x/net/html"

// Rect is an on-screen bounding box in viewport coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Right returns the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Contains reports whether the point (x, y) falls inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom()
}

// Point is a scroll offset or pointer position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the viewport size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Layout supplies element geometry. The engine never computes layout; it
// reads what the page reported.
type Layout interface {
	Rect(n *html.Node) (Rect, bool)
	Scroll() Point
	Viewport() Size
}

// Geometry is a Layout fed by geometry reports from the live page.
type Geometry struct {
	rects    map[*html.Node]Rect
	scroll   Point
	viewport Size
}

// NewGeometry returns an empty Geometry.
func NewGeometry() *Geometry {
	return &Geometry{rects: make(map[*html.Node]Rect)}
}

// SetRect records the bounding box of n.
func (g *Geometry) SetRect(n *html.Node, r Rect) {
	g.rects[n] = r
}

// SetScroll records the page scroll offset.
func (g *Geometry) SetScroll(p Point) {
	g.scroll = p
}

// SetViewport records the viewport size.
func (g *Geometry) SetViewport(s Size) {
	g.viewport = s
}

// ResetRects forgets all element boxes. Scroll and viewport are kept.
func (g *Geometry) ResetRects() {
	clear(g.rects)
}

// Rect implements Layout.
func (g *Geometry) Rect(n *html.Node) (Rect, bool) {
	r, ok := g.rects[n]
	return r, ok
}

// Scroll implements Layout.
func (g *Geometry) Scroll() Point { return g.scroll }

// Viewport implements Layout.
func (g *Geometry) Viewport() Size { return g.viewport }

// HitTest returns the deepest reported element whose box contains (x, y),
// or nil when none does. skip excludes elements such as overlay decorations.
func (g *Geometry) HitTest(x, y float64, skip func(*html.Node) bool) *html.Node {
	var best *html.Node
	bestDepth := -1
	for n, r := range g.rects {
		if !r.Contains(x, y) || (skip != nil && skip(n)) {
			continue
		}
		if d := depth(n); d > bestDepth {
			best, bestDepth = n, d
		}
	}
	return best
}

func depth(n *html.Node) int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}
