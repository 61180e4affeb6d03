// Package dom wraps an x/net/html node tree with the element operations the
// editor needs: attribute and inline-style access, deep cloning, sibling
// insertion, element-path locators and body serialization.
//
// Nodes are plain *html.Node values. A Document is not safe for concurrent
// use; the editor confines each one to a single goroutine.
package dom

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoBody is returned when a parsed tree has no <body> element.
var ErrNoBody = errors.New("document has no body")

// Document is a parsed HTML page.
type Document struct {
	Root    *html.Node
	Body    *html.Node
	BaseURI string

	dirty bool
}

// Parse reads an HTML page. baseURI is the page's location and travels with
// the saved markup.
func Parse(r io.Reader, baseURI string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	body := findFirst(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if body == nil {
		return nil, ErrNoBody
	}
	return &Document{Root: root, Body: body, BaseURI: baseURI}, nil
}

// ParseString is Parse over a string.
func ParseString(s, baseURI string) (*Document, error) {
	return Parse(strings.NewReader(s), baseURI)
}

// MarkDirty records that host content changed and the page needs a re-render.
func (d *Document) MarkDirty() {
	d.dirty = true
}

// Dirty reports whether the document changed since the last TakeDirty.
func (d *Document) Dirty() bool {
	return d.dirty
}

// TakeDirty returns and clears the dirty flag.
func (d *Document) TakeDirty() bool {
	was := d.dirty
	d.dirty = false
	return was
}

// CreateElement returns a new detached element.
func (d *Document) CreateElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// ElementByID returns the first element under Root whose id equals id.
func (d *Document) ElementByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	return findFirst(d.Root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && ID(n) == id
	})
}

// Contains reports whether n is attached to the document tree.
func (d *Document) Contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.Root {
			return true
		}
	}
	return false
}

// Path returns the locator of n relative to Body: dot-joined indexes among
// element children, e.g. "0.2.1". Body itself has the empty path. ok is
// false when n is not under Body.
func (d *Document) Path(n *html.Node) (path string, ok bool) {
	if n == d.Body {
		return "", true
	}
	var idx []string
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == d.Body {
			for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
				idx[i], idx[j] = idx[j], idx[i]
			}
			return strings.Join(idx, "."), true
		}
		if cur.Type != html.ElementNode || cur.Parent == nil {
			return "", false
		}
		idx = append(idx, strconv.Itoa(elementIndex(cur)))
	}
	return "", false
}

// Resolve returns the element at path, or nil when the path does not match
// the current tree.
func (d *Document) Resolve(path string) *html.Node {
	if path == "" {
		return d.Body
	}
	cur := d.Body
	for _, part := range strings.Split(path, ".") {
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 {
			return nil
		}
		cur = nthElementChild(cur, i)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func elementIndex(n *html.Node) int {
	i := 0
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			i++
		}
	}
	return i
}

func nthElementChild(n *html.Node, i int) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if i == 0 {
			return c
		}
		i--
	}
	return nil
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}
