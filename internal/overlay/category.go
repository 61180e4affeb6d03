package overlay

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/standardbeagle/pagedit/internal/dom"
)

// Prefix is carried by the id of every element the editor creates. It is the
// only thing used to exclude those elements from hit-testing, highlighting
// and saved markup.
const Prefix = "_pagedit_"

// Category is the closed set of click and hover target kinds.
type Category int

const (
	CategoryOther Category = iota
	CategoryContainer
	CategoryEditableText
	CategoryImage
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategoryContainer:
		return "container"
	case CategoryEditableText:
		return "editable-text"
	case CategoryImage:
		return "image"
	case CategoryInternal:
		return "internal"
	default:
		return "other"
	}
}

var editableText = map[atom.Atom]bool{
	atom.P:      true,
	atom.H1:     true,
	atom.H2:     true,
	atom.H3:     true,
	atom.H4:     true,
	atom.H5:     true,
	atom.H6:     true,
	atom.Span:   true,
	atom.Strong: true,
	atom.Em:     true,
	atom.U:      true,
	atom.Li:     true,
	atom.Td:     true,
	atom.Th:     true,
	atom.Button: true,
	atom.A:      true,
}

// Classify returns the category of n. Internal wins over everything, and the
// text tags are checked before the container tag.
func Classify(n *html.Node) Category {
	if !dom.IsElement(n) {
		return CategoryOther
	}
	if IsInternal(n) {
		return CategoryInternal
	}
	switch {
	case editableText[n.DataAtom]:
		return CategoryEditableText
	case n.DataAtom == atom.Img:
		return CategoryImage
	case n.DataAtom == atom.Div:
		return CategoryContainer
	}
	return CategoryOther
}

// IsContainer reports whether n is a block container.
func IsContainer(n *html.Node) bool {
	return dom.IsElement(n) && n.DataAtom == atom.Div
}

// HasInternalID reports whether n's own id carries Prefix.
func HasInternalID(n *html.Node) bool {
	return dom.IsElement(n) && strings.HasPrefix(dom.ID(n), Prefix)
}

// IsInternal reports whether n or any of its ancestors is an editor element.
func IsInternal(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if HasInternalID(p) {
			return true
		}
	}
	return false
}

// Describe renders the inspector label for n: tag, then #id, then each
// class prefixed with a dot.
func Describe(n *html.Node) string {
	var sb strings.Builder
	sb.WriteString(dom.Tag(n))
	if id := dom.ID(n); id != "" {
		sb.WriteString("#")
		sb.WriteString(id)
	}
	for _, c := range dom.Classes(n) {
		sb.WriteString(".")
		sb.WriteString(c)
	}
	return sb.String()
}
