package dom

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/css/scanner"
	"golang.org/x/net/html"
)

// declaration is one inline style entry. raw holds entries that are not
// prop: value pairs; they are written back untouched.
type declaration struct {
	prop  string
	value string
	raw   string
}

// parseStyle splits an inline style into declarations. Separators inside
// strings, url() and parentheses do not split. Anything the scanner cannot
// tokenize is kept verbatim in the current declaration.
func parseStyle(s string) []declaration {
	var (
		decls    []declaration
		cur      strings.Builder
		name     strings.Builder
		colon    = -1
		depth    int
		consumed int
	)
	flush := func() {
		text, prop, at := cur.String(), strings.ToLower(strings.TrimSpace(name.String())), colon
		cur.Reset()
		name.Reset()
		colon = -1
		switch {
		case strings.TrimSpace(text) == "":
		case at < 0 || prop == "":
			decls = append(decls, declaration{raw: strings.TrimSpace(text)})
		default:
			decls = append(decls, declaration{prop: prop, value: strings.TrimSpace(text[at+1:])})
		}
	}

	sc := scanner.New(s)
	for {
		tok := sc.Next()
		if tok.Type == scanner.TokenEOF {
			break
		}
		if tok.Type == scanner.TokenError {
			cur.WriteString(s[consumed:])
			break
		}
		consumed += len(tok.Value)

		switch tok.Type {
		case scanner.TokenFunction:
			depth++
		case scanner.TokenChar:
			switch tok.Value {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth > 0 {
					depth--
				}
			case ":":
				if depth == 0 && colon < 0 {
					colon = cur.Len()
					cur.WriteString(tok.Value)
					continue
				}
			case ";":
				if depth == 0 {
					flush()
					continue
				}
			}
		}
		if colon < 0 && tok.Type != scanner.TokenComment {
			name.WriteString(tok.Value)
		}
		cur.WriteString(tok.Value)
	}
	flush()
	return decls
}

func formatStyle(decls []declaration) string {
	var sb strings.Builder
	for i, d := range decls {
		if i > 0 {
			sb.WriteString(" ")
		}
		if d.prop == "" {
			sb.WriteString(d.raw)
		} else {
			sb.WriteString(d.prop)
			sb.WriteString(": ")
			sb.WriteString(d.value)
		}
		sb.WriteString(";")
	}
	return sb.String()
}

// Style returns the inline value of prop on n, or "".
func Style(n *html.Node, prop string) string {
	raw, ok := Attr(n, "style")
	if !ok {
		return ""
	}
	prop = strings.ToLower(prop)
	for _, d := range parseStyle(raw) {
		if d.prop != "" && d.prop == prop {
			return d.value
		}
	}
	return ""
}

// SetStyle writes an inline property on n. An empty value removes it, and
// the style attribute disappears once it holds no declarations.
func SetStyle(n *html.Node, prop, value string) {
	raw, _ := Attr(n, "style")
	decls := parseStyle(raw)
	prop = strings.ToLower(prop)

	found := false
	out := decls[:0]
	for _, d := range decls {
		if d.prop == "" || d.prop != prop {
			out = append(out, d)
			continue
		}
		found = true
		if value != "" {
			out = append(out, declaration{prop: prop, value: value})
		}
	}
	if !found && value != "" {
		out = append(out, declaration{prop: prop, value: value})
	}

	if len(out) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", formatStyle(out))
}

// Px formats a CSS pixel length.
func Px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// StyleSnapshot captures the inline properties the structural-edit highlight
// overwrites, along with the whole style attribute. Restore writes them back,
// removing properties that were unset when the snapshot was taken.
type StyleSnapshot struct {
	Border    string
	BoxShadow string

	attr    string
	hasAttr bool
}

// Snapshot reads the current inline border and box-shadow of n.
func Snapshot(n *html.Node) StyleSnapshot {
	attr, ok := Attr(n, "style")
	return StyleSnapshot{
		Border:    Style(n, "border"),
		BoxShadow: Style(n, "box-shadow"),
		attr:      attr,
		hasAttr:   ok,
	}
}

// Restore writes the snapshot onto n. When nothing else in the style changed
// meanwhile, the original attribute text comes back byte for byte.
func (s StyleSnapshot) Restore(n *html.Node) {
	SetStyle(n, "border", s.Border)
	SetStyle(n, "box-shadow", s.BoxShadow)

	cur, _ := Attr(n, "style")
	if !slices.Equal(parseStyle(cur), parseStyle(s.attr)) {
		return
	}
	if s.hasAttr {
		SetAttr(n, "style", s.attr)
	} else {
		RemoveAttr(n, "style")
	}
}
