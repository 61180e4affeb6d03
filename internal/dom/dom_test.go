package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

const page = `<!DOCTYPE html>
<html><head><title>T</title></head>
<body><div id="hero" class="a b"><p>Hello <b>there</b></p></div><div id="second"><img src="x.png"></div></body>
</html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s, "http://example.com/page")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return doc
}

func TestParseFindsBody(t *testing.T) {
	doc := mustParse(t, page)
	if Tag(doc.Body) != "body" {
		t.Fatalf("Body tag = %q, want body", Tag(doc.Body))
	}
	if doc.BaseURI != "http://example.com/page" {
		t.Errorf("BaseURI = %q", doc.BaseURI)
	}
}

func TestElementByIDAndClasses(t *testing.T) {
	doc := mustParse(t, page)
	hero := doc.ElementByID("hero")
	if hero == nil {
		t.Fatal("hero not found")
	}
	got := Classes(hero)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Classes = %v, want [a b]", got)
	}
	if doc.ElementByID("") != nil {
		t.Error("empty id should not match")
	}
	if Text(hero) != "Hello there" {
		t.Errorf("Text = %q", Text(hero))
	}
}

func TestStyleSetAndRemove(t *testing.T) {
	doc := mustParse(t, page)
	n := doc.ElementByID("hero")

	SetStyle(n, "border", "1px solid red")
	SetStyle(n, "Top", "4px")
	if got := Style(n, "border"); got != "1px solid red" {
		t.Errorf("border = %q", got)
	}
	if got := Style(n, "top"); got != "4px" {
		t.Errorf("top = %q", got)
	}

	SetStyle(n, "border", "2px dashed blue")
	raw, _ := Attr(n, "style")
	if raw != "border: 2px dashed blue; top: 4px;" {
		t.Errorf("style attr = %q", raw)
	}

	SetStyle(n, "border", "")
	SetStyle(n, "top", "")
	if _, ok := Attr(n, "style"); ok {
		t.Error("style attribute should be removed once empty")
	}
}

func TestStyleSnapshotRestore(t *testing.T) {
	tests := []struct {
		name  string
		style string
	}{
		{"no inline style", ""},
		{"existing border", "border: 1px solid black; color: red;"},
		{"existing shadow", "box-shadow: 0 0 1px #000;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, page)
			n := doc.ElementByID("hero")
			if tt.style != "" {
				SetAttr(n, "style", tt.style)
			}
			before := Snapshot(n)

			SetStyle(n, "border", "2px solid #34a853")
			SetStyle(n, "box-shadow", "0 0 10px green")
			before.Restore(n)

			if got := Snapshot(n); got != before {
				t.Errorf("after restore = %+v, want %+v", got, before)
			}
			if tt.style == "" {
				if _, ok := Attr(n, "style"); ok {
					t.Error("restore should leave no style attribute behind")
				}
			}
		})
	}
}

func TestStyleKeepsSeparatorsInsideValues(t *testing.T) {
	tests := []struct {
		name  string
		style string
		prop  string
		want  string
	}{
		{"data url", "background: url(data:image/png;base64,AAAA); border: 1px solid red;", "background", "url(data:image/png;base64,AAAA)"},
		{"quoted font", `font-family: "a;b", serif; color: red`, "font-family", `"a;b", serif`},
		{"colon in url", "background-image: url(http://x.test/a.png)", "background-image", "url(http://x.test/a.png)"},
		{"function args", "color: rgb(1, 2, 3); top: 0", "color", "rgb(1, 2, 3)"},
		{"important", "color: red !important;", "color", "red !important"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, page)
			n := doc.ElementByID("hero")
			SetAttr(n, "style", tt.style)

			if got := Style(n, tt.prop); got != tt.want {
				t.Errorf("Style(%s) = %q, want %q", tt.prop, got, tt.want)
			}

			SetStyle(n, "box-shadow", "0 0 10px green")
			if got := Style(n, tt.prop); got != tt.want {
				t.Errorf("after SetStyle, Style(%s) = %q, want %q", tt.prop, got, tt.want)
			}
		})
	}
}

func TestStyleRestoreIsByteExact(t *testing.T) {
	tests := []string{
		"background: url(data:image/png;base64,AAAA); border: 1px solid red;",
		`font-family:"a;b";border:0`,
		"color: red",
		"border: 1px solid black; /* note */ color: red;",
	}

	for _, style := range tests {
		t.Run(style, func(t *testing.T) {
			doc := mustParse(t, page)
			n := doc.ElementByID("hero")
			SetAttr(n, "style", style)
			before := Snapshot(n)

			SetStyle(n, "border", "2px solid #34a853")
			SetStyle(n, "box-shadow", "0 0 10px green")
			before.Restore(n)

			if got, _ := Attr(n, "style"); got != style {
				t.Errorf("style after restore = %q, want %q", got, style)
			}
		})
	}
}

func TestCloneIsDeepAndDetached(t *testing.T) {
	doc := mustParse(t, page)
	hero := doc.ElementByID("hero")
	c := Clone(hero)

	if c.Parent != nil || c.NextSibling != nil {
		t.Fatal("clone must be detached")
	}
	SetAttr(c, "id", "other")
	if ID(hero) != "hero" {
		t.Error("clone shares attribute storage with original")
	}
	if Text(c) != "Hello there" {
		t.Errorf("clone text = %q", Text(c))
	}
}

func TestInsertAfterAndDetach(t *testing.T) {
	doc := mustParse(t, page)
	hero := doc.ElementByID("hero")
	second := doc.ElementByID("second")

	c := Clone(hero)
	SetAttr(c, "id", "copy")
	if !InsertAfter(hero, c) {
		t.Fatal("InsertAfter returned false")
	}
	if hero.NextSibling != c || c.NextSibling != second {
		t.Error("clone not placed directly after hero")
	}

	Detach(c)
	if c.Parent != nil || hero.NextSibling != second {
		t.Error("Detach did not restore sibling order")
	}
	if InsertAfter(c, Clone(hero)) {
		t.Error("InsertAfter on detached ref should fail")
	}
}

func TestPathResolveRoundTrip(t *testing.T) {
	doc := mustParse(t, page)
	var check func(n *html.Node)
	check = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			p, ok := doc.Path(c)
			if !ok {
				t.Fatalf("no path for <%s>", c.Data)
			}
			if got := doc.Resolve(p); got != c {
				t.Errorf("Resolve(%q) = %v, want <%s>", p, got, c.Data)
			}
			check(c)
		}
	}
	check(doc.Body)

	img := doc.ElementByID("second").FirstChild
	if p, _ := doc.Path(img); p != "1.0" {
		t.Errorf("img path = %q, want 1.0", p)
	}
	if doc.Resolve("9") != nil || doc.Resolve("x") != nil {
		t.Error("bad paths should resolve to nil")
	}
	if _, ok := doc.Path(doc.Root); ok {
		t.Error("root is not under body")
	}
}

func TestBodyMarkupStripsWithoutTouchingLiveTree(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="keep"><span id="_x_inner">x</span>ok</div><div id="_x_top"></div></body></html>`)
	strip := func(n *html.Node) bool { return strings.HasPrefix(ID(n), "_x_") }

	got, err := doc.BodyMarkup(strip)
	if err != nil {
		t.Fatalf("BodyMarkup: %v", err)
	}
	if got != `<div id="keep">ok</div>` {
		t.Errorf("markup = %q", got)
	}
	if doc.ElementByID("_x_inner") == nil || doc.ElementByID("_x_top") == nil {
		t.Error("live tree was modified")
	}
}

func TestSetInnerHTML(t *testing.T) {
	doc := mustParse(t, page)
	p := doc.ElementByID("hero").FirstChild
	if err := SetInnerHTML(p, "New <em>text</em>"); err != nil {
		t.Fatalf("SetInnerHTML: %v", err)
	}
	got, _ := InnerHTML(p)
	if got != "New <em>text</em>" {
		t.Errorf("inner = %q", got)
	}
}

func TestGeometryHitTestPicksDeepest(t *testing.T) {
	doc := mustParse(t, page)
	hero := doc.ElementByID("hero")
	p := hero.FirstChild

	g := NewGeometry()
	g.SetRect(hero, Rect{Top: 0, Left: 0, Width: 200, Height: 100})
	g.SetRect(p, Rect{Top: 10, Left: 10, Width: 50, Height: 20})

	if got := g.HitTest(15, 15, nil); got != p {
		t.Errorf("HitTest inner = %v, want <p>", got)
	}
	if got := g.HitTest(150, 80, nil); got != hero {
		t.Errorf("HitTest outer = %v, want hero", got)
	}
	if got := g.HitTest(15, 15, func(n *html.Node) bool { return n == p }); got != hero {
		t.Errorf("HitTest with skip = %v, want hero", got)
	}
	if got := g.HitTest(500, 500, nil); got != nil {
		t.Errorf("HitTest outside = %v, want nil", got)
	}

	g.ResetRects()
	if _, ok := g.Rect(hero); ok {
		t.Error("ResetRects kept a box")
	}
}

func TestPx(t *testing.T) {
	tests := map[float64]string{40: "40px", 20.5: "20.5px", 0: "0px", -3: "-3px"}
	for in, want := range tests {
		if got := Px(in); got != want {
			t.Errorf("Px(%v) = %q, want %q", in, got, want)
		}
	}
}
