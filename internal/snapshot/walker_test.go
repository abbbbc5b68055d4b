package snapshot_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/hazyhaar/domsnap/dom"
	"github.com/hazyhaar/domsnap/internal/snapshot"
	"github.com/hazyhaar/domsnap/internal/synthdom"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func build(t *testing.T, src string, opts snapshot.Options) (*dom.ElementNode, []snapshot.OverlayTarget) {
	t.Helper()
	doc, err := synthdom.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	eng := snapshot.NewEngine(doc, doc, quietLogger())
	tree, targets := eng.Snapshot(doc.Body(), opts)
	if tree == nil {
		t.Fatal("snapshot returned nil tree")
	}
	return tree, targets
}

// indexOrder returns highlight indices in pre-order.
func indexOrder(tree *dom.ElementNode) []int {
	var order []int
	dom.Walk(tree, func(n dom.Node) {
		if el, ok := n.(*dom.ElementNode); ok && el.HighlightIndex != nil {
			order = append(order, *el.HighlightIndex)
		}
	})
	return order
}

func findByXPath(tree *dom.ElementNode, xpath string) *dom.ElementNode {
	var found *dom.ElementNode
	dom.Walk(tree, func(n dom.Node) {
		if el, ok := n.(*dom.ElementNode); ok && el.XPath == xpath && found == nil {
			found = el
		}
	})
	return found
}

func findByTag(tree *dom.ElementNode, tag string) []*dom.ElementNode {
	var out []*dom.ElementNode
	dom.Walk(tree, func(n dom.Node) {
		if el, ok := n.(*dom.ElementNode); ok && el.TagName == tag {
			out = append(out, el)
		}
	})
	return out
}

func TestSnapshotDenseIndicesInPreOrder(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<h1 data-rect="0,0,500,40">Products</h1>
		<button data-rect="0,50,100,30">One</button>
		<a href="/two" data-rect="0,90,100,30">Two</a>
		<div data-rect="0,130,200,100">
			<input type="text" data-rect="10,140,150,24">
		</div>
	</body>`

	tree, targets := build(t, src, snapshot.Options{HighlightElements: true, FocusHighlightIndex: -1})

	order := indexOrder(tree)
	if len(order) != 3 {
		t.Fatalf("indexed nodes: got %d, want 3 (%v)", len(order), order)
	}
	for i, idx := range order {
		if idx != i {
			t.Fatalf("indices not dense pre-order: got %v", order)
		}
	}

	if el := findByXPath(tree, "/body/button"); el == nil || el.HighlightIndex == nil || *el.HighlightIndex != 0 {
		t.Fatalf("button: want index 0, got %+v", el)
	}
	if el := findByXPath(tree, "/body/a"); el == nil || el.HighlightIndex == nil || *el.HighlightIndex != 1 {
		t.Fatalf("a: want index 1, got %+v", el)
	}
	if el := findByXPath(tree, "/body/div/input"); el == nil || el.HighlightIndex == nil || *el.HighlightIndex != 2 {
		t.Fatalf("input: want index 2, got %+v", el)
	}
	if el := findByXPath(tree, "/body/h1"); el == nil || el.HighlightIndex != nil {
		t.Fatalf("h1: want no index, got %+v", el)
	}

	if len(targets) != 3 {
		t.Fatalf("overlay targets: got %d, want 3", len(targets))
	}
}

func TestSnapshotPrunesDeniedTags(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<svg data-rect="0,0,100,100"><circle></circle></svg>
		<script>var x = 1;</script>
		<style>.a{}</style>
		<button data-rect="0,0,100,30">Keep</button>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	for _, tag := range []string{"svg", "circle", "script", "style"} {
		if els := findByTag(tree, tag); len(els) != 0 {
			t.Fatalf("%s: want pruned, found %d nodes", tag, len(els))
		}
	}
	if els := findByTag(tree, "button"); len(els) != 1 {
		t.Fatalf("button: want kept, found %d", len(els))
	}
}

func TestSnapshotPositionalXPath(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<button data-rect="0,0,100,30">First</button>
		<span data-rect="0,40,100,20">middle</span>
		<button data-rect="0,70,100,30">Second</button>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	buttons := findByTag(tree, "button")
	if len(buttons) != 2 {
		t.Fatalf("buttons: got %d, want 2", len(buttons))
	}
	if buttons[0].XPath != "/body/button[1]" {
		t.Errorf("first button xpath: got %q, want /body/button[1]", buttons[0].XPath)
	}
	if buttons[1].XPath != "/body/button[2]" {
		t.Errorf("second button xpath: got %q, want /body/button[2]", buttons[1].XPath)
	}
	if spans := findByTag(tree, "span"); len(spans) != 1 || spans[0].XPath != "/body/span" {
		t.Errorf("span xpath: got %+v, want /body/span without suffix", spans)
	}
}

func TestSnapshotOcclusionDropsIndex(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<button data-rect="100,100,100,40">Buy</button>
		<div data-rect="0,0,1280,720">overlay</div>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	btn := findByTag(tree, "button")[0]
	if !btn.IsInteractive || !btn.IsVisible {
		t.Fatalf("button flags: interactive=%v visible=%v, want true/true", btn.IsInteractive, btn.IsVisible)
	}
	if btn.IsTopElement {
		t.Error("button under overlay: want isTopElement=false")
	}
	if btn.HighlightIndex != nil {
		t.Errorf("button under overlay: want no index, got %d", *btn.HighlightIndex)
	}
}

func TestSnapshotExpansionMinusOneDisablesOcclusion(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<button data-rect="100,100,100,40">Buy</button>
		<div data-rect="0,0,1280,720">overlay</div>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1, ViewportExpansion: -1})

	btn := findByTag(tree, "button")[0]
	if btn.HighlightIndex == nil || *btn.HighlightIndex != 0 {
		t.Fatalf("expansion -1: want button indexed 0, got %+v", btn.HighlightIndex)
	}
}

func TestSnapshotExpansionWindow(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<button data-rect="0,800,100,30">Below fold</button>
	</body>`

	// Outside the unexpanded window: culled.
	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})
	if btn := findByTag(tree, "button")[0]; btn.HighlightIndex != nil {
		t.Fatalf("expansion 0: want no index, got %d", *btn.HighlightIndex)
	}

	// Inside the expanded window; the center is beyond the real viewport,
	// so the hit-test is skipped and the element passes.
	tree, _ = build(t, src, snapshot.Options{FocusHighlightIndex: -1, ViewportExpansion: 200})
	if btn := findByTag(tree, "button")[0]; btn.HighlightIndex == nil {
		t.Fatal("expansion 200: want button indexed")
	}
}

func TestSnapshotIframeContent(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<button data-rect="0,0,100,30">Outer</button>
		<iframe data-rect="100,200,600,400" srcdoc="<body><button data-rect='10,10,80,24'>Inner</button></body>"></iframe>
	</body>`

	tree, targets := build(t, src, snapshot.Options{HighlightElements: true, FocusHighlightIndex: -1})

	buttons := findByTag(tree, "button")
	if len(buttons) != 2 {
		t.Fatalf("buttons: got %d, want 2 (outer + inner)", len(buttons))
	}

	outer, inner := buttons[0], buttons[1]
	if outer.HighlightIndex == nil || *outer.HighlightIndex != 0 {
		t.Fatalf("outer index: got %+v, want 0", outer.HighlightIndex)
	}
	if inner.HighlightIndex == nil || *inner.HighlightIndex != 1 {
		t.Fatalf("inner index: got %+v, want 1 (shared index space)", inner.HighlightIndex)
	}
	if inner.XPath != "/button" {
		t.Errorf("inner xpath: got %q, want /button (restart at frame boundary)", inner.XPath)
	}
	if !inner.IsTopElement {
		t.Error("iframe content: want isTopElement=true without cross-document hit-test")
	}

	// The inner target carries the enclosing iframe offset.
	var innerTarget *snapshot.OverlayTarget
	for i := range targets {
		if targets[i].Index == 1 {
			innerTarget = &targets[i]
		}
	}
	if innerTarget == nil {
		t.Fatal("no overlay target for inner button")
	}
	if innerTarget.OffsetX != 100 || innerTarget.OffsetY != 200 {
		t.Errorf("inner target offset: got (%d,%d), want (100,200)", innerTarget.OffsetX, innerTarget.OffsetY)
	}
}

func TestSnapshotCrossOriginIframeDegrades(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<iframe data-rect="0,0,600,400" data-cross-origin src="https://other.example/"></iframe>
		<button data-rect="0,500,100,30">After</button>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	frames := findByTag(tree, "iframe")
	if len(frames) != 1 {
		t.Fatalf("iframe: got %d, want 1", len(frames))
	}
	if len(frames[0].Children) != 0 {
		t.Errorf("cross-origin iframe: want empty children, got %d", len(frames[0].Children))
	}
	if btn := findByTag(tree, "button")[0]; btn.HighlightIndex == nil || *btn.HighlightIndex != 0 {
		t.Error("walk must continue past an inaccessible frame")
	}

	// The degraded frame serializes with an empty array, not null.
	raw, err := dom.MarshalTree(frames[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"children":[]`) {
		t.Errorf("serialized frame: want \"children\":[], got %s", raw)
	}
}

func TestSnapshotShadowRoot(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<div data-rect="0,0,300,200">
			<template shadowrootmode="open">
				<button data-rect="10,10,100,30">Shadow btn</button>
			</template>
		</div>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	host := findByXPath(tree, "/body/div")
	if host == nil {
		t.Fatal("host div missing")
	}
	if !host.ShadowRoot {
		t.Error("host: want shadowRoot=true")
	}

	buttons := findByTag(tree, "button")
	if len(buttons) != 1 {
		t.Fatalf("shadow button: got %d, want 1", len(buttons))
	}
	btn := buttons[0]
	if btn.XPath != "/button" {
		t.Errorf("shadow xpath: got %q, want /button (restart at shadow boundary)", btn.XPath)
	}
	if btn.HighlightIndex == nil || *btn.HighlightIndex != 0 {
		t.Fatalf("shadow button: want index 0, got %+v", btn.HighlightIndex)
	}
}

func TestSnapshotShadowOcclusionWithinOwnRoot(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<div data-rect="0,0,300,200">
			<template shadowrootmode="open">
				<button data-rect="10,10,100,30">Covered</button>
				<div data-rect="0,0,300,200">cover</div>
			</template>
		</div>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	btn := findByTag(tree, "button")[0]
	if btn.HighlightIndex != nil {
		t.Errorf("covered shadow button: want no index, got %d", *btn.HighlightIndex)
	}
}

func TestSnapshotTextVisibility(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<p data-rect="0,0,200,20">Visible text</p>
		<p data-rect="0,40,200,20" style="visibility:hidden">Hidden text</p>
		<p data-rect="0,80,200,20">   </p>
		<p data-rect="0,2000,200,20">Below fold</p>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	var texts []string
	dom.Walk(tree, func(n dom.Node) {
		if txt, ok := n.(*dom.TextNode); ok {
			texts = append(texts, txt.Text)
		}
	})

	if len(texts) != 1 || texts[0] != "Visible text" {
		t.Fatalf("visible texts: got %v, want [Visible text]", texts)
	}
}

func TestSnapshotCoordinates(t *testing.T) {
	src := `<body data-viewport="1280,720" data-scroll="100,50">
		<button data-rect="10,20,100,30">Btn</button>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	btn := findByTag(tree, "button")[0]
	vc, pc := btn.ViewportCoordinates, btn.PageCoordinates

	if vc.TopLeft.X != 10 || vc.TopLeft.Y != 20 {
		t.Errorf("viewport topLeft: got %+v", vc.TopLeft)
	}
	if pc.TopLeft.X != 110 || pc.TopLeft.Y != 70 {
		t.Errorf("page topLeft: got %+v, want viewport + scroll", pc.TopLeft)
	}
	if vc.Width != 100 || vc.Height != 30 || pc.Width != 100 || pc.Height != 30 {
		t.Errorf("dimensions: viewport %dx%d page %dx%d", vc.Width, vc.Height, pc.Width, pc.Height)
	}
	if vc.Center.X != 60 || vc.Center.Y != 35 {
		t.Errorf("viewport center: got %+v", vc.Center)
	}

	if btn.Viewport.ScrollX != 100 || btn.Viewport.ScrollY != 50 ||
		btn.Viewport.Width != 1280 || btn.Viewport.Height != 720 {
		t.Errorf("viewport state: got %+v", btn.Viewport)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<button data-rect="0,0,100,30">A</button>
		<a href="/b" data-rect="0,40,100,30">B</a>
	</body>`

	first, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})
	second, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	a, err := dom.MarshalTree(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := dom.MarshalTree(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("same document, same options: snapshots differ")
	}
}

func TestSnapshotHighlightGating(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<button data-rect="0,0,100,30">A</button>
		<button data-rect="0,40,100,30">B</button>
	</body>`

	// Highlighting off: indices still assigned, no targets.
	tree, targets := build(t, src, snapshot.Options{FocusHighlightIndex: -1})
	if len(targets) != 0 {
		t.Fatalf("highlight off: got %d targets, want 0", len(targets))
	}
	if got := indexOrder(tree); len(got) != 2 {
		t.Fatalf("highlight off: indices still expected, got %v", got)
	}

	// Focus filters targets to one index.
	_, targets = build(t, src, snapshot.Options{HighlightElements: true, FocusHighlightIndex: 1})
	if len(targets) != 1 || targets[0].Index != 1 {
		t.Fatalf("focus 1: got %+v, want single target with index 1", targets)
	}
}

func TestSnapshotHiddenInteractiveElement(t *testing.T) {
	src := `<body data-viewport="1280,720">
		<a href="/x" style="display:none" data-rect="0,0,100,30">Hidden link</a>
	</body>`

	tree, _ := build(t, src, snapshot.Options{FocusHighlightIndex: -1})

	link := findByTag(tree, "a")[0]
	if !link.IsInteractive {
		t.Error("hidden link: want isInteractive=true")
	}
	if link.IsVisible {
		t.Error("hidden link: want isVisible=false")
	}
	if link.HighlightIndex != nil {
		t.Error("hidden link: want no highlight index")
	}
}
