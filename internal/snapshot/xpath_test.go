package snapshot

import "testing"

type fakeEl struct{ tag string }

func (f *fakeEl) isNode() {}

func (f *fakeEl) Tag() string { return f.tag }

func (f *fakeEl) Attrs() map[string]string { return nil }

func (f *fakeEl) Attr(string) (string, bool) { return "", false }

func (f *fakeEl) Parent() Element { return nil }

func (f *fakeEl) Children() []Node { return nil }

func (f *fakeEl) ShadowChildren() ([]Node, bool) { return nil, false }

func (f *fakeEl) FrameBody() (Element, error) { return nil, nil }

var _ Element = (*fakeEl)(nil)

func TestChildXPath(t *testing.T) {
	div := &fakeEl{tag: "div"}
	btn1 := &fakeEl{tag: "button"}
	btn2 := &fakeEl{tag: "button"}
	span := &fakeEl{tag: "span"}
	siblings := []Node{div, btn1, btn2, span}

	cases := []struct {
		name   string
		parent string
		el     Element
		want   string
	}{
		{"unique tag no suffix", "/body", span, "/body/span"},
		{"first of two", "/body", btn1, "/body/button[1]"},
		{"second of two", "/body", btn2, "/body/button[2]"},
		{"restart at boundary", "", btn2, "/button[2]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := childXPath(tc.parent, tc.el, siblings)
			if got != tc.want {
				t.Errorf("childXPath: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestChildXPathTextSiblingsIgnored(t *testing.T) {
	btn := &fakeEl{tag: "button"}
	siblings := []Node{&fakeText{}, btn, &fakeText{}}

	got := childXPath("/body", btn, siblings)
	if got != "/body/button" {
		t.Errorf("text siblings must not force a positional suffix: got %q", got)
	}
}

type fakeText struct{}

func (f *fakeText) isNode() {}

func (f *fakeText) Data() string { return "x" }

func (f *fakeText) ParentElement() Element { return nil }
