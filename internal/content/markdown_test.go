package content

import (
	"strings"
	"testing"
)

func TestDigest(t *testing.T) {
	d := NewDigester()

	html := `<html><body>
		<h1>Catalog</h1>
		<p>Browse our <a href="/products">products</a>.</p>
	</body></html>`

	md, err := d.Digest(html, "https://shop.example")
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if !strings.Contains(md, "# Catalog") {
		t.Errorf("heading missing: %q", md)
	}
	if !strings.Contains(md, "products") {
		t.Errorf("link text missing: %q", md)
	}
	if strings.HasSuffix(md, "\n") {
		t.Error("digest must be trimmed")
	}
}

func TestDigestEmpty(t *testing.T) {
	d := NewDigester()
	md, err := d.Digest("", "https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	if md != "" {
		t.Errorf("empty input: got %q", md)
	}
}

func TestDigesterReusable(t *testing.T) {
	d := NewDigester()
	for range 3 {
		if _, err := d.Digest("<p>again</p>", ""); err != nil {
			t.Fatal(err)
		}
	}
}
