package domsnap

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domsnap/dom"
	"github.com/hazyhaar/domsnap/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSnapshotter builds a Snapshotter with a temp-file store and no
// running browser. Handlers that never touch the browser are testable
// this way.
func newTestSnapshotter(t *testing.T) *Snapshotter {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Store.Path = filepath.Join(t.TempDir(), "snaps.db")

	s, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func seedSnapshot(t *testing.T, s *Snapshotter, id string) *dom.Snapshot {
	t.Helper()
	idx := 0
	snap := &dom.Snapshot{
		ID:      id,
		PageURL: "https://example.com",
		Tree: &dom.ElementNode{
			TagName: "body",
			XPath:   "/body",
			Children: []dom.Node{
				&dom.ElementNode{
					TagName:        "a",
					XPath:          "/body/a",
					IsInteractive:  true,
					IsVisible:      true,
					IsTopElement:   true,
					HighlightIndex: &idx,
				},
			},
		},
		Timestamp: 1000,
	}
	snap.ElementCount, snap.InteractiveCount = dom.CountNodes(snap.Tree)
	if err := s.hist.Save(context.Background(), snap); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return snap
}

func TestHTTPHistoryEmpty(t *testing.T) {
	s := newTestSnapshotter(t)
	srv := httptest.NewServer(s.HTTPRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshots")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var metas []store.Meta
	if err := json.NewDecoder(resp.Body).Decode(&metas); err != nil {
		t.Fatal(err)
	}
	if len(metas) != 0 {
		t.Errorf("metas: got %d, want 0", len(metas))
	}
}

func TestHTTPHistoryListsSeeded(t *testing.T) {
	s := newTestSnapshotter(t)
	seedSnapshot(t, s, "snap_h1")
	srv := httptest.NewServer(s.HTTPRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshots?page_url=https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var metas []store.Meta
	if err := json.NewDecoder(resp.Body).Decode(&metas); err != nil {
		t.Fatal(err)
	}
	if len(metas) != 1 || metas[0].ID != "snap_h1" {
		t.Errorf("metas: got %+v", metas)
	}
	if metas[0].InteractiveCount != 1 {
		t.Errorf("interactive count: got %d, want 1", metas[0].InteractiveCount)
	}
}

func TestHTTPHistoryBadLimit(t *testing.T) {
	s := newTestSnapshotter(t)
	srv := httptest.NewServer(s.HTTPRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshots?limit=abc")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestHTTPGetSnapshot(t *testing.T) {
	s := newTestSnapshotter(t)
	want := seedSnapshot(t, s, "snap_g1")
	srv := httptest.NewServer(s.HTTPRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshots/snap_g1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var got dom.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID != want.ID || got.PageURL != want.PageURL {
		t.Errorf("snapshot: got %+v", got)
	}
	if got.Tree == nil || len(got.Tree.Children) != 1 {
		t.Fatalf("tree not restored: %+v", got.Tree)
	}
}

func TestHTTPGetSnapshotMissing(t *testing.T) {
	s := newTestSnapshotter(t)
	srv := httptest.NewServer(s.HTTPRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshots/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestHTTPHistoryDisabledStore(t *testing.T) {
	cfg := DefaultConfig()
	s, err := New(cfg, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	srv := httptest.NewServer(s.HTTPRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshots")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want 503", resp.StatusCode)
	}
}

func TestHTTPCaptureBadBody(t *testing.T) {
	s := newTestSnapshotter(t)
	srv := httptest.NewServer(s.HTTPRouter())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/snapshot", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestBuildSinks(t *testing.T) {
	cfgs := []SinkConfig{
		{Type: "stdout"},
		{Type: "webhook", URL: "https://hooks.example/snap"},
		{Type: "kafka"}, // unknown, skipped
	}
	sinks := BuildSinks(cfgs, testLogger())
	if len(sinks) != 2 {
		t.Fatalf("sinks: got %d, want 2", len(sinks))
	}
}

func TestResolveOptionsOverrides(t *testing.T) {
	s := newTestSnapshotter(t)

	opts := s.resolveOptions(CaptureRequest{URL: "https://example.com"})
	if !opts.HighlightElements || opts.FocusHighlightIndex != -1 || opts.ViewportExpansion != 0 {
		t.Errorf("defaults: got %+v", opts)
	}

	off := false
	focus := 2
	exp := -1
	opts = s.resolveOptions(CaptureRequest{
		URL:               "https://example.com",
		HighlightElements: &off,
		FocusIndex:        &focus,
		ViewportExpansion: &exp,
	})
	if opts.HighlightElements || opts.FocusHighlightIndex != 2 || opts.ViewportExpansion != -1 {
		t.Errorf("overrides: got %+v", opts)
	}
}
