package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hazyhaar/domsnap/dom"
)

func testSnapshot() *dom.Snapshot {
	return &dom.Snapshot{
		ID:      "snap_x",
		PageURL: "https://example.com",
		Tree:    &dom.ElementNode{TagName: "body", XPath: "/body"},
	}
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStdoutSinkWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdout(&buf)

	if err := s.Send(context.Background(), testSnapshot()); err != nil {
		t.Fatal(err)
	}

	var got dom.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not one JSON document: %v", err)
	}
	if got.ID != "snap_x" {
		t.Errorf("id: got %q", got.ID)
	}
	if buf.Bytes()[buf.Len()-1] != '\n' {
		t.Error("line not newline-terminated")
	}
}

func TestWebhookSinkPosts(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q", ct)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, WithWebhookLogger(quiet()))
	if err := w.Send(context.Background(), testSnapshot()); err != nil {
		t.Fatal(err)
	}

	var got dom.Snapshot
	if err := json.Unmarshal(gotBody, &got); err != nil {
		t.Fatal(err)
	}
	if got.PageURL != "https://example.com" {
		t.Errorf("payload: got %+v", got)
	}
}

func TestWebhookSinkRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, WithWebhookRetries(1), WithWebhookLogger(quiet()))
	if err := w.Send(context.Background(), testSnapshot()); err == nil {
		t.Fatal("want error after exhausted retries")
	}
	if calls.Load() != 2 {
		t.Errorf("attempts: got %d, want 2 (initial + 1 retry)", calls.Load())
	}
}

func TestCallbackSink(t *testing.T) {
	var seen *dom.Snapshot
	c := NewCallback(func(_ context.Context, snap *dom.Snapshot) error {
		seen = snap
		return nil
	})

	snap := testSnapshot()
	if err := c.Send(context.Background(), snap); err != nil {
		t.Fatal(err)
	}
	if seen != snap {
		t.Error("callback did not receive the snapshot")
	}

	// Nil handler is a no-op, not a panic.
	if err := NewCallback(nil).Send(context.Background(), snap); err != nil {
		t.Fatal(err)
	}
}

func TestRouterFansOutPastFailures(t *testing.T) {
	errBoom := errors.New("boom")
	var delivered int
	failing := NewCallback(func(context.Context, *dom.Snapshot) error { return errBoom })
	counting := NewCallback(func(context.Context, *dom.Snapshot) error {
		delivered++
		return nil
	})

	r := NewRouter(quiet(), failing, counting)
	err := r.Send(context.Background(), testSnapshot())
	if !errors.Is(err, errBoom) {
		t.Errorf("error: got %v, want first failure", err)
	}
	if delivered != 1 {
		t.Errorf("second sink deliveries: got %d, want 1", delivered)
	}
}
