// Package domsnap turns a live page into an actionable snapshot: a node
// tree of visible content with dense highlight indices over the elements
// an agent can act on, plus viewport and page coordinates for each.
//
// domsnap captures, it does not act. Snapshots are delivered to the
// caller and to configured sinks (stdout, webhook, callback); clicking
// and typing belong to the agent consuming them.
package domsnap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/domsnap/dom"
	"github.com/hazyhaar/domsnap/idgen"
	"github.com/hazyhaar/domsnap/internal/browser"
	"github.com/hazyhaar/domsnap/internal/cdp"
	"github.com/hazyhaar/domsnap/internal/config"
	"github.com/hazyhaar/domsnap/internal/content"
	"github.com/hazyhaar/domsnap/internal/overlay"
	"github.com/hazyhaar/domsnap/internal/sink"
	"github.com/hazyhaar/domsnap/internal/snapshot"
	"github.com/hazyhaar/domsnap/internal/store"
)

// Snapshotter is the top-level orchestrator. It manages the browser, open
// tabs, the history store and the sinks. Create one per process.
type Snapshotter struct {
	cfg      *config.Config
	mgr      *browser.Manager
	sinkR    *sink.Router
	hist     *store.Store // nil when the store is disabled
	digester *content.Digester
	newID    idgen.Generator
	logger   *slog.Logger

	mu   sync.Mutex
	tabs map[string]*browser.Tab // keyed by page ID
}

// CaptureRequest describes one capture. Nil option fields fall back to the
// configured snapshot defaults.
type CaptureRequest struct {
	URL    string `json:"url"`
	PageID string `json:"page_id,omitempty"`

	HighlightElements *bool `json:"highlight_elements,omitempty"`
	FocusIndex        *int  `json:"focus_index,omitempty"`
	ViewportExpansion *int  `json:"viewport_expansion,omitempty"`
	Markdown          *bool `json:"markdown,omitempty"`
}

// New creates a Snapshotter from configuration.
func New(cfg *config.Config, logger *slog.Logger, sinks ...sink.Sink) (*Snapshotter, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	mode := browser.ModeHeadless
	if cfg.Browser.Mode == "headful" {
		mode = browser.ModeHeadful
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:      cfg.Browser.Remote,
		Mode:           mode,
		BlockResources: cfg.Browser.BlockResources,
		XvfbDisplay:    cfg.Browser.XvfbDisplay,
		Logger:         logger,
	})

	s := &Snapshotter{
		cfg:      cfg,
		mgr:      mgr,
		sinkR:    sink.NewRouter(logger, sinks...),
		digester: content.NewDigester(),
		newID:    idgen.Prefixed("snap_", idgen.UUIDv7()),
		logger:   logger,
		tabs:     make(map[string]*browser.Tab),
	}

	if cfg.Store.Path != "" {
		hist, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("domsnap: open store: %w", err)
		}
		s.hist = hist
	}

	return s, nil
}

// Start launches the browser session.
func (s *Snapshotter) Start() error {
	if _, err := s.mgr.Start(); err != nil {
		return fmt.Errorf("domsnap: start browser: %w", err)
	}
	return nil
}

// Capture navigates (or reuses the page's tab), walks the document and
// returns the snapshot. The overlay on the page is replaced to match.
func (s *Snapshotter) Capture(ctx context.Context, req CaptureRequest) (*dom.Snapshot, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("domsnap: capture: url is required")
	}
	opts := s.resolveOptions(req)

	tab, err := s.tab(ctx, req)
	if err != nil {
		return nil, err
	}

	// Stale boxes from a previous capture must not occlude this one.
	if err := overlay.Clear(tab.Page); err != nil {
		s.logger.Debug("domsnap: clear overlay", "error", err)
	}

	provider, err := cdp.NewProvider(tab.Page, s.logger)
	if err != nil {
		return nil, fmt.Errorf("domsnap: capture %s: %w", req.URL, err)
	}

	engine := snapshot.NewEngine(provider, provider, s.logger)
	tree, targets := engine.Snapshot(provider.Body(), opts)

	snap := &dom.Snapshot{
		ID:        s.newID(),
		PageURL:   req.URL,
		PageID:    req.PageID,
		Tree:      tree,
		Timestamp: time.Now().UnixMilli(),
	}
	snap.ElementCount, snap.InteractiveCount = dom.CountNodes(tree)

	if opts.HighlightElements {
		if err := overlay.Render(tab.Page, targets, s.logger); err != nil {
			s.logger.Warn("domsnap: overlay render failed", "error", err)
		}
	}

	if s.wantMarkdown(req) {
		html, err := tab.HTML(ctx)
		if err != nil {
			s.logger.Warn("domsnap: page HTML failed", "error", err)
		} else if md, err := s.digester.Digest(html, req.URL); err != nil {
			s.logger.Warn("domsnap: markdown digest failed", "error", err)
		} else {
			snap.Markdown = md
		}
	}

	if s.hist != nil {
		if err := s.hist.Save(ctx, snap); err != nil {
			s.logger.Error("domsnap: store save failed", "error", err)
		} else if _, err := s.hist.Prune(ctx, s.cfg.Store.MaxRows); err != nil {
			s.logger.Warn("domsnap: store prune failed", "error", err)
		}
	}

	if err := s.sinkR.Send(ctx, snap); err != nil {
		s.logger.Warn("domsnap: sink delivery failed", "error", err)
	}

	s.logger.Info("domsnap: captured",
		"url", req.URL, "id", snap.ID,
		"elements", snap.ElementCount, "interactive", snap.InteractiveCount)
	return snap, nil
}

// ClearOverlay removes the highlight boxes from a page's tab.
func (s *Snapshotter) ClearOverlay(pageID string) error {
	s.mu.Lock()
	tab, ok := s.tabs[pageID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("domsnap: no open tab for page %q", pageID)
	}
	return overlay.Clear(tab.Page)
}

// History lists stored snapshots, newest first. A non-empty pageURL
// filters to that URL.
func (s *Snapshotter) History(ctx context.Context, pageURL string, limit int) ([]store.Meta, error) {
	if s.hist == nil {
		return nil, fmt.Errorf("domsnap: history store is disabled")
	}
	return s.hist.List(ctx, pageURL, limit)
}

// GetSnapshot loads one stored snapshot by ID, tree included.
func (s *Snapshotter) GetSnapshot(ctx context.Context, id string) (*dom.Snapshot, error) {
	if s.hist == nil {
		return nil, fmt.Errorf("domsnap: history store is disabled")
	}
	return s.hist.Get(ctx, id)
}

// CloseTab closes one page's tab.
func (s *Snapshotter) CloseTab(pageID string) error {
	s.mu.Lock()
	tab, ok := s.tabs[pageID]
	delete(s.tabs, pageID)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return tab.Close()
}

// Close shuts down tabs, the browser, the store and the sinks.
func (s *Snapshotter) Close() {
	s.mu.Lock()
	for id, tab := range s.tabs {
		tab.Close()
		s.logger.Debug("domsnap: closed tab", "id", id)
	}
	s.tabs = make(map[string]*browser.Tab)
	s.mu.Unlock()

	s.sinkR.Close()
	if s.hist != nil {
		s.hist.Close()
	}
	s.mgr.Close()
}

// tab returns the open tab for the request's page, opening and navigating
// one when needed. A tab is reused only when it is already on the
// requested URL.
func (s *Snapshotter) tab(ctx context.Context, req CaptureRequest) (*browser.Tab, error) {
	key := req.PageID
	if key == "" {
		key = req.URL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tab, ok := s.tabs[key]; ok && tab.PageURL == req.URL {
		return tab, nil
	}
	if old, ok := s.tabs[key]; ok {
		old.Close()
		delete(s.tabs, key)
	}

	tab, err := browser.OpenTab(ctx, s.mgr, req.URL, req.PageID)
	if err != nil {
		return nil, fmt.Errorf("domsnap: open tab: %w", err)
	}
	s.tabs[key] = tab
	return tab, nil
}

func (s *Snapshotter) resolveOptions(req CaptureRequest) snapshot.Options {
	opts := snapshot.Options{
		HighlightElements:   *s.cfg.Snapshot.HighlightElements,
		FocusHighlightIndex: *s.cfg.Snapshot.FocusIndex,
		ViewportExpansion:   *s.cfg.Snapshot.ViewportExpansion,
	}
	if req.HighlightElements != nil {
		opts.HighlightElements = *req.HighlightElements
	}
	if req.FocusIndex != nil {
		opts.FocusHighlightIndex = *req.FocusIndex
	}
	if req.ViewportExpansion != nil {
		opts.ViewportExpansion = *req.ViewportExpansion
	}
	return opts
}

func (s *Snapshotter) wantMarkdown(req CaptureRequest) bool {
	if req.Markdown != nil {
		return *req.Markdown
	}
	return s.cfg.Snapshot.Markdown
}
