// Package overlay draws the highlight boxes for qualifying nodes: one
// reused container in the main document at maximum stacking order, a
// bordered semi-transparent box and a numeric label per node. The payload
// is computed in Go; the embedded JS only paints it.
package overlay

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/domsnap/internal/snapshot"
)

//go:embed overlay.js
var overlayJS string

// palette cycles by highlight index. Order is part of the visual contract:
// index 0 is always the first color.
var palette = []string{
	"#FF595E",
	"#FFCA3A",
	"#8AC926",
	"#1982C4",
	"#6A4C93",
	"#FF924C",
	"#52A675",
	"#7B2CBF",
}

// Box is one drawable highlight in main-document viewport coordinates.
type Box struct {
	Index  int    `json:"index"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Color  string `json:"color"`
}

// BuildBoxes translates overlay targets into drawable boxes: node viewport
// coordinates shifted by the enclosing-iframe offsets, colored by
// index mod palette size.
func BuildBoxes(targets []snapshot.OverlayTarget) []Box {
	boxes := make([]Box, 0, len(targets))
	for _, t := range targets {
		frame := t.Node.ViewportCoordinates
		boxes = append(boxes, Box{
			Index:  t.Index,
			X:      frame.TopLeft.X + t.OffsetX,
			Y:      frame.TopLeft.Y + t.OffsetY,
			Width:  frame.Width,
			Height: frame.Height,
			Color:  ColorFor(t.Index),
		})
	}
	return boxes
}

// ColorFor returns the palette color for an index.
func ColorFor(index int) string {
	if index < 0 {
		index = 0
	}
	return palette[index%len(palette)]
}

// Render rebuilds the overlay container with the given targets. The
// container is created lazily on first use and reused afterwards; each
// call replaces its contents wholesale.
func Render(page *rod.Page, targets []snapshot.OverlayTarget, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	boxes := BuildBoxes(targets)

	if _, err := page.Eval(overlayJS); err != nil {
		return fmt.Errorf("overlay: inject renderer: %w", err)
	}
	if _, err := page.Eval(`(boxes) => window.__domsnap_render(boxes)`, boxes); err != nil {
		return fmt.Errorf("overlay: render: %w", err)
	}

	logger.Debug("overlay: rendered", "boxes", len(boxes))
	return nil
}

// Clear removes the overlay container. Safe to call when none exists.
func Clear(page *rod.Page) error {
	_, err := page.Eval(`() => {
		const c = document.getElementById('domsnap-overlay');
		if (c) c.remove();
	}`)
	if err != nil {
		return fmt.Errorf("overlay: clear: %w", err)
	}
	return nil
}
