package snapshot

import (
	"math"

	"github.com/hazyhaar/domsnap/dom"
)

// resolveFrames derives the two coordinate frames of an element from its
// raw box: the viewport frame is the box as rendered (negative when
// scrolled past), the page frame is the same box shifted by the current
// scroll offsets. Every value is rounded to the nearest pixel.
func resolveFrames(box Rect, scrollX, scrollY int) (viewport, page dom.Frame) {
	viewport = frameFromRect(box.X, box.Y, box.Width, box.Height)
	page = frameFromRect(box.X+float64(scrollX), box.Y+float64(scrollY), box.Width, box.Height)
	return viewport, page
}

func frameFromRect(x, y, w, h float64) dom.Frame {
	left := px(x)
	top := px(y)
	right := px(x + w)
	bottom := px(y + h)
	return dom.Frame{
		TopLeft:     dom.Point{X: left, Y: top},
		TopRight:    dom.Point{X: right, Y: top},
		BottomLeft:  dom.Point{X: left, Y: bottom},
		BottomRight: dom.Point{X: right, Y: bottom},
		Center:      dom.Point{X: px(x + w/2), Y: px(y + h/2)},
		Width:       px(w),
		Height:      px(h),
	}
}

func px(v float64) int {
	return int(math.Round(v))
}

// center returns the visual center of a raw box, unrounded.
func center(box Rect) (x, y float64) {
	return box.X + box.Width/2, box.Y + box.Height/2
}

// intersects reports whether the scroll-adjusted box touches the window
// [x0,y0]..[x1,y1].
func intersects(box Rect, x0, y0, x1, y1 float64) bool {
	return box.X < x1 && box.X+box.Width > x0 &&
		box.Y < y1 && box.Y+box.Height > y0
}
