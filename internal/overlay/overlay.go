// Package overlay converts relative detection geometry into pixel
// rectangles for a concrete rendering surface.
package overlay

import (
	"math"

	"github.com/aacsoares/product-damage-detection-ui/internal/vision"
)

// Rect is an absolute-positioned rectangle in surface pixels.
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Map scales a relative bounding box onto a surface of the given pixel
// size. The mapping is linear: left*W, top*H, width*W, height*H,
// rounded to whole pixels.
//
// ok is false when the surface has no measured size yet (zero or
// negative dimensions, e.g. before the image finished decoding);
// callers must render nothing in that case rather than draw a
// rectangle computed against a missing size.
func Map(box vision.BoundingBox, width, height int) (Rect, bool) {
	if width <= 0 || height <= 0 {
		return Rect{}, false
	}
	return Rect{
		Left:   int(math.Round(box.Left * float64(width))),
		Top:    int(math.Round(box.Top * float64(height))),
		Width:  int(math.Round(box.Width * float64(width))),
		Height: int(math.Round(box.Height * float64(height))),
	}, true
}

// Fit returns the largest size not exceeding maxW x maxH that keeps
// the aspect ratio of a naturalW x naturalH image. Returns 0,0 when
// either the image or the surface has no size.
func Fit(naturalW, naturalH, maxW, maxH int) (int, int) {
	if naturalW <= 0 || naturalH <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}

	w := maxW
	h := w * naturalH / naturalW
	if h > maxH {
		h = maxH
		w = h * naturalW / naturalH
	}

	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
