// Package annotate burns detection boxes and labels into an image.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/aacsoares/product-damage-detection-ui/internal/overlay"
	"github.com/aacsoares/product-damage-detection-ui/internal/vision"
)

const lineThickness = 3

// tierColors maps a confidence tier to its box color.
var tierColors = map[vision.Tier]color.RGBA{
	vision.TierHigh:   {R: 72, G: 249, B: 10, A: 255},  // #48F90A
	vision.TierMedium: {R: 255, G: 178, B: 29, A: 255}, // #FFB21D
	vision.TierLow:    {R: 255, G: 56, B: 56, A: 255},  // #FF3838
}

// TierColor returns the RGBA color used for a confidence tier.
func TierColor(t vision.Tier) color.RGBA {
	return tierColors[t]
}

// Render returns a copy of img with a tier-colored rectangle and a
// "tagName probability" label strip for every prediction. The source
// image is not modified.
func Render(img image.Image, predictions []vision.Prediction) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	// Boxes first, labels after, so labels stay on top when boxes
	// overlap.
	for _, p := range predictions {
		rect, ok := overlay.Map(p.BoundingBox, bounds.Dx(), bounds.Dy())
		if !ok {
			continue
		}
		drawBox(out, rect, tierColors[vision.TierFor(p.Probability)])
	}
	for _, p := range predictions {
		rect, ok := overlay.Map(p.BoundingBox, bounds.Dx(), bounds.Dy())
		if !ok {
			continue
		}
		label := fmt.Sprintf("%s %.2f", p.TagName, p.Probability)
		drawLabel(out, rect, label, tierColors[vision.TierFor(p.Probability)])
	}
	return out
}

// drawBox paints the four edges of rect as filled strips.
func drawBox(dst *image.RGBA, box overlay.Rect, clr color.RGBA) {
	left, top := box.Left, box.Top
	right, bottom := box.Left+box.Width, box.Top+box.Height
	src := &image.Uniform{C: clr}

	edges := []image.Rectangle{
		image.Rect(left, top, right, top+lineThickness),
		image.Rect(left, bottom-lineThickness, right, bottom),
		image.Rect(left, top, left+lineThickness, bottom),
		image.Rect(right-lineThickness, top, right, bottom),
	}
	for _, edge := range edges {
		draw.Draw(dst, edge.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

// drawLabel paints a filled strip above the box top edge and writes
// the label text on it. When the box touches the image top, the strip
// drops inside the box instead.
func drawLabel(dst *image.RGBA, box overlay.Rect, text string, clr color.RGBA) {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()

	stripHeight := face.Height + 4
	top := box.Top - stripHeight
	if top < 0 {
		top = box.Top
	}

	strip := image.Rect(box.Left, top, box.Left+textWidth+8, top+stripHeight)
	draw.Draw(dst, strip.Intersect(dst.Bounds()), &image.Uniform{C: clr}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(box.Left+4, top+face.Ascent+2),
	}
	drawer.DrawString(text)
}
