package viewer

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"

	"github.com/aacsoares/product-damage-detection-ui/internal/overlay"
	"github.com/aacsoares/product-damage-detection-ui/internal/session"
	"github.com/aacsoares/product-damage-detection-ui/internal/vision"
)

// cell is one terminal character of the image canvas.
type cell struct {
	ch   rune
	fg   lipgloss.Color
	bg   lipgloss.Color
	bold bool
}

// boxGlyphs is one weight of box-drawing characters.
type boxGlyphs struct {
	horizontal  rune
	vertical    rune
	topLeft     rune
	topRight    rune
	bottomLeft  rune
	bottomRight rune
}

var (
	lightBox = boxGlyphs{'─', '│', '┌', '┐', '└', '┘'}
	heavyBox = boxGlyphs{'━', '┃', '┏', '┓', '┗', '┛'}
)

func tierColor(t vision.Tier) lipgloss.Color {
	switch t {
	case vision.TierHigh:
		return colorHigh
	case vision.TierMedium:
		return colorMedium
	default:
		return colorLow
	}
}

// renderCanvas draws the photo as half-block cells with bounding-box
// overlays into a cols x rows character area.
//
// One cell covers one image column and two image rows ('▀' with
// distinct foreground and background), so the canvas is a
// cols x 2*rows pixel surface. Box geometry maps directly onto the
// cell grid: the mapping is linear per axis, so halving the vertical
// resolution does not change relative positions.
func renderCanvas(img image.Image, st *session.State, cols, rows int) string {
	grid := newGrid(cols, rows)
	if cols < 2 || rows < 2 {
		return grid.String()
	}

	naturalW, naturalH := st.Image.NaturalWidth, st.Image.NaturalHeight
	if naturalW == 0 && img != nil {
		naturalW, naturalH = img.Bounds().Dx(), img.Bounds().Dy()
	}

	pixelW, pixelH := overlay.Fit(naturalW, naturalH, cols, rows*2)
	if pixelW == 0 {
		// No measured image yet: an empty canvas, and no boxes drawn
		// against a guessed size.
		return grid.String()
	}

	cellW := pixelW
	cellH := (pixelH + 1) / 2
	offX := (cols - cellW) / 2
	offY := (rows - cellH) / 2

	if img != nil {
		resized := imaging.Resize(img, cellW, cellH*2, imaging.Lanczos)
		for y := 0; y < cellH; y++ {
			for x := 0; x < cellW; x++ {
				grid.set(offX+x, offY+y, cell{
					ch: '▀',
					fg: pixelColor(resized, x, y*2),
					bg: pixelColor(resized, x, y*2+1),
				})
			}
		}
	} else {
		// Live-feed results carry no pixels; give the boxes a dim
		// placeholder surface of the right proportions.
		for y := 0; y < cellH; y++ {
			for x := 0; x < cellW; x++ {
				grid.set(offX+x, offY+y, cell{ch: '░', fg: lipgloss.Color("238")})
			}
		}
	}

	// Default boxes first, hovered and selected last, so the
	// emphasized box wins overlapping edges.
	for _, emphasis := range []session.Emphasis{
		session.EmphasisDefault, session.EmphasisHovered, session.EmphasisSelected,
	} {
		for i, p := range st.Predictions {
			if st.EmphasisFor(i) != emphasis {
				continue
			}
			rect, ok := overlay.Map(p.BoundingBox, cellW, cellH)
			if !ok {
				continue
			}
			grid.stampBox(rect, offX, offY, p, emphasis)
		}
	}

	return grid.String()
}

func pixelColor(img image.Image, x, y int) lipgloss.Color {
	r, g, b, _ := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8)))
}

type grid struct {
	cols, rows int
	cells      [][]cell
}

func newGrid(cols, rows int) *grid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	cells := make([][]cell, rows)
	for y := range cells {
		row := make([]cell, cols)
		for x := range row {
			row[x] = cell{ch: ' '}
		}
		cells[y] = row
	}
	return &grid{cols: cols, rows: rows, cells: cells}
}

func (g *grid) set(x, y int, c cell) {
	if x < 0 || x >= g.cols || y < 0 || y >= g.rows {
		return
	}
	g.cells[y][x] = c
}

// setGlyph replaces the character and foreground of a cell but keeps
// its background, so the image pixel still shows behind box edges.
func (g *grid) setGlyph(x, y int, ch rune, fg lipgloss.Color, bold bool) {
	if x < 0 || x >= g.cols || y < 0 || y >= g.rows {
		return
	}
	c := g.cells[y][x]
	c.ch, c.fg, c.bold = ch, fg, bold
	g.cells[y][x] = c
}

// setLabel inverts a cell to label colors (dark text on the box color).
func (g *grid) setLabel(x, y int, ch rune, bg lipgloss.Color) {
	if x < 0 || x >= g.cols || y < 0 || y >= g.rows {
		return
	}
	g.cells[y][x] = cell{ch: ch, fg: lipgloss.Color("0"), bg: bg, bold: true}
}

// stampBox draws one bounding box, colored by confidence tier, with
// glyph weight expressing the emphasis: light for default, light+bold
// for hovered, heavy for selected. The hovered or selected box also
// gets its tag name written along the top edge.
func (g *grid) stampBox(rect overlay.Rect, offX, offY int, p vision.Prediction, emphasis session.Emphasis) {
	left := offX + rect.Left
	top := offY + rect.Top
	right := left + rect.Width - 1
	bottom := top + rect.Height - 1
	if right <= left || bottom <= top {
		return
	}

	glyphs := lightBox
	if emphasis == session.EmphasisSelected {
		glyphs = heavyBox
	}
	bold := emphasis != session.EmphasisDefault
	fg := tierColor(vision.TierFor(p.Probability))

	for x := left + 1; x < right; x++ {
		g.setGlyph(x, top, glyphs.horizontal, fg, bold)
		g.setGlyph(x, bottom, glyphs.horizontal, fg, bold)
	}
	for y := top + 1; y < bottom; y++ {
		g.setGlyph(left, y, glyphs.vertical, fg, bold)
		g.setGlyph(right, y, glyphs.vertical, fg, bold)
	}
	g.setGlyph(left, top, glyphs.topLeft, fg, bold)
	g.setGlyph(right, top, glyphs.topRight, fg, bold)
	g.setGlyph(left, bottom, glyphs.bottomLeft, fg, bold)
	g.setGlyph(right, bottom, glyphs.bottomRight, fg, bold)

	if emphasis != session.EmphasisDefault {
		label := []rune(p.TagName)
		for j := 0; j < len(label) && left+1+j < right; j++ {
			g.setLabel(left+1+j, top, label[j], fg)
		}
	}
}

func (g *grid) String() string {
	var sb strings.Builder
	for y := 0; y < g.rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < g.cols; x++ {
			c := g.cells[y][x]
			style := lipgloss.NewStyle()
			if c.fg != "" {
				style = style.Foreground(c.fg)
			}
			if c.bg != "" {
				style = style.Background(c.bg)
			}
			if c.bold {
				style = style.Bold(true)
			}
			sb.WriteString(style.Render(string(c.ch)))
		}
	}
	return sb.String()
}
