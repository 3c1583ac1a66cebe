package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/shopfloor/pkg/geom"
)

// World units covered by one terminal cell at 100% zoom. Cells are roughly
// twice as tall as they are wide.
const (
	cellW = 10.0
	cellH = 20.0
)

// canvas is a grid of styled runes rendered one lipgloss span per style run.
type canvas struct {
	cols, rows int
	runes      []rune
	styles     []int
	palette    []lipgloss.Style
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{
		cols:    cols,
		rows:    rows,
		runes:   make([]rune, cols*rows),
		styles:  make([]int, cols*rows),
		palette: []lipgloss.Style{lipgloss.NewStyle()},
	}
	for i := range c.runes {
		c.runes[i] = ' '
	}
	return c
}

// style registers s and returns its palette index.
func (c *canvas) style(s lipgloss.Style) int {
	c.palette = append(c.palette, s)
	return len(c.palette) - 1
}

func (c *canvas) set(x, y int, r rune, style int) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.runes[y*c.cols+x] = r
	c.styles[y*c.cols+x] = style
}

// cellRect converts a world rectangle to inclusive cell bounds under the
// viewport transform. Every visible item covers at least one cell.
func cellRect(r geom.Rect, pan geom.Vec, scale float64) (x0, y0, x1, y1 int) {
	lo := geom.WorldToScreen(r.Min, pan, scale)
	hi := geom.WorldToScreen(r.Max(), pan, scale)
	x0 = int(math.Floor(lo.X / cellW))
	y0 = int(math.Floor(lo.Y / cellH))
	x1 = int(math.Ceil(hi.X/cellW)) - 1
	y1 = int(math.Ceil(hi.Y/cellH)) - 1
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return x0, y0, x1, y1
}

// cellCenter returns the screen point at the middle of a cell.
func cellCenter(col, row int) geom.Vec {
	return geom.V((float64(col)+0.5)*cellW, (float64(row)+0.5)*cellH)
}

// box draws a rounded frame with label centered on its middle row. Boxes
// too small for a frame are filled solid.
func (c *canvas) box(x0, y0, x1, y1 int, label string, style int) {
	if x1-x0 < 1 || y1-y0 < 1 {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				c.set(x, y, '█', style)
			}
		}
		return
	}

	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, '─', style)
		c.set(x, y1, '─', style)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, '│', style)
		c.set(x1, y, '│', style)
	}
	c.set(x0, y0, '╭', style)
	c.set(x1, y0, '╮', style)
	c.set(x0, y1, '╰', style)
	c.set(x1, y1, '╯', style)

	inner := x1 - x0 - 1
	if inner <= 0 || label == "" {
		return
	}
	label = runewidth.Truncate(label, inner, "…")
	start := x0 + 1 + (inner-runewidth.StringWidth(label))/2
	row := y0 + (y1-y0)/2
	if y1-y0 == 1 {
		row = y0
	}
	x := start
	for _, r := range label {
		c.set(x, row, r, style)
		x++
	}
}

// render joins the grid into lines, one styled span per run of equal style.
func (c *canvas) render() string {
	var b strings.Builder
	for y := 0; y < c.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := y * c.cols
		for x := 0; x < c.cols; {
			s := c.styles[row+x]
			end := x
			for end < c.cols && c.styles[row+end] == s {
				end++
			}
			span := string(c.runes[row+x : row+end])
			if s == 0 {
				b.WriteString(span)
			} else {
				b.WriteString(c.palette[s].Render(span))
			}
			x = end
		}
	}
	return b.String()
}
