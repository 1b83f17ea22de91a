package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
	c    [][]lipgloss.Color
	mark [][]rune

	// pen colours every pixel set until it changes
	pen lipgloss.Color
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	c := make([][]lipgloss.Color, h)
	mark := make([][]rune, h)
	for i := range m {
		m[i] = make([]uint8, w)
		c[i] = make([]lipgloss.Color, w)
		mark[i] = make([]rune, w)
	}
	return &brailleBuf{w: w, h: h, m: m, c: c, mark: mark}
}

var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= brailleBits[rx][ry]
	if b.pen != "" {
		b.c[cy][cx] = b.pen
	}
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillPolygon fills pts (micro coords) with the even-odd rule per scanline,
// then strokes the edges so that sub-pixel shapes still leave a mark.
func (b *brailleBuf) fillPolygon(pts [][2]float64) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0][1], pts[0][1]
	for _, p := range pts[1:] {
		minY = min(minY, p[1])
		maxY = max(maxY, p[1])
	}
	y0 := max(0, int(minY))
	y1 := min(b.h*4-1, int(maxY))
	xs := make([]int, 0, 8)
	for yMic := y0; yMic <= y1; yMic++ {
		sy := float64(yMic) + 0.5
		xs = xs[:0]
		for i := range pts {
			a := pts[i]
			c := pts[(i+1)%len(pts)]
			if a[1] == c[1] {
				continue
			}
			if (sy >= a[1] && sy < c[1]) || (sy >= c[1] && sy < a[1]) {
				t := (sy - a[1]) / (c[1] - a[1])
				xs = append(xs, int(a[0]+t*(c[0]-a[0])))
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for xMic := max(0, xs[i]); xMic <= xs[i+1] && xMic < b.w*2; xMic++ {
				b.setPixel(xMic, yMic)
			}
		}
	}
	for i := range pts {
		a := pts[i]
		c := pts[(i+1)%len(pts)]
		b.drawLineMicro(int(a[0]), int(a[1]), int(c[0]), int(c[1]))
	}
}

// markCell replaces a whole cell with a glyph drawn over the braille.
func (b *brailleBuf) markCell(cx, cy int, r rune) {
	if cx < 0 || cy < 0 || cx >= b.w || cy >= b.h {
		return
	}
	b.mark[cy][cx] = r
}

func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		row := make([]rune, b.w)
		for x := 0; x < b.w; x++ {
			row[x] = b.glyph(x, y)
		}
		out[y] = string(row)
	}
	return out
}

// render is toLines with colour: runs of cells sharing a colour are styled
// together.
func (b *brailleBuf) render() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		var sb strings.Builder
		var run []rune
		var col lipgloss.Color
		flush := func() {
			if len(run) == 0 {
				return
			}
			switch {
			case col == "":
				sb.WriteString(string(run))
			case col == markColor:
				sb.WriteString(markStyle.Render(string(run)))
			default:
				sb.WriteString(lipgloss.NewStyle().Foreground(col).Render(string(run)))
			}
			run = run[:0]
		}
		for x := 0; x < b.w; x++ {
			c := b.c[y][x]
			if b.mark[y][x] != 0 {
				c = markColor
			} else if b.m[y][x] == 0 {
				c = ""
			}
			if c != col {
				flush()
				col = c
			}
			run = append(run, b.glyph(x, y))
		}
		flush()
		out[y] = sb.String()
	}
	return out
}

func (b *brailleBuf) glyph(x, y int) rune {
	if r := b.mark[y][x]; r != 0 {
		return r
	}
	mask := b.m[y][x]
	if mask == 0 {
		return ' '
	}
	return rune(0x2800 + int(mask))
}
