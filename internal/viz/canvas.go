package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots; pixelMap gives each dot's bit.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a Width x Height grid of Braille cells, addressed in
// sub-pixels of (2*Width) x (4*Height).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// PlotProfile draws value against position as a polyline: values run along
// the horizontal axis, positions up the vertical axis. The value axis starts
// at zero unless a value is negative.
func (c *Canvas) PlotProfile(pos, vals []float64) {
	n := len(pos)
	if len(vals) < n {
		n = len(vals)
	}
	if n == 0 {
		return
	}
	pw, ph := c.Width*2-1, c.Height*4-1

	pLo, pHi := bounds(pos[:n])
	vLo, vHi := bounds(vals[:n])
	vLo = math.Min(vLo, 0)
	scale := func(v, lo, hi float64, span int) int {
		if hi == lo {
			return span / 2
		}
		return int(math.Round((v - lo) / (hi - lo) * float64(span)))
	}

	px, py := -1, -1
	for i := 0; i < n; i++ {
		x := scale(vals[i], vLo, vHi, pw)
		y := ph - scale(pos[i], pLo, pHi, ph)
		if px >= 0 {
			c.DrawLine(px, py, x, y)
		} else {
			c.Set(x, y)
		}
		px, py = x, y
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
