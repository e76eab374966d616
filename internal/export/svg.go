package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/nutilda/internal/viz"
)

// Braille dot bits, row by row, left column first.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const (
	background = "#0a0a0a"
	axisColor  = "#555555"
	margin     = 40.0
)

// CanvasToSVG renders every set dot of a Braille canvas as a circle. Each
// sub-pixel becomes a scale x scale square.
func CanvasToSVG(c *viz.Canvas, scale float64, color string) string {
	if c == nil || scale <= 0 {
		return ""
	}
	width := float64(c.Width) * 2 * scale
	height := float64(c.Height) * 4 * scale

	var b strings.Builder
	header(&b, width, height)
	fmt.Fprintf(&b, "<g fill=%q>\n", color)
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			bits := c.Grid[row][col] - 0x2800
			if bits <= 0 {
				continue
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if bits&dotBits[dy][dx] == 0 {
						continue
					}
					cx := (float64(col*2+dx) + 0.5) * scale
					cy := (float64(row*4+dy) + 0.5) * scale
					fmt.Fprintf(&b, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, 0.4*scale)
				}
			}
		}
	}
	b.WriteString("</g>\n</svg>\n")
	return b.String()
}

// Series is one polyline of a line plot.
type Series struct {
	Label string
	X, Y  []float64
	Color string
}

// Plot describes a line plot with a caption and axis labels.
type Plot struct {
	Title         string
	XLabel        string
	YLabel        string
	Width, Height int
	Series        []Series
}

// ResidualPlot plots log10 of the positive residuals against iteration.
func ResidualPlot(title string, residuals []float64) Plot {
	s := Series{Label: "initial residual", Color: "#00d7ff"}
	for i, r := range residuals {
		if r > 0 {
			s.X = append(s.X, float64(i+1))
			s.Y = append(s.Y, math.Log10(r))
		}
	}
	return Plot{Title: title, XLabel: "iteration", YLabel: "log10 residual", Series: []Series{s}}
}

// ProfilePlot plots a field value against station position.
func ProfilePlot(title, name string, pos, vals []float64) Plot {
	return Plot{
		Title:  title,
		XLabel: name,
		YLabel: "position",
		Series: []Series{{Label: name, X: vals, Y: pos, Color: "#00ff87"}},
	}
}

// WriteSVG renders p to w. Non-finite points are dropped and break the
// line.
func WriteSVG(w io.Writer, p Plot) error {
	width, height := float64(p.Width), float64(p.Height)
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 400
	}

	xLo, xHi, yLo, yHi := extent(p.Series)
	if xLo > xHi {
		return fmt.Errorf("plot %q has no finite points", p.Title)
	}
	xLo, xHi = pad(xLo, xHi)
	yLo, yHi = pad(yLo, yHi)
	plotW, plotH := width-2*margin, height-2*margin
	sx := func(x float64) float64 { return margin + (x-xLo)/(xHi-xLo)*plotW }
	sy := func(y float64) float64 { return margin + plotH - (y-yLo)/(yHi-yLo)*plotH }

	var b strings.Builder
	header(&b, width, height)
	fmt.Fprintf(&b, "<rect x=\"%.0f\" y=\"%.0f\" width=\"%.0f\" height=\"%.0f\" fill=\"none\" stroke=%q/>\n",
		margin, margin, plotW, plotH, axisColor)
	text(&b, width/2, margin/2, "middle", p.Title)
	text(&b, width/2, height-8, "middle", p.XLabel)
	text(&b, 4, margin-6, "start", p.YLabel)
	text(&b, margin, height-margin+14, "start", fmt.Sprintf("%.3g", xLo))
	text(&b, width-margin, height-margin+14, "end", fmt.Sprintf("%.3g", xHi))
	text(&b, margin-4, height-margin, "end", fmt.Sprintf("%.3g", yLo))
	text(&b, margin-4, margin+10, "end", fmt.Sprintf("%.3g", yHi))

	for _, s := range p.Series {
		color := s.Color
		if color == "" {
			color = "#ffffff"
		}
		var d strings.Builder
		move := true
		for i := 0; i < len(s.X) && i < len(s.Y); i++ {
			if !finite(s.X[i]) || !finite(s.Y[i]) {
				move = true
				continue
			}
			cmd := "L"
			if move {
				cmd = "M"
				move = false
			}
			fmt.Fprintf(&d, "%s%.1f,%.1f ", cmd, sx(s.X[i]), sy(s.Y[i]))
		}
		if d.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "<path fill=\"none\" stroke=%q stroke-width=\"1.5\" d=%q><title>%s</title></path>\n",
			color, strings.TrimSpace(d.String()), escape(s.Label))
	}
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func header(b *strings.Builder, width, height float64) {
	fmt.Fprintf(b, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill=%q/>
`, width, height, width, height, background)
}

func text(b *strings.Builder, x, y float64, anchor, s string) {
	if s == "" {
		return
	}
	fmt.Fprintf(b, "<text x=\"%.1f\" y=\"%.1f\" fill=\"#cccccc\" font-family=\"monospace\" font-size=\"11\" text-anchor=%q>%s</text>\n",
		x, y, anchor, escape(s))
}

func extent(series []Series) (xLo, xHi, yLo, yHi float64) {
	xLo, yLo = math.Inf(1), math.Inf(1)
	xHi, yHi = math.Inf(-1), math.Inf(-1)
	for _, s := range series {
		for i := 0; i < len(s.X) && i < len(s.Y); i++ {
			if !finite(s.X[i]) || !finite(s.Y[i]) {
				continue
			}
			xLo, xHi = math.Min(xLo, s.X[i]), math.Max(xHi, s.X[i])
			yLo, yHi = math.Min(yLo, s.Y[i]), math.Max(yHi, s.Y[i])
		}
	}
	return xLo, xHi, yLo, yHi
}

// pad widens a range by 5% each side, or to unit width if it is empty.
func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		return lo - 0.5, hi + 0.5
	}
	return lo - 0.05*span, hi + 0.05*span
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
