package export

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/nutilda/internal/viz"
)

func TestCanvasToSVGOneCirclePerDot(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	svg := CanvasToSVG(c, 4, "#00ff00")
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Fatalf("expected 2 circles, got %d", n)
	}
	if !strings.Contains(svg, `cx="2.0" cy="2.0"`) {
		t.Errorf("first dot not at (2,2):\n%s", svg)
	}
	if !strings.Contains(svg, `cx="14.0" cy="14.0"`) {
		t.Errorf("second dot not at (14,14):\n%s", svg)
	}
	if !strings.Contains(svg, `width="16" height="16"`) {
		t.Errorf("unexpected size:\n%s", svg)
	}
}

func TestCanvasToSVGNil(t *testing.T) {
	if CanvasToSVG(nil, 1, "#fff") != "" {
		t.Error("nil canvas should give empty output")
	}
}

func TestResidualPlotSkipsNonPositive(t *testing.T) {
	p := ResidualPlot("run", []float64{1, 0, 0.01})
	s := p.Series[0]
	if len(s.X) != 2 {
		t.Fatalf("expected 2 points, got %d", len(s.X))
	}
	if s.X[1] != 3 || s.Y[1] != -2 {
		t.Errorf("expected (3, -2), got (%v, %v)", s.X[1], s.Y[1])
	}
}

func TestWriteSVGBreaksAtNaN(t *testing.T) {
	p := ProfilePlot("channel", "nuTilda",
		[]float64{0, 1, 2, 3},
		[]float64{0, 1, math.NaN(), 1})
	var buf bytes.Buffer
	if err := WriteSVG(&buf, p); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Fatalf("not an svg document:\n%s", out)
	}
	if n := strings.Count(out, "M"); n < 2 {
		t.Errorf("expected the path to restart after NaN, got %d moves", n)
	}
	if !strings.Contains(out, "<title>nuTilda</title>") {
		t.Error("series label missing")
	}
}

func TestWriteSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSVG(&buf, Plot{Title: "empty", Series: []Series{{X: []float64{math.Inf(1)}, Y: []float64{0}}}})
	if err == nil {
		t.Error("expected an error for a plot without finite points")
	}
}

func TestEscape(t *testing.T) {
	if got := escape(`a<b & "c"`); got != "a&lt;b &amp; &quot;c&quot;" {
		t.Errorf("got %s", got)
	}
}
