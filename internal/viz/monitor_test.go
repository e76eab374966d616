package viz

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/nutilda/internal/config"
	"github.com/san-kum/nutilda/internal/experiment"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestCanvasPlotProfile(t *testing.T) {
	c := NewCanvas(10, 5)
	c.PlotProfile([]float64{0, 1, 2}, []float64{0, 1, 0})

	lit := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBlank {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("expected pixels to be set")
	}

	c.Clear()
	if strings.Trim(c.String(), string(rune(brailleBlank))+"\n") != "" {
		t.Error("clear should blank every cell")
	}
	c.PlotProfile(nil, nil)
}

func TestSparkline(t *testing.T) {
	s := Sparkline([]float64{0, 1, 2, 3}, 4)
	if got := len([]rune(s)); got != 4 {
		t.Errorf("expected 4 runes, got %d", got)
	}
	if r := []rune(s); r[0] != '▁' || r[3] != '█' {
		t.Errorf("unexpected sparkline %q", s)
	}
	if Sparkline(nil, 4) != "" {
		t.Error("empty input should render nothing")
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme("coolwarm")
	SetTheme("viridis")
	if CurrentTheme.Name != "viridis" {
		t.Errorf("expected viridis, got %s", CurrentTheme.Name)
	}
	NextTheme()
	if CurrentTheme.Name != "mono" {
		t.Errorf("expected mono, got %s", CurrentTheme.Name)
	}
	if GetTheme("missing").Name != "coolwarm" {
		t.Error("unknown theme should fall back to coolwarm")
	}
}

func TestMonitorUpdate(t *testing.T) {
	frames := make(chan Frame)
	done := make(chan error, 1)
	m := NewMonitor("channel", 10, frames, done, nil)

	next, cmd := m.Update(frameMsg(Frame{Step: 1, Perf: fvm.SolverPerformance{InitialResidual: 1e-2, Solver: "PBiCGStab"}}))
	m = next.(Monitor)
	if cmd == nil {
		t.Error("expected to wait for the next frame")
	}
	if len(m.residuals) != 1 || m.residuals[0] != -2 {
		t.Errorf("unexpected residual history %v", m.residuals)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Monitor)
	if !m.paused {
		t.Fatal("space should pause")
	}
	next, cmd = m.Update(frameMsg(Frame{Step: 2, Failed: true}))
	m = next.(Monitor)
	if cmd != nil {
		t.Error("paused monitor should not ask for more frames")
	}
	if m.failures != 1 {
		t.Errorf("expected 1 failure, got %d", m.failures)
	}

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Monitor)
	if cmd == nil {
		t.Error("resume should ask for the next frame")
	}

	next, _ = m.Update(doneMsg{})
	m = next.(Monitor)
	if !m.finished || !strings.Contains(m.View(), "DONE") {
		t.Error("expected finished monitor")
	}
}

func TestMonitorQuitCancels(t *testing.T) {
	canceled := false
	m := NewMonitor("x", 1, nil, nil, func() { canceled = true })
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !canceled {
		t.Error("quit should cancel the run")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestStreamDeliversFrames(t *testing.T) {
	cfg := config.GetPreset("decay")
	cfg.Numerics.Solver = "directLU"
	logger, _ := test.NewNullLogger()
	e := experiment.New(cfg, logger)
	if err := e.Setup(experiment.NewRegistry()); err != nil {
		t.Fatal(err)
	}

	sc := e.SimConfig()
	sc.Iterations = 3
	frames, done := Stream(context.Background(), e.GetSimulator(), sc, 1)

	n := 0
	for f := range frames {
		n++
		if f.Step != n {
			t.Errorf("expected step %d, got %d", n, f.Step)
		}
		if len(f.Profile) != cfg.Case.Cells[1] {
			t.Errorf("expected %d profile stations, got %d", cfg.Case.Cells[1], len(f.Profile))
		}
		if len(f.Aux) == 0 {
			t.Error("expected auxiliary ranges")
		}
	}
	if err := <-done; err != nil {
		t.Errorf("run failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 frames, got %d", n)
	}
}
