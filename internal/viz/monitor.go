package viz

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/nutilda/internal/analysis"
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/sim"
	"github.com/san-kum/nutilda/internal/turbulence"
)

const (
	canvasWidth     = 30
	canvasHeight    = 12
	historyCapacity = 600
)

// AuxRange is the cell range of one auxiliary field.
type AuxRange struct {
	Name     string
	Min, Max float64
}

// Frame is what the monitor shows for one outer iteration. It is built on
// the solver goroutine so the UI never touches the model.
type Frame struct {
	Step     int
	Time     float64
	Perf     fvm.SolverPerformance
	Failed   bool
	Profile  []analysis.ProfilePoint
	NutRatio float64
	Aux      []AuxRange
}

// NewFrame summarises a step. axis selects the profile direction.
func NewFrame(st sim.Step, model *turbulence.Model, axis int) Frame {
	f := Frame{
		Step:   st.Index,
		Time:   st.Time,
		Perf:   st.Perf,
		Failed: st.Err != nil,
	}
	if st.Inputs.Mesh != nil && st.NuTilda != nil {
		f.Profile = analysis.Profile(st.Inputs.Mesh, st.NuTilda, axis)
	}
	if st.Nut != nil && st.Inputs.Nu != nil {
		for i, nut := range st.Nut.Internal {
			if nu := st.Inputs.Nu.Internal[i]; nu > 0 {
				f.NutRatio = math.Max(f.NutRatio, nut/nu)
			}
		}
	}
	if model == nil {
		return f
	}
	if aux := model.LastAuxiliary(); aux != nil {
		for _, a := range []struct {
			name string
			f    *field.Scalar
		}{
			{"chi", aux.Chi},
			{"fv1", aux.Fv1},
			{"h", aux.H},
			{"Stilda", aux.Stilda},
			{"dTilda", aux.DTilda},
			{"r", aux.R},
			{"fw", aux.Fw},
		} {
			if a.f == nil {
				continue
			}
			lo, hi := field.MinMax(a.f)
			f.Aux = append(f.Aux, AuxRange{Name: a.name, Min: lo, Max: hi})
		}
	}
	return f
}

// Stream runs s on its own goroutine and sends a Frame per iteration. The
// frame channel is closed after the run's error, possibly nil, is sent on
// the second channel. A slow reader holds the solver back.
func Stream(ctx context.Context, s *sim.Simulator, cfg sim.Config, axis int) (<-chan Frame, <-chan error) {
	frames := make(chan Frame, 1)
	done := make(chan error, 1)
	go func() {
		defer close(frames)
		err := s.RunWithCallback(ctx, cfg, func(st sim.Step) bool {
			select {
			case frames <- NewFrame(st, s.Model(), axis):
				return true
			case <-ctx.Done():
				return false
			}
		})
		done <- err
	}()
	return frames, done
}

type frameMsg Frame

type doneMsg struct{ err error }

// Monitor is the Bubble Tea model of a live run.
type Monitor struct {
	title  string
	total  int
	frames <-chan Frame
	done   <-chan error
	cancel context.CancelFunc

	residuals []float64
	last      Frame
	seen      bool
	failures  int

	paused   bool
	waiting  bool
	finished bool
	err      error
	showAux  bool
	showHelp bool
	canvas   *Canvas
}

// NewMonitor reads frames until the channel closes. cancel, if set, is
// called when the user quits.
func NewMonitor(title string, total int, frames <-chan Frame, done <-chan error, cancel context.CancelFunc) Monitor {
	return Monitor{
		title:     title,
		total:     total,
		frames:    frames,
		done:      done,
		cancel:    cancel,
		residuals: make([]float64, 0, historyCapacity),
		showAux:   true,
		canvas:    NewCanvas(canvasWidth, canvasHeight),
	}
}

func (m Monitor) wait() tea.Cmd {
	frames, done := m.frames, m.done
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return doneMsg{err: <-done}
		}
		return frameMsg(f)
	}
}

func (m Monitor) Init() tea.Cmd {
	return m.wait()
}

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			if !m.paused && !m.waiting && !m.finished {
				m.waiting = true
				return m, m.wait()
			}
		case "a":
			m.showAux = !m.showAux
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case frameMsg:
		m.waiting = false
		m.record(Frame(msg))
		if !m.paused {
			m.waiting = true
			return m, m.wait()
		}
	case doneMsg:
		m.waiting = false
		m.finished = true
		m.err = msg.err
	}
	return m, nil
}

func (m *Monitor) record(f Frame) {
	m.last = f
	m.seen = true
	if f.Failed {
		m.failures++
	}
	if r := f.Perf.InitialResidual; r > 0 {
		m.residuals = append(m.residuals, math.Log10(r))
		if len(m.residuals) > historyCapacity {
			m.residuals = m.residuals[1:]
		}
	}

	m.canvas.Clear()
	pos := make([]float64, len(f.Profile))
	for i, p := range f.Profile {
		pos[i] = p.X
	}
	m.canvas.PlotProfile(pos, analysis.Values(f.Profile))
}

func (m Monitor) status() string {
	switch {
	case m.err != nil:
		return statusStyle("failed").Render("FAILED: " + m.err.Error())
	case m.finished:
		return statusStyle("done").Render("DONE")
	case m.paused:
		return statusStyle("paused").Render("PAUSED")
	}
	return statusStyle("running").Render("RUNNING")
}

func (m Monitor) View() string {
	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if m.total > 0 {
		s.WriteString(ProgressBar(float64(m.last.Step)/float64(m.total), 30) +
			fmt.Sprintf(" %d/%d\n\n", m.last.Step, m.total))
	}

	if len(m.residuals) > 1 {
		chart := asciigraph.Plot(m.residuals, asciigraph.Height(8), asciigraph.Width(50), asciigraph.Caption("log10 initial residual"))
		s.WriteString(chart + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle().Render(label) + valueStyle().Render(value) + "\n")
	}
	if m.seen {
		row("Iteration", fmt.Sprintf("%d", m.last.Step))
		row("Time", fmt.Sprintf("%.4g", m.last.Time))
		row("Residual", fmt.Sprintf("%.3e", m.last.Perf.InitialResidual))
		row("Solver", fmt.Sprintf("%s, %d its", m.last.Perf.Solver, m.last.Perf.Iterations))
		row("nut/nu max", fmt.Sprintf("%.4g", m.last.NutRatio))
		row("Failures", fmt.Sprintf("%d", m.failures))
	} else {
		row("Iteration", "waiting for first solve")
	}

	if m.showAux && len(m.last.Aux) > 0 {
		s.WriteString("\nAUXILIARY\n")
		for _, a := range m.last.Aux {
			row(a.Name, fmt.Sprintf("[%.3e, %.3e]", a.Min, a.Max))
		}
	}
	stats := panelStyle().Render(s.String())

	profile := panelStyle().Render(headerStyle().Render("nuTilda profile") + "\n" + m.canvas.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, stats, profile)

	help := lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render("SP:Pause A:Aux T:Theme ?:Help Q:Quit")
	if m.showHelp {
		help = panelStyle().Render(strings.Join([]string{
			"Space  pause or resume the solver",
			"A      toggle the auxiliary table",
			"T      cycle themes",
			"?      toggle this help",
			"Q      stop the run and quit",
		}, "\n"))
	}
	return main + "\n" + help
}

// Run starts a full-screen monitor on a stream and blocks until the user
// quits.
func Run(ctx context.Context, title string, s *sim.Simulator, cfg sim.Config, axis int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	frames, done := Stream(ctx, s, cfg, axis)
	final, err := tea.NewProgram(NewMonitor(title, cfg.Iterations, frames, done, cancel), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if mon, ok := final.(Monitor); ok && mon.err != nil {
		return mon.err
	}
	return nil
}
