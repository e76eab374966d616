package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/nutilda/internal/config"
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/flow"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/mesh"
	"github.com/san-kum/nutilda/internal/sim"
	"github.com/san-kum/nutilda/internal/turbulence"
	"github.com/sirupsen/logrus"
)

// Experiment assembles one case from a Config: mesh, prescribed flow,
// initial nuTilda, closure and the simulator driving it.
type Experiment struct {
	cfg       *config.Config
	log       logrus.FieldLogger
	mesh      *mesh.Mesh
	flow      *flow.Flow
	model     *turbulence.Model
	simulator *sim.Simulator
}

func New(cfg *config.Config, log logrus.FieldLogger) *Experiment {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Experiment{cfg: cfg, log: log}
}

func (e *Experiment) Setup(reg *Registry) error {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs := cfg.Case

	m, err := mesh.NewBox(mesh.BoxSpec{
		NX: cs.Cells[0], NY: cs.Cells[1], NZ: cs.Cells[2],
		Length:   field.Vec3{cs.Length[0], cs.Length[1], cs.Length[2]},
		GradingY: cs.GradingY,
		Walls:    cs.Walls,
	})
	if err != nil {
		return fmt.Errorf("mesh: %w", err)
	}

	profile, err := reg.GetFlow(cs)
	if err != nil {
		return err
	}
	f, err := flow.New(m, profile, cs.Nu)
	if err != nil {
		return err
	}

	ls, err := reg.GetLengthScale(cfg.LengthScale, cfg.Model)
	if err != nil {
		return err
	}
	n := cfg.Numerics
	solver, err := reg.GetSolver(n.Solver, fvm.Controls{
		Tolerance: n.Tolerance,
		RelTol:    n.RelTol,
		MaxIter:   n.MaxIter,
	})
	if err != nil {
		return err
	}
	scheme, err := reg.GetScheme(n.Ddt)
	if err != nil {
		return err
	}

	nuTilda, err := initialNuTilda(m, cs)
	if err != nil {
		return err
	}

	model, err := turbulence.New(cfg.Model, nuTilda,
		turbulence.WithLengthScale(ls),
		turbulence.WithScheme(scheme),
		turbulence.WithSolver(solver),
		turbulence.WithRelaxation(n.Relaxation),
		turbulence.WithDeltaCoeff(cfg.LengthScale.DeltaCoeff),
		turbulence.WithLogger(e.log),
	)
	if err != nil {
		return err
	}

	e.mesh, e.flow, e.model = m, f, model
	e.simulator = sim.New(model, f)
	e.simulator.SetLogger(e.log)
	for _, mt := range reg.DefaultMetrics() {
		e.simulator.AddMetric(mt)
	}

	e.log.WithFields(logrus.Fields{
		"cells":       m.NumCells(),
		"flow":        profile.Name(),
		"lengthScale": ls.Name(),
		"solver":      solver.Name(),
		"ddt":         scheme.Name(),
	}).Info("case ready")
	return nil
}

// initialNuTilda is uniform at NuTildaRatio*nu, with the wall condition on
// wall patches and zero gradient elsewhere.
func initialNuTilda(m *mesh.Mesh, cs config.CaseConfig) (*field.Scalar, error) {
	f := field.Uniform("nuTilda", field.DimKinematicViscosity, m.Shape(), cs.NuTildaRatio*cs.Nu)
	kinds := make([]field.PatchKind, len(m.Patches))
	for i := range kinds {
		kinds[i] = field.ZeroGradient
	}
	f.SetKinds(kinds)

	wallKind, err := field.ParsePatchKind(cs.WallBC)
	if err != nil {
		return nil, err
	}
	for _, w := range cs.Walls {
		if err := f.SetPatch(w, wallKind, 0); err != nil {
			return nil, err
		}
	}
	f.CorrectBoundary(m.Shape())
	return f, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.simConfig())
}

func (e *Experiment) simConfig() sim.Config {
	n := e.cfg.Numerics
	return sim.Config{
		Dt:             n.Dt,
		Iterations:     n.Iterations,
		ResidualTarget: n.ResidualTarget,
		StopOnFailure:  n.StopOnFailure,
		ValidateState:  true,
	}
}

// SimConfig is the driver configuration Run uses.
func (e *Experiment) SimConfig() sim.Config { return e.simConfig() }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Mesh() *mesh.Mesh         { return e.mesh }
func (e *Experiment) Flow() *flow.Flow         { return e.flow }
func (e *Experiment) Model() *turbulence.Model { return e.model }
func (e *Experiment) Config() *config.Config   { return e.cfg }
