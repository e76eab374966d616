package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/nutilda/internal/config"
	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/flow"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/integrators"
	"github.com/san-kum/nutilda/internal/metrics"
	"github.com/san-kum/nutilda/internal/sim"
	"github.com/san-kum/nutilda/internal/turbulence"
)

type Registry struct {
	flows        map[string]func(c config.CaseConfig) flow.Profile
	lengthScales map[string]func(ls config.LengthScaleConfig, coeffs turbulence.Coeffs) (turbulence.LengthScale, error)
	solvers      map[string]func(c fvm.Controls) fvm.Solver
}

func NewRegistry() *Registry {
	r := &Registry{
		flows:        make(map[string]func(config.CaseConfig) flow.Profile),
		lengthScales: make(map[string]func(config.LengthScaleConfig, turbulence.Coeffs) (turbulence.LengthScale, error)),
		solvers:      make(map[string]func(fvm.Controls) fvm.Solver),
	}

	height := func(c config.CaseConfig) float64 { return c.Length[1] }
	r.flows["uniform"] = func(c config.CaseConfig) flow.Profile {
		return flow.NewUniform(field.Vec3{c.Speed, 0, 0})
	}
	r.flows["couette"] = func(c config.CaseConfig) flow.Profile {
		return flow.NewCouette(c.Speed, height(c))
	}
	r.flows["poiseuille"] = func(c config.CaseConfig) flow.Profile {
		return flow.NewPoiseuille(c.Speed, height(c))
	}
	r.flows["swirl"] = func(c config.CaseConfig) flow.Profile {
		return flow.NewSwirl(c.Speed, c.Swirl, height(c))
	}

	r.lengthScales["wallDistance"] = func(config.LengthScaleConfig, turbulence.Coeffs) (turbulence.LengthScale, error) {
		return turbulence.WallDistance{}, nil
	}
	r.lengthScales["hybrid"] = func(ls config.LengthScaleConfig, c turbulence.Coeffs) (turbulence.LengthScale, error) {
		policy, err := turbulence.ParsePolicy(ls.Policy)
		if err != nil {
			return nil, err
		}
		return turbulence.NewHybrid(ls.CDES, c.Kappa, policy)
	}

	r.solvers["smoothSolver"] = func(c fvm.Controls) fvm.Solver { return fvm.NewGaussSeidel(c) }
	r.solvers["PBiCGStab"] = func(c fvm.Controls) fvm.Solver { return fvm.NewBiCGStab(c) }
	r.solvers["directLU"] = func(fvm.Controls) fvm.Solver { return fvm.NewDirect() }

	return r
}

func unknown(kind, name string) error {
	return fmt.Errorf("%s %q: %w", kind, name, dynamo.ErrUnknownComponent)
}

func (r *Registry) GetFlow(c config.CaseConfig) (flow.Profile, error) {
	fn, ok := r.flows[c.Flow]
	if !ok {
		return nil, unknown("flow", c.Flow)
	}
	return fn(c), nil
}

func (r *Registry) GetLengthScale(ls config.LengthScaleConfig, coeffs turbulence.Coeffs) (turbulence.LengthScale, error) {
	fn, ok := r.lengthScales[ls.Type]
	if !ok {
		return nil, unknown("length scale", ls.Type)
	}
	return fn(ls, coeffs)
}

func (r *Registry) GetSolver(name string, c fvm.Controls) (fvm.Solver, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, unknown("solver", name)
	}
	return fn(c), nil
}

func (r *Registry) GetScheme(name string) (integrators.Scheme, error) {
	return integrators.New(name)
}

func (r *Registry) ListFlows() []string        { return keys(r.flows) }
func (r *Registry) ListLengthScales() []string { return keys(r.lengthScales) }
func (r *Registry) ListSolvers() []string      { return keys(r.solvers) }
func (r *Registry) ListSchemes() []string      { return integrators.Names() }

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Standard()
}

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
