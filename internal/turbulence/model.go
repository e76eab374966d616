package turbulence

import (
	"fmt"
	"math"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/integrators"
	"github.com/sirupsen/logrus"
)

// Model is a Spalart-Allmaras closure instance. It is not safe for
// concurrent use; cell loops inside a call run in parallel.
type Model struct {
	coeffs      Coeffs
	lengthScale LengthScale
	ddt         integrators.Scheme
	solver      fvm.Solver
	relax       float64
	deltaCoeff  float64
	log         logrus.FieldLogger

	nuTilda *field.Scalar
	nut     *field.Scalar
	history integrators.History
	last    *Auxiliary
}

// Option configures a Model.
type Option func(*Model)

// WithLengthScale sets the dTilda strategy. The default is WallDistance.
func WithLengthScale(ls LengthScale) Option {
	return func(m *Model) { m.lengthScale = ls }
}

// WithScheme sets the ddt scheme. The default is Euler.
func WithScheme(s integrators.Scheme) Option {
	return func(m *Model) { m.ddt = s }
}

// WithSolver sets the linear solver for nuTilda.
func WithSolver(s fvm.Solver) Option {
	return func(m *Model) { m.solver = s }
}

// WithRelaxation under-relaxes the assembled matrix by alpha in (0, 1).
func WithRelaxation(alpha float64) Option {
	return func(m *Model) { m.relax = alpha }
}

// WithDeltaCoeff scales the cube-root-volume filter width.
func WithDeltaCoeff(c float64) Option {
	return func(m *Model) { m.deltaCoeff = c }
}

// WithLogger replaces the standard logrus logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Model) { m.log = l }
}

// New builds a model that takes ownership of a copy of nuTilda. Negative
// initial values are bounded to zero.
func New(coeffs Coeffs, nuTilda *field.Scalar, opts ...Option) (*Model, error) {
	if err := coeffs.Validate(); err != nil {
		return nil, err
	}
	if nuTilda == nil {
		return nil, fmt.Errorf("turbulence: nil nuTilda: %w", dynamo.ErrInvalidState)
	}
	if err := field.CheckDims("nuTilda", nuTilda.Dims, field.DimKinematicViscosity); err != nil {
		return nil, err
	}

	m := &Model{
		coeffs:      coeffs,
		lengthScale: WallDistance{},
		ddt:         integrators.NewEuler(),
		solver:      fvm.NewBiCGStab(fvm.DefaultControls()),
		deltaCoeff:  1,
		log:         logrus.StandardLogger(),
		nuTilda:     nuTilda.Clone().Rename("nuTilda"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.relax < 0 || m.relax > 1 {
		return nil, &dynamo.ConfigError{Key: "relaxation", Value: m.relax, Reason: "must lie in [0, 1]"}
	}
	if !(m.deltaCoeff > 0) {
		return nil, &dynamo.ConfigError{Key: "deltaCoeff", Value: m.deltaCoeff, Reason: "must be positive"}
	}
	if !field.Valid(m.nuTilda) {
		return nil, fmt.Errorf("turbulence: initial nuTilda: %w", dynamo.ErrInvalidState)
	}

	field.Bound(m.nuTilda, 0)
	m.nut = field.Map(m.nuTilda, "nut", field.DimKinematicViscosity, func(float64) float64 { return 0 })
	m.printCoeffs()
	return m, nil
}

// Read replaces the coefficient set, for example after the case dictionary
// changed on disk.
func (m *Model) Read(c Coeffs) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.coeffs = c
	m.printCoeffs()
	return nil
}

func (m *Model) printCoeffs() {
	m.log.WithFields(m.coeffs.Fields()).
		WithField("lengthScale", m.lengthScale.Name()).
		WithField("ddt", m.ddt.Name()).
		Info("SpalartAllmarasH coefficients")
}

func (m *Model) Coeffs() Coeffs             { return m.coeffs }
func (m *Model) LengthScale() LengthScale   { return m.lengthScale }
func (m *Model) Scheme() integrators.Scheme { return m.ddt }

// NuTilda returns a copy of the transported field.
func (m *Model) NuTilda() *field.Scalar { return m.nuTilda.Clone() }

// Nut returns a copy of the eddy viscosity.
func (m *Model) Nut() *field.Scalar { return m.nut.Clone() }

// LastAuxiliary returns the auxiliary fields of the most recent Correct,
// or nil before the first call.
func (m *Model) LastAuxiliary() *Auxiliary { return m.last }

// Restore replaces nuTilda, typically with a field read back from a
// previous run, and forgets the time history.
func (m *Model) Restore(f *field.Scalar, nu *field.Scalar) error {
	if err := f.Conforms(shapeOf(m.nuTilda)); err != nil {
		return err
	}
	if err := field.CheckDims("restore nuTilda", f.Dims, field.DimKinematicViscosity); err != nil {
		return err
	}
	m.nuTilda = f.Clone().Rename("nuTilda")
	field.Bound(m.nuTilda, 0)
	m.history.Reset()
	m.CorrectNut(nu)
	return nil
}

// Auxiliary holds the transient fields of one correction. Production and
// Destruction are per unit nuTilda.
type Auxiliary struct {
	GradU *field.Tensor

	Chi, Fv1, Fv2, Ft2 *field.Scalar
	Omega, H, Stilda   *field.Scalar
	DTilda, R, Fw      *field.Scalar

	// Production is Cb1 Stilda (1 - ft2).
	Production *field.Scalar
	// Destruction is Cw1 fw nuTilda/dTilda^2.
	Destruction *field.Scalar
}

// Auxiliary evaluates the auxiliary fields for the current nuTilda without
// solving anything.
func (m *Model) Auxiliary(in Inputs) (*Auxiliary, error) {
	if err := m.check(in); err != nil {
		return nil, err
	}
	return m.auxiliary(in, m.nuTilda), nil
}

func (m *Model) check(in Inputs) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := m.nuTilda.Conforms(in.Mesh.Shape()); err != nil {
		return err
	}
	return field.CheckDims("nuTilda/nu", m.nuTilda.Dims, in.Nu.Dims)
}

func (m *Model) lengthInputs(in Inputs, chi, fv1 *field.Scalar, gradU *field.Tensor) LengthInputs {
	return LengthInputs{
		Y:     in.Mesh.WallDistance(),
		Delta: in.Mesh.CubeRootVolDelta(m.deltaCoeff),
		Chi:   chi,
		Fv1:   fv1,
		Nu:    in.Nu,
		GradU: gradU,
	}
}

// auxiliary computes chi, fv1, dTilda, then Stilda and the reaction terms,
// all from the one nuTilda snapshot it is given.
func (m *Model) auxiliary(in Inputs, nuTilda *field.Scalar) *Auxiliary {
	c := m.coeffs
	a := &Auxiliary{GradU: fvm.GradVector(in.Mesh, in.U)}

	a.Chi = c.Chi(nuTilda, in.Nu)
	a.Fv1 = c.Fv1(a.Chi)
	a.Fv2 = c.Fv2(a.Chi, a.Fv1)
	a.Ft2 = c.Trip(a.Chi)
	a.DTilda = m.lengthScale.DTilda(m.lengthInputs(in, a.Chi, a.Fv1, a.GradU))
	a.Omega = Omega(a.GradU)
	a.H = c.HelicityFactor(in.U, a.GradU)
	a.Stilda = c.Stilda(a.Chi, a.Fv1, nuTilda, a.Omega, a.H, a.DTilda)
	a.R = c.R(nuTilda, a.Stilda, a.DTilda)
	a.Fw = c.Fw(a.R)

	a.Production = cellwise("production", field.DimRate, func(v []float64) float64 {
		return c.Cb1 * v[0] * (1 - v[1])
	}, a.Stilda, a.Ft2)

	cw1 := c.Cw1()
	a.Destruction = cellwise("destruction", field.DimRate, func(v []float64) float64 {
		nuT, fw, d := v[0], v[1], v[2]
		return cw1 * fw * nuT / (d * d)
	}, nuTilda, a.Fw, a.DTilda)
	return a
}

// Correct assembles and solves the nuTilda equation once, bounds the result
// and updates nut. A solve that stops short of its tolerance still leaves
// the model in a bounded state; the returned error then wraps
// dynamo.ErrNotConverged and carries the performance.
func (m *Model) Correct(in Inputs) (fvm.SolverPerformance, error) {
	if err := m.check(in); err != nil {
		return fvm.SolverPerformance{}, err
	}
	msh := in.Mesh
	c := m.coeffs

	m.history.Advance(in.TimeIndex, m.nuTilda.Internal, in.Dt)

	snapshot := m.nuTilda.Clone()
	aux := m.auxiliary(in, snapshot)
	m.last = aux

	alphaRho := in.alphaRho()
	gamma := fvm.Interpolate(msh, field.Mul(alphaRho, m.dnuTildaEff(snapshot, in.Nu)))
	gradNuTilda := fvm.GradScalar(msh, snapshot)

	n := msh.NumCells()
	explicit := make([]float64, n)
	implicit := make([]float64, n)
	cb2s := c.Cb2 / c.SigmaNut
	dynamo.ParallelFor(n, dynamo.MinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			ar := alphaRho.Internal[i]
			g := gradNuTilda.Internal[i]
			explicit[i] = ar * (aux.Production.Internal[i]*snapshot.Internal[i] + cb2s*g.Dot(g))
			implicit[i] = ar * aux.Destruction.Internal[i]
		}
	})

	mx := fvm.NewMatrix(msh)
	m.ddt.Add(mx, alphaRho.Internal, msh.Volumes, &m.history)
	fvm.Div(mx, msh, in.AlphaRhoPhi, m.nuTilda)
	fvm.Laplacian(mx, msh, gamma, m.nuTilda)
	fvm.Su(mx, msh, explicit)
	fvm.SuSp(mx, msh, implicit, snapshot.Internal)
	if m.relax > 0 && m.relax < 1 {
		mx.Relax(m.relax, snapshot.Internal)
	}

	perf, err := m.solver.Solve(mx, m.nuTilda.Name, m.nuTilda.Internal)

	bounded := field.Bound(m.nuTilda, 0)
	m.nuTilda.CorrectBoundary(msh.Shape())
	m.CorrectNut(in.Nu)

	entry := m.log.WithFields(logrus.Fields{
		"solver":     perf.Solver,
		"field":      perf.Field,
		"initial":    perf.InitialResidual,
		"final":      perf.FinalResidual,
		"iterations": perf.Iterations,
		"timeIndex":  in.TimeIndex,
	})
	if bounded > 0 {
		entry.WithField("cells", bounded).Debug("bounded negative nuTilda")
	}
	if err != nil {
		entry.Warn("nuTilda solve did not converge")
		return perf, fmt.Errorf("correct nuTilda: %w", err)
	}
	entry.Debug("solved nuTilda")
	return perf, nil
}

// CorrectNut recomputes chi and fv1 from the current nuTilda and updates
// nut from them.
func (m *Model) CorrectNut(nu *field.Scalar) {
	chi := m.coeffs.Chi(m.nuTilda, nu)
	m.CorrectNutFrom(m.coeffs.Fv1(chi))
}

// CorrectNutFrom sets nut = fv1 nuTilda on cells and boundary faces, clipped
// to [NutMin, NutMax].
func (m *Model) CorrectNutFrom(fv1 *field.Scalar) {
	lo, hi := m.coeffs.NutMin, m.coeffs.NutMax
	m.nut = field.Zip(fv1, m.nuTilda, "nut", field.DimKinematicViscosity, func(f, v float64) float64 {
		return math.Min(math.Max(f*v, lo), hi)
	})
}

// DnuTildaEff returns nuTilda/sigmaNut + nu.
func (m *Model) DnuTildaEff(nu *field.Scalar) *field.Scalar {
	return m.dnuTildaEff(m.nuTilda, nu)
}

func (m *Model) dnuTildaEff(nuTilda, nu *field.Scalar) *field.Scalar {
	s := m.coeffs.SigmaNut
	return cellwise("DnuTildaEff", field.DimKinematicViscosity, func(v []float64) float64 {
		return v[0]/s + v[1]
	}, nuTilda, nu)
}

// K estimates the turbulent kinetic energy. Length scales implementing
// KEstimator supply their own estimate.
func (m *Model) K(in Inputs) (*field.Scalar, error) {
	if err := m.check(in); err != nil {
		return nil, err
	}
	return m.k(in), nil
}

func (m *Model) k(in Inputs) *field.Scalar {
	c := m.coeffs
	gradU := fvm.GradVector(in.Mesh, in.U)
	chi := c.Chi(m.nuTilda, in.Nu)
	fv1 := c.Fv1(chi)

	if ke, ok := m.lengthScale.(KEstimator); ok {
		dTilda := m.lengthScale.DTilda(m.lengthInputs(in, chi, fv1, gradU))
		nut := field.Zip(fv1, m.nuTilda, "nut", field.DimKinematicViscosity, func(f, v float64) float64 { return f * v })
		return ke.K(nut, dTilda, c.Ck)
	}

	magS := field.Map(gradU, "magSymm", field.DimRate, func(t field.Tensor3) float64 { return t.Symm().Mag() })
	scale := math.Sqrt(2 / cMu)
	return cellwise("k", field.DimEnergy, func(v []float64) float64 {
		return math.Cbrt(v[0]) * v[1] * scale * v[2]
	}, fv1, m.nuTilda, magS)
}

// Epsilon estimates the dissipation rate from k.
func (m *Model) Epsilon(in Inputs) (*field.Scalar, error) {
	if err := m.check(in); err != nil {
		return nil, err
	}
	return m.epsilon(in, m.k(in)), nil
}

func (m *Model) epsilon(in Inputs, k *field.Scalar) *field.Scalar {
	fv1 := m.coeffs.Fv1(m.coeffs.Chi(m.nuTilda, in.Nu))
	sqrtCmu := math.Sqrt(cMu)
	return cellwise("epsilon", field.DimDissipation, func(v []float64) float64 {
		sk := sqrtCmu * v[1]
		return math.Sqrt(v[0]) * sk * sk / (v[2] + small)
	}, fv1, k, m.nuTilda)
}

// Omega estimates the specific dissipation rate epsilon/(betaStar k).
func (m *Model) Omega(in Inputs) (*field.Scalar, error) {
	if err := m.check(in); err != nil {
		return nil, err
	}
	k := m.k(in)
	eps := m.epsilon(in, k)
	return field.Zip(eps, k, "omega", field.DimRate, func(e, kv float64) float64 {
		return e / (betaStar * (kv + small))
	}), nil
}

// shapeOf recovers the patch layout of a field for conformance checks that
// only compare sizes.
func shapeOf(f *field.Scalar) field.Shape {
	s := field.Shape{Cells: len(f.Internal), Patches: make([]field.PatchShape, len(f.Boundary))}
	for i, p := range f.Boundary {
		s.Patches[i] = field.PatchShape{Name: p.Name, Owners: make([]int, len(p.Values))}
	}
	return s
}
