package flow

import (
	"fmt"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/mesh"
	"github.com/san-kum/nutilda/internal/turbulence"
)

// Flow evaluates a profile on a mesh and hands the closure its inputs.
// Fields are rebuilt whenever the mesh geometry changes.
type Flow struct {
	mesh    *mesh.Mesh
	profile Profile
	nu      float64

	version int
	u       *field.Vector
	phi     *fvm.Surface
	nuField *field.Scalar
}

// New checks the molecular viscosity and evaluates the profile once.
func New(m *mesh.Mesh, p Profile, nu float64) (*Flow, error) {
	if m == nil || p == nil {
		return nil, fmt.Errorf("flow: mesh and profile are required: %w", dynamo.ErrInvalidConfig)
	}
	if !(nu > 0) {
		return nil, &dynamo.ConfigError{Key: "nu", Value: nu, Reason: "must be positive"}
	}
	f := &Flow{mesh: m, profile: p, nu: nu, version: -1}
	f.update()
	return f, nil
}

func (f *Flow) update() {
	if f.version == f.mesh.Version() {
		return
	}
	m := f.mesh
	u := field.New[field.Vec3]("U", field.DimVelocity, m.Shape())
	for c, x := range m.Centres {
		u.Internal[c] = f.profile.Velocity(x)
	}
	for p, patch := range m.Patches {
		u.Boundary[p].Kind = field.FixedValue
		for i, face := range patch.Faces {
			u.Boundary[p].Values[i] = f.profile.Velocity(face.Centre)
		}
	}
	f.u = u
	f.phi = fvm.FluxOf(m, u)
	f.nuField = field.Uniform("nu", field.DimKinematicViscosity, m.Shape(), f.nu)
	f.version = m.Version()
}

func (f *Flow) Profile() Profile       { return f.profile }
func (f *Flow) Mesh() *mesh.Mesh       { return f.mesh }
func (f *Flow) Nu() float64            { return f.nu }
func (f *Flow) U() *field.Vector       { f.update(); return f.u }
func (f *Flow) Phi() *fvm.Surface      { f.update(); return f.phi }
func (f *Flow) NuField() *field.Scalar { f.update(); return f.nuField }

// Inputs returns the closure inputs for one call. The flow is
// incompressible and single phase, so alpha and rho are left unset.
func (f *Flow) Inputs(dt float64, timeIndex int) turbulence.Inputs {
	f.update()
	return turbulence.Inputs{
		Mesh:        f.mesh,
		U:           f.u,
		AlphaRhoPhi: f.phi,
		Nu:          f.nuField,
		Dt:          dt,
		TimeIndex:   timeIndex,
	}
}
