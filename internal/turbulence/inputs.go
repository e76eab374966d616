package turbulence

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/mesh"
)

// Inputs are the fields the flow solver lends the model for one call.
// Alpha and Rho may be nil, meaning unity.
type Inputs struct {
	Mesh        *mesh.Mesh
	Alpha       *field.Scalar
	Rho         *field.Scalar
	U           *field.Vector
	AlphaRhoPhi *fvm.Surface
	Nu          *field.Scalar

	Dt        float64
	TimeIndex int
}

// Validate checks presence and layout of every input.
func (in Inputs) Validate() error {
	if in.Mesh == nil || in.U == nil || in.AlphaRhoPhi == nil || in.Nu == nil {
		return fmt.Errorf("turbulence inputs: mesh, U, alphaRhoPhi and nu are required: %w", dynamo.ErrInvalidState)
	}
	shape := in.Mesh.Shape()
	errs := []error{in.U.Conforms(shape), in.Nu.Conforms(shape)}
	if in.Alpha != nil {
		errs = append(errs, in.Alpha.Conforms(shape))
	}
	if in.Rho != nil {
		errs = append(errs, in.Rho.Conforms(shape))
	}
	if len(in.AlphaRhoPhi.Internal) != len(in.Mesh.Faces) || len(in.AlphaRhoPhi.Boundary) != len(in.Mesh.Patches) {
		errs = append(errs, fmt.Errorf("flux %s: %d faces, mesh has %d: %w",
			in.AlphaRhoPhi.Name, len(in.AlphaRhoPhi.Internal), len(in.Mesh.Faces), dynamo.ErrDimensionMismatch))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	for c, v := range in.Nu.Internal {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("nu in cell %d is %g, must be positive and finite: %w", c, v, dynamo.ErrInvalidState)
		}
	}
	if !(in.Dt > 0) {
		return &dynamo.ConfigError{Key: "dt", Value: in.Dt, Reason: "must be positive"}
	}
	return nil
}

// alphaRho returns alpha*rho, or a unit field when both are absent.
func (in Inputs) alphaRho() *field.Scalar {
	one := field.Uniform("alphaRho", field.DimDensity, in.Mesh.Shape(), 1.0)
	switch {
	case in.Alpha != nil && in.Rho != nil:
		return field.Mul(in.Alpha, in.Rho)
	case in.Rho != nil:
		return in.Rho
	case in.Alpha != nil:
		return field.Mul(in.Alpha, one)
	}
	return one
}
