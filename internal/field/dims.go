package field

import (
	"fmt"

	"github.com/san-kum/nutilda/internal/dynamo"
	"gonum.org/v1/gonum/unit"
)

// Dimension sets used by the closure.
var (
	Dimless               = unit.Dimensions{}
	DimLength             = unit.Dimensions{unit.LengthDim: 1}
	DimVelocity           = unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -1}
	DimRate               = unit.Dimensions{unit.TimeDim: -1}
	DimKinematicViscosity = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -1}
	DimDensity            = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -3}
	DimMassFlux           = unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -1}
	DimEnergy             = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -2}
	DimDissipation        = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -3}
)

// MulDims returns the dimensions of a product.
func MulDims(a, b unit.Dimensions) unit.Dimensions {
	return unit.New(1, a).Mul(unit.New(1, b)).Dimensions()
}

// DivDims returns the dimensions of a quotient.
func DivDims(a, b unit.Dimensions) unit.Dimensions {
	return unit.New(1, a).Div(unit.New(1, b)).Dimensions()
}

// SameDims reports whether a and b describe the same physical quantity.
func SameDims(a, b unit.Dimensions) bool {
	return unit.DimensionsMatch(unit.New(1, a), unit.New(1, b))
}

// CheckDims returns ErrDimensionMismatch wrapped with both operands when
// their dimensions differ.
func CheckDims(op string, a, b unit.Dimensions) error {
	if SameDims(a, b) {
		return nil
	}
	return fmt.Errorf("%s: [%v] vs [%v]: %w", op, a, b, dynamo.ErrDimensionMismatch)
}

func cloneDims(d unit.Dimensions) unit.Dimensions {
	c := make(unit.Dimensions, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}
