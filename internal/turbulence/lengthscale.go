package turbulence

import (
	"fmt"
	"math"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
)

// LengthInputs is what a length scale may combine into dTilda. Every field
// is borrowed for the duration of one call.
type LengthInputs struct {
	Y     *field.Scalar // wall distance
	Delta *field.Scalar // grid filter width
	Chi   *field.Scalar
	Fv1   *field.Scalar
	Nu    *field.Scalar
	GradU *field.Tensor
}

// LengthScale computes the destruction length scale dTilda.
//
// Implementations must not touch chi, fv1 or any other input; swapping one
// length scale for another changes dTilda and what depends on it, nothing
// else.
type LengthScale interface {
	Name() string
	DTilda(in LengthInputs) *field.Scalar
}

// KEstimator is implemented by length scales that supply their own k
// estimate from nut and dTilda.
type KEstimator interface {
	K(nut, dTilda *field.Scalar, ck float64) *field.Scalar
}

// WallDistance is the RAS length scale: dTilda = y.
type WallDistance struct{}

func (WallDistance) Name() string { return "wallDistance" }

func (WallDistance) DTilda(in LengthInputs) *field.Scalar {
	return field.Map(in.Y, "dTilda", field.DimLength, func(y float64) float64 {
		return math.Max(y, small)
	})
}

// Policy selects how Hybrid blends wall distance with the filter width.
type Policy int

const (
	// MinPolicy is the original DES limiter min(y, CDES Delta).
	MinPolicy Policy = iota
	// DelayedPolicy shields attached boundary layers with the DDES fd
	// function.
	DelayedPolicy
)

func (p Policy) String() string {
	if p == DelayedPolicy {
		return "delayed"
	}
	return "min"
}

// ParsePolicy is the inverse of Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "min", "":
		return MinPolicy, nil
	case "delayed":
		return DelayedPolicy, nil
	}
	return MinPolicy, &dynamo.ConfigError{Key: "policy", Value: s, Reason: "must be min or delayed"}
}

// Hybrid is the RAS/LES length scale of the DES family.
type Hybrid struct {
	CDES   float64
	Kappa  float64
	Policy Policy
}

// NewHybrid validates the blending constant.
func NewHybrid(cdes, kappa float64, policy Policy) (*Hybrid, error) {
	if !(cdes > 0) {
		return nil, &dynamo.ConfigError{Key: "CDES", Value: cdes, Reason: "must be positive"}
	}
	if !(kappa > 0) {
		return nil, &dynamo.ConfigError{Key: "kappa", Value: kappa, Reason: "must be positive"}
	}
	return &Hybrid{CDES: cdes, Kappa: kappa, Policy: policy}, nil
}

func (h *Hybrid) Name() string { return fmt.Sprintf("hybrid(%s)", h.Policy) }

func (h *Hybrid) DTilda(in LengthInputs) *field.Scalar {
	if h.Policy == DelayedPolicy {
		return h.delayed(in)
	}
	return cellwise("dTilda", field.DimLength, func(v []float64) float64 {
		return math.Max(math.Min(v[0], h.CDES*v[1]), small)
	}, in.Y, in.Delta)
}

func (h *Hybrid) delayed(in LengthInputs) *field.Scalar {
	magGradU := field.Map(in.GradU, "magGradU", field.DimRate, func(t field.Tensor3) float64 { return t.Mag() })
	return cellwise("dTilda", field.DimLength, func(v []float64) float64 {
		y, delta, chi, fv1, nu, g := v[0], v[1], v[2], v[3], v[4], v[5]
		if math.IsInf(y, 1) {
			return math.Max(h.CDES*delta, small)
		}
		ky := h.Kappa * y
		rd := nu * (chi*fv1 + 1) / (math.Max(g, small) * ky * ky)
		if math.IsNaN(rd) {
			rd = 0
		}
		fd := 1 - math.Tanh(math.Pow(8*rd, 3))
		return math.Max(y-fd*math.Max(0, y-h.CDES*delta), small)
	}, in.Y, in.Delta, in.Chi, in.Fv1, in.Nu, magGradU)
}

// K returns (nut/(ck dTilda))^2.
func (h *Hybrid) K(nut, dTilda *field.Scalar, ck float64) *field.Scalar {
	return field.Zip(nut, dTilda, "k", field.DimEnergy, func(n, d float64) float64 {
		v := n / (ck * d)
		return v * v
	})
}
