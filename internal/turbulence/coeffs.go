// Package turbulence implements the Spalart-Allmaras one-equation closure
// with an optional velocity-helicity correction.
//
// A [Model] owns the modified viscosity nuTilda and the eddy viscosity nut.
// Everything else it reads is borrowed per call through [Inputs]: the mesh
// (and its wall distance), velocity, flux, density, phase fraction and
// molecular viscosity. The length scale dTilda is the single extension
// point, supplied as a [LengthScale].
package turbulence

import (
	"fmt"
	"math"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/sirupsen/logrus"
)

const (
	// rMax bounds the destruction ratio r.
	rMax = 10.0
	// small guards denominators the way a solver-wide SMALL would.
	small = 1e-15
	// cMu is used by the k and epsilon estimates.
	cMu = 0.09
	// betaStar converts epsilon and k into omega.
	betaStar = 0.09
)

// Coeffs is the closure coefficient set. Cw1 is derived on demand and has
// no field of its own.
type Coeffs struct {
	SigmaNut float64 `yaml:"sigmaNut" ini:"sigmaNut"`
	Kappa    float64 `yaml:"kappa" ini:"kappa"`
	Cb1      float64 `yaml:"Cb1" ini:"Cb1"`
	Cb2      float64 `yaml:"Cb2" ini:"Cb2"`
	Cw2      float64 `yaml:"Cw2" ini:"Cw2"`
	Cw3      float64 `yaml:"Cw3" ini:"Cw3"`
	Cv1      float64 `yaml:"Cv1" ini:"Cv1"`
	Cs       float64 `yaml:"Cs" ini:"Cs"`
	Ck       float64 `yaml:"ck" ini:"ck"`
	Ct3      float64 `yaml:"Ct3" ini:"Ct3"`
	Ct4      float64 `yaml:"Ct4" ini:"Ct4"`
	Ft2      bool    `yaml:"ft2" ini:"ft2"`

	// Helicity switches the velocity-helicity production correction.
	Helicity bool    `yaml:"helicity" ini:"helicity"`
	Ch       float64 `yaml:"Ch" ini:"Ch"`

	NutMin float64 `yaml:"nutMin" ini:"nutMin"`
	NutMax float64 `yaml:"nutMax" ini:"nutMax"`
}

// DefaultCoeffs returns the published coefficient values.
func DefaultCoeffs() Coeffs {
	return Coeffs{
		SigmaNut: 0.66666,
		Kappa:    0.41,
		Cb1:      0.1355,
		Cb2:      0.622,
		Cw2:      0.3,
		Cw3:      2.0,
		Cv1:      7.1,
		Cs:       0.3,
		Ck:       0.07,
		Ct3:      1.2,
		Ct4:      0.5,
		Ft2:      false,
		Helicity: true,
		Ch:       1.0,
		NutMin:   0,
		NutMax:   1e5,
	}
}

// Cw1 = Cb1/kappa^2 + (1 + Cb2)/sigmaNut.
func (c Coeffs) Cw1() float64 {
	return c.Cb1/(c.Kappa*c.Kappa) + (1+c.Cb2)/c.SigmaNut
}

// Validate returns a *dynamo.ConfigError for the first coefficient out of
// range.
func (c Coeffs) Validate() error {
	positive := []struct {
		key string
		v   float64
	}{
		{"sigmaNut", c.SigmaNut},
		{"kappa", c.Kappa},
		{"Cv1", c.Cv1},
		{"Cw3", c.Cw3},
		{"ck", c.Ck},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return &dynamo.ConfigError{Key: p.key, Value: p.v, Reason: "must be positive and finite"}
		}
	}

	nonNegative := []struct {
		key string
		v   float64
	}{
		{"Cb1", c.Cb1},
		{"Cb2", c.Cb2},
		{"Cw2", c.Cw2},
		{"Cs", c.Cs},
		{"Ct3", c.Ct3},
		{"Ct4", c.Ct4},
		{"Ch", c.Ch},
		{"nutMin", c.NutMin},
	}
	for _, p := range nonNegative {
		if !(p.v >= 0) || math.IsInf(p.v, 0) {
			return &dynamo.ConfigError{Key: p.key, Value: p.v, Reason: "must be non-negative and finite"}
		}
	}

	if !(c.NutMax > c.NutMin) {
		return &dynamo.ConfigError{Key: "nutMax", Value: c.NutMax, Reason: "must exceed nutMin"}
	}
	return nil
}

// Fields returns the coefficients, including the derived Cw1, as log fields.
func (c Coeffs) Fields() logrus.Fields {
	return logrus.Fields{
		"sigmaNut": c.SigmaNut,
		"kappa":    c.Kappa,
		"Cb1":      c.Cb1,
		"Cb2":      c.Cb2,
		"Cw1":      c.Cw1(),
		"Cw2":      c.Cw2,
		"Cw3":      c.Cw3,
		"Cv1":      c.Cv1,
		"Cs":       c.Cs,
		"ck":       c.Ck,
		"ft2":      c.Ft2,
		"Ct3":      c.Ct3,
		"Ct4":      c.Ct4,
		"helicity": c.Helicity,
		"Ch":       c.Ch,
	}
}

// Set assigns the named scalar coefficient, using the names Fields reports.
// Switches and the derived Cw1 cannot be set this way.
func (c *Coeffs) Set(name string, v float64) error {
	ptrs := map[string]*float64{
		"sigmaNut": &c.SigmaNut,
		"kappa":    &c.Kappa,
		"Cb1":      &c.Cb1,
		"Cb2":      &c.Cb2,
		"Cw2":      &c.Cw2,
		"Cw3":      &c.Cw3,
		"Cv1":      &c.Cv1,
		"Cs":       &c.Cs,
		"ck":       &c.Ck,
		"Ct3":      &c.Ct3,
		"Ct4":      &c.Ct4,
		"Ch":       &c.Ch,
		"nutMin":   &c.NutMin,
		"nutMax":   &c.NutMax,
	}
	p, ok := ptrs[name]
	if !ok {
		return fmt.Errorf("coefficient %q: %w", name, dynamo.ErrUnknownComponent)
	}
	*p = v
	return nil
}
