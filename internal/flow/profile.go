// Package flow supplies prescribed velocity fields in place of a momentum
// solver, so the closure can be driven on its own.
package flow

import (
	"math"

	"github.com/san-kum/nutilda/internal/field"
)

// Profile is a steady velocity distribution.
type Profile interface {
	Name() string
	Velocity(x field.Vec3) field.Vec3
}

// Uniform is a constant velocity.
type Uniform struct {
	U field.Vec3
}

func NewUniform(u field.Vec3) *Uniform {
	return &Uniform{U: u}
}

func (u *Uniform) Name() string { return "uniform" }

func (u *Uniform) Velocity(field.Vec3) field.Vec3 { return u.U }

// Couette is plane shear between a fixed wall at y = 0 and a wall at
// y = Height moving with Speed along x.
type Couette struct {
	Speed  float64
	Height float64
}

func NewCouette(speed, height float64) *Couette {
	return &Couette{Speed: speed, Height: height}
}

func (c *Couette) Name() string { return "couette" }

func (c *Couette) Velocity(x field.Vec3) field.Vec3 {
	return field.Vec3{c.Speed * x[1] / c.Height, 0, 0}
}

// Poiseuille is the parabolic channel profile with centreline speed UMax.
type Poiseuille struct {
	UMax   float64
	Height float64
}

func NewPoiseuille(uMax, height float64) *Poiseuille {
	return &Poiseuille{UMax: uMax, Height: height}
}

func (p *Poiseuille) Name() string { return "poiseuille" }

func (p *Poiseuille) Velocity(x field.Vec3) field.Vec3 {
	y := x[1]
	return field.Vec3{4 * p.UMax * y * (p.Height - y) / (p.Height * p.Height), 0, 0}
}

// Swirl is a helical channel flow: the streamwise and spanwise components
// rotate across the channel so velocity and vorticity stay aligned.
type Swirl struct {
	Axial  float64
	Swirl  float64
	Height float64
}

func NewSwirl(axial, swirl, height float64) *Swirl {
	return &Swirl{Axial: axial, Swirl: swirl, Height: height}
}

func (s *Swirl) Name() string { return "swirl" }

func (s *Swirl) Velocity(x field.Vec3) field.Vec3 {
	k := math.Pi * x[1] / s.Height
	return field.Vec3{s.Axial * math.Sin(k), 0, s.Swirl * math.Cos(k)}
}
