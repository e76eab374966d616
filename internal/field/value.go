package field

import "math"

// Vec3 is a Cartesian vector.
type Vec3 [3]float64

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a[0] * s, a[1] * s, a[2] * s}
}
func (a Vec3) Dot(b Vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func (a Vec3) Mag() float64       { return math.Sqrt(a.Dot(a)) }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Outer returns a ⊗ b, i.e. T[i][j] = a[i]*b[j].
func (a Vec3) Outer(b Vec3) Tensor3 {
	var t Tensor3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[3*i+j] = a[i] * b[j]
		}
	}
	return t
}

// Tensor3 is a row-major 3x3 tensor. For a velocity gradient the entry
// (i, j) holds dU_j/dx_i.
type Tensor3 [9]float64

func (t Tensor3) At(i, j int) float64 { return t[3*i+j] }

func (t Tensor3) T() Tensor3 {
	return Tensor3{
		t[0], t[3], t[6],
		t[1], t[4], t[7],
		t[2], t[5], t[8],
	}
}

func (t Tensor3) Add(o Tensor3) Tensor3 {
	var r Tensor3
	for i := range t {
		r[i] = t[i] + o[i]
	}
	return r
}

func (t Tensor3) Scale(s float64) Tensor3 {
	var r Tensor3
	for i := range t {
		r[i] = t[i] * s
	}
	return r
}

// Symm returns the symmetric part (T + T^T)/2.
func (t Tensor3) Symm() Tensor3 { return t.Add(t.T()).Scale(0.5) }

// Skew returns the antisymmetric part (T - T^T)/2.
func (t Tensor3) Skew() Tensor3 { return t.Add(t.T().Scale(-1)).Scale(0.5) }

// DoubleDot returns the full contraction t:o.
func (t Tensor3) DoubleDot(o Tensor3) float64 {
	s := 0.0
	for i := range t {
		s += t[i] * o[i]
	}
	return s
}

// Mag returns sqrt(t:t).
func (t Tensor3) Mag() float64 { return math.Sqrt(t.DoubleDot(t)) }

// Curl returns the vorticity vector of a velocity gradient stored as
// dU_j/dx_i.
func (t Tensor3) Curl() Vec3 {
	return Vec3{
		t.At(1, 2) - t.At(2, 1),
		t.At(2, 0) - t.At(0, 2),
		t.At(0, 1) - t.At(1, 0),
	}
}
