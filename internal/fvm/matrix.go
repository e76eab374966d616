// Package fvm assembles and solves finite-volume equations on a
// face-addressed mesh.
//
// A [Matrix] uses lower/diagonal/upper storage: Diag per cell, and Upper and
// Lower per internal face. Upper[f] multiplies x[neighbour] in the owner
// row; Lower[f] multiplies x[owner] in the neighbour row. Boundary
// contributions are folded into Diag and Source during assembly, so the
// system is always Diag/Upper/Lower · x = Source.
//
// Operators only ever add to the matrix, so several can be stacked to build
// one equation.
package fvm

import (
	"math"

	"github.com/san-kum/nutilda/internal/mesh"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is an LDU system for one scalar field.
type Matrix struct {
	Diag   []float64
	Upper  []float64
	Lower  []float64
	Source []float64

	owner     []int
	neighbour []int
	rows      [][]offDiag
}

type offDiag struct {
	face  int
	other int
	upper bool
}

// NewMatrix allocates an empty system on m.
func NewMatrix(m *mesh.Mesh) *Matrix {
	nc, nf := m.NumCells(), len(m.Faces)
	mx := &Matrix{
		Diag:      make([]float64, nc),
		Upper:     make([]float64, nf),
		Lower:     make([]float64, nf),
		Source:    make([]float64, nc),
		owner:     make([]int, nf),
		neighbour: make([]int, nf),
	}
	for i, f := range m.Faces {
		mx.owner[i] = f.Owner
		mx.neighbour[i] = f.Neighbour
	}
	return mx
}

// Size returns the number of unknowns.
func (mx *Matrix) Size() int { return len(mx.Diag) }

// Amul sets y = A x and returns y.
func (mx *Matrix) Amul(x, y []float64) []float64 {
	for i := range y {
		y[i] = mx.Diag[i] * x[i]
	}
	for f, o := range mx.owner {
		n := mx.neighbour[f]
		y[o] += mx.Upper[f] * x[n]
		y[n] += mx.Lower[f] * x[o]
	}
	return y
}

// Residual sets r = b - A x and returns r.
func (mx *Matrix) Residual(x, r []float64) []float64 {
	mx.Amul(x, r)
	floats.SubTo(r, mx.Source, r)
	return r
}

// SumOffDiagMag returns the per-row sum of off-diagonal magnitudes.
func (mx *Matrix) SumOffDiagMag() []float64 {
	s := make([]float64, len(mx.Diag))
	for f, o := range mx.owner {
		s[o] += math.Abs(mx.Upper[f])
		s[mx.neighbour[f]] += math.Abs(mx.Lower[f])
	}
	return s
}

// Relax under-relaxes the system about psi. The diagonal is first raised
// to diagonal dominance, then divided by alpha; the change is balanced on
// the source so that the converged solution is unaffected.
func (mx *Matrix) Relax(alpha float64, psi []float64) {
	if alpha <= 0 || alpha >= 1 {
		return
	}
	off := mx.SumOffDiagMag()
	for i, d := range mx.Diag {
		dNew := math.Max(math.Abs(d), off[i]) / alpha
		mx.Source[i] += (dNew - d) * psi[i]
		mx.Diag[i] = dNew
	}
}

// normFactor is the scaling used to make residuals comparable across
// fields: sum(|Ax - A xRef| + |b - A xRef|) with xRef the mean of x.
func (mx *Matrix) normFactor(x, ax []float64) float64 {
	xRef := floats.Sum(x) / float64(len(x))
	rowSum := make([]float64, len(x))
	copy(rowSum, mx.Diag)
	for f, o := range mx.owner {
		rowSum[o] += mx.Upper[f]
		rowSum[mx.neighbour[f]] += mx.Lower[f]
	}
	norm := 0.0
	for i := range x {
		pA := rowSum[i] * xRef
		norm += math.Abs(ax[i]-pA) + math.Abs(mx.Source[i]-pA)
	}
	return norm + 1e-20
}

// NormalisedResidual returns sum|b - Ax| / normFactor.
func (mx *Matrix) NormalisedResidual(x []float64) float64 {
	ax := mx.Amul(x, make([]float64, len(x)))
	r := make([]float64, len(x))
	floats.SubTo(r, mx.Source, ax)
	return floats.Norm(r, 1) / mx.normFactor(x, ax)
}

// Dense returns the system matrix as a gonum dense matrix.
func (mx *Matrix) Dense() *mat.Dense {
	n := len(mx.Diag)
	a := mat.NewDense(n, n, nil)
	for i, d := range mx.Diag {
		a.Set(i, i, d)
	}
	for f, o := range mx.owner {
		n := mx.neighbour[f]
		a.Set(o, n, a.At(o, n)+mx.Upper[f])
		a.Set(n, o, a.At(n, o)+mx.Lower[f])
	}
	return a
}

// rowsOf builds per-cell off-diagonal adjacency for row-wise sweeps.
func (mx *Matrix) rowsOf() [][]offDiag {
	if mx.rows != nil {
		return mx.rows
	}
	rows := make([][]offDiag, len(mx.Diag))
	for f, o := range mx.owner {
		n := mx.neighbour[f]
		rows[o] = append(rows[o], offDiag{face: f, other: n, upper: true})
		rows[n] = append(rows[n], offDiag{face: f, other: o, upper: false})
	}
	mx.rows = rows
	return rows
}
