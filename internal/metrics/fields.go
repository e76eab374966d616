package metrics

import (
	"math"
	"sort"

	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/sim"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises the cell values of a scalar field.
type Stats struct {
	Min, Max     float64
	Mean, StdDev float64
	Median, P95  float64
}

// FieldStats computes Stats over the internal values of f, weighted by
// cell volume when weights is non-nil. The scratch pool may be nil.
func FieldStats(f *field.Scalar, weights []float64, pool *sim.BufferPool) Stats {
	n := len(f.Internal)
	if n == 0 {
		return Stats{}
	}

	var buf []float64
	if pool != nil && pool.Size() == n {
		buf = pool.GetAndCopy(f.Internal)
		defer pool.Put(buf)
	} else {
		buf = append([]float64(nil), f.Internal...)
	}

	var st Stats
	st.Mean, st.StdDev = stat.PopMeanStdDev(f.Internal, weights)

	// Quantiles are unweighted: sorting would have to carry the weights.
	sort.Float64s(buf)
	st.Min, st.Max = buf[0], buf[n-1]
	st.Median = stat.Quantile(0.5, stat.Empirical, buf, nil)
	st.P95 = stat.Quantile(0.95, stat.Empirical, buf, nil)
	return st
}

// ViscosityRatio tracks the peak nut/nu seen over the run.
type ViscosityRatio struct {
	peak float64
}

func NewViscosityRatio() *ViscosityRatio { return &ViscosityRatio{} }

func (v *ViscosityRatio) Name() string { return "nut_ratio_max" }

func (v *ViscosityRatio) Observe(s sim.Step) {
	if s.Nut == nil || s.Inputs.Nu == nil {
		return
	}
	for i, nut := range s.Nut.Internal {
		nu := s.Inputs.Nu.Internal[i]
		if nu > 0 {
			v.peak = math.Max(v.peak, nut/nu)
		}
	}
}

func (v *ViscosityRatio) Value() float64 { return v.peak }

func (v *ViscosityRatio) Reset() { v.peak = 0 }

// MeanNuTilda is the volume-weighted mean of nuTilda at the latest step.
type MeanNuTilda struct {
	mean float64
	pool *sim.BufferPool
}

func NewMeanNuTilda() *MeanNuTilda { return &MeanNuTilda{} }

func (m *MeanNuTilda) Name() string { return "nuTilda_mean" }

func (m *MeanNuTilda) Observe(s sim.Step) {
	if s.NuTilda == nil {
		return
	}
	var vols []float64
	if s.Inputs.Mesh != nil {
		vols = s.Inputs.Mesh.Volumes
	}
	if m.pool == nil || m.pool.Size() != len(s.NuTilda.Internal) {
		m.pool = sim.NewBufferPool(len(s.NuTilda.Internal))
	}
	m.mean = FieldStats(s.NuTilda, vols, m.pool).Mean
}

func (m *MeanNuTilda) Value() float64 { return m.mean }

func (m *MeanNuTilda) Reset() { m.mean = 0 }

// ClippedCells counts cells whose nuTilda sits exactly at the zero bound
// after the latest step.
type ClippedCells struct {
	count int
}

func NewClippedCells() *ClippedCells { return &ClippedCells{} }

func (c *ClippedCells) Name() string { return "clipped_cells" }

func (c *ClippedCells) Observe(s sim.Step) {
	if s.NuTilda == nil {
		return
	}
	c.count = 0
	for _, v := range s.NuTilda.Internal {
		if v == 0 {
			c.count++
		}
	}
}

func (c *ClippedCells) Value() float64 { return float64(c.count) }

func (c *ClippedCells) Reset() { c.count = 0 }

// Standard returns the metrics attached to every run.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewResidual(),
		NewResidualDrop(),
		NewSolveFailures(),
		NewViscosityRatio(),
		NewMeanNuTilda(),
		NewClippedCells(),
	}
}
