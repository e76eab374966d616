package analysis

import (
	"math"
	"sort"

	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/mesh"
)

// ProfilePoint is one station of a line-averaged profile.
type ProfilePoint struct {
	X     float64
	Value float64
	Cells int
}

// Profile averages f over cells sharing a centre coordinate along axis
// (0, 1 or 2), weighting by cell volume. Points come back in increasing X.
func Profile(m *mesh.Mesh, f *field.Scalar, axis int) []ProfilePoint {
	if axis < 0 || axis > 2 || len(f.Internal) != m.NumCells() {
		return nil
	}

	type acc struct {
		sum, vol float64
		n        int
	}
	stations := make(map[int64]*acc)
	coord := make(map[int64]float64)
	for c, x := range m.Centres {
		key := int64(math.Round(x[axis] * 1e9))
		a, ok := stations[key]
		if !ok {
			a = &acc{}
			stations[key] = a
			coord[key] = x[axis]
		}
		v := m.Volumes[c]
		a.sum += f.Internal[c] * v
		a.vol += v
		a.n++
	}

	out := make([]ProfilePoint, 0, len(stations))
	for key, a := range stations {
		out = append(out, ProfilePoint{X: coord[key], Value: a.sum / a.vol, Cells: a.n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

// Values returns the profile values in order, for plotting.
func Values(p []ProfilePoint) []float64 {
	v := make([]float64, len(p))
	for i, pt := range p {
		v[i] = pt.Value
	}
	return v
}
