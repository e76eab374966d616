package field

import (
	"fmt"
	"math"

	"github.com/san-kum/nutilda/internal/dynamo"
	"gonum.org/v1/gonum/unit"
)

// PatchKind selects how a boundary patch obtains its face values.
type PatchKind int

const (
	// Calculated patches are written by whoever owns the field.
	Calculated PatchKind = iota
	// FixedValue patches hold prescribed face values.
	FixedValue
	// ZeroGradient patches copy the owner-cell value.
	ZeroGradient
)

func (k PatchKind) String() string {
	switch k {
	case FixedValue:
		return "fixedValue"
	case ZeroGradient:
		return "zeroGradient"
	default:
		return "calculated"
	}
}

// ParsePatchKind is the inverse of PatchKind.String.
func ParsePatchKind(s string) (PatchKind, error) {
	switch s {
	case "fixedValue":
		return FixedValue, nil
	case "zeroGradient":
		return ZeroGradient, nil
	case "calculated", "":
		return Calculated, nil
	}
	return Calculated, fmt.Errorf("unknown patch kind %q", s)
}

// PatchShape describes one boundary patch: its name and the owner cell of
// each of its faces.
type PatchShape struct {
	Name   string
	Owners []int
}

// Shape is the part of a mesh a field needs to size itself.
type Shape struct {
	Cells   int
	Patches []PatchShape
}

// Patch holds the boundary values of a field on one mesh patch.
type Patch[T any] struct {
	Name   string
	Kind   PatchKind
	Values []T
}

// Field is a cell-centred field with boundary patch values.
type Field[T any] struct {
	Name     string
	Dims     unit.Dimensions
	Internal []T
	Boundary []Patch[T]
}

type (
	Scalar = Field[float64]
	Vector = Field[Vec3]
	Tensor = Field[Tensor3]
)

// New allocates a zero field laid out on shape. All patches start as
// Calculated.
func New[T any](name string, dims unit.Dimensions, shape Shape) *Field[T] {
	f := &Field[T]{
		Name:     name,
		Dims:     cloneDims(dims),
		Internal: make([]T, shape.Cells),
		Boundary: make([]Patch[T], len(shape.Patches)),
	}
	for i, p := range shape.Patches {
		f.Boundary[i] = Patch[T]{Name: p.Name, Kind: Calculated, Values: make([]T, len(p.Owners))}
	}
	return f
}

// Uniform returns a field with every cell and face set to v.
func Uniform[T any](name string, dims unit.Dimensions, shape Shape, v T) *Field[T] {
	f := New[T](name, dims, shape)
	f.Fill(v)
	return f
}

// Fill sets every internal and boundary value to v.
func (f *Field[T]) Fill(v T) {
	for i := range f.Internal {
		f.Internal[i] = v
	}
	for p := range f.Boundary {
		for i := range f.Boundary[p].Values {
			f.Boundary[p].Values[i] = v
		}
	}
}

// Clone returns a deep copy.
func (f *Field[T]) Clone() *Field[T] {
	c := &Field[T]{
		Name:     f.Name,
		Dims:     cloneDims(f.Dims),
		Internal: make([]T, len(f.Internal)),
		Boundary: make([]Patch[T], len(f.Boundary)),
	}
	copy(c.Internal, f.Internal)
	for i, p := range f.Boundary {
		c.Boundary[i] = Patch[T]{Name: p.Name, Kind: p.Kind, Values: make([]T, len(p.Values))}
		copy(c.Boundary[i].Values, p.Values)
	}
	return c
}

// Rename sets the name and returns the field.
func (f *Field[T]) Rename(name string) *Field[T] {
	f.Name = name
	return f
}

// Patch returns the patch called name, or nil.
func (f *Field[T]) Patch(name string) *Patch[T] {
	for i := range f.Boundary {
		if f.Boundary[i].Name == name {
			return &f.Boundary[i]
		}
	}
	return nil
}

// SetPatch assigns kind and a uniform value to the named patch.
func (f *Field[T]) SetPatch(name string, kind PatchKind, v T) error {
	p := f.Patch(name)
	if p == nil {
		return fmt.Errorf("field %s: no patch %q", f.Name, name)
	}
	p.Kind = kind
	for i := range p.Values {
		p.Values[i] = v
	}
	return nil
}

// SetKinds assigns patch kinds in patch order.
func (f *Field[T]) SetKinds(kinds []PatchKind) {
	for i := range f.Boundary {
		if i < len(kinds) {
			f.Boundary[i].Kind = kinds[i]
		}
	}
}

// Kinds returns the patch kinds in patch order.
func (f *Field[T]) Kinds() []PatchKind {
	k := make([]PatchKind, len(f.Boundary))
	for i, p := range f.Boundary {
		k[i] = p.Kind
	}
	return k
}

// CorrectBoundary re-evaluates ZeroGradient patches from owner cells.
func (f *Field[T]) CorrectBoundary(shape Shape) {
	for p := range f.Boundary {
		if f.Boundary[p].Kind != ZeroGradient || p >= len(shape.Patches) {
			continue
		}
		for i, c := range shape.Patches[p].Owners {
			f.Boundary[p].Values[i] = f.Internal[c]
		}
	}
}

// Conforms checks f is laid out on shape.
func (f *Field[T]) Conforms(shape Shape) error {
	if len(f.Internal) != shape.Cells {
		return fmt.Errorf("field %s: %d cells, mesh has %d: %w", f.Name, len(f.Internal), shape.Cells, dynamo.ErrDimensionMismatch)
	}
	if len(f.Boundary) != len(shape.Patches) {
		return fmt.Errorf("field %s: %d patches, mesh has %d: %w", f.Name, len(f.Boundary), len(shape.Patches), dynamo.ErrDimensionMismatch)
	}
	for i, p := range shape.Patches {
		if len(f.Boundary[i].Values) != len(p.Owners) {
			return fmt.Errorf("field %s: patch %s has %d faces, mesh has %d: %w",
				f.Name, p.Name, len(f.Boundary[i].Values), len(p.Owners), dynamo.ErrDimensionMismatch)
		}
	}
	return nil
}

// Map applies fn to every internal and boundary value of a and returns the
// result with the given name and dimensions.
func Map[T, R any](a *Field[T], name string, dims unit.Dimensions, fn func(T) R) *Field[R] {
	r := &Field[R]{
		Name:     name,
		Dims:     cloneDims(dims),
		Internal: make([]R, len(a.Internal)),
		Boundary: make([]Patch[R], len(a.Boundary)),
	}
	dynamo.ParallelFor(len(a.Internal), dynamo.MinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			r.Internal[i] = fn(a.Internal[i])
		}
	})
	for p, patch := range a.Boundary {
		vals := make([]R, len(patch.Values))
		for i, v := range patch.Values {
			vals[i] = fn(v)
		}
		r.Boundary[p] = Patch[R]{Name: patch.Name, Kind: Calculated, Values: vals}
	}
	return r
}

// Zip combines two conforming fields value by value.
func Zip[A, B, R any](a *Field[A], b *Field[B], name string, dims unit.Dimensions, fn func(A, B) R) *Field[R] {
	r := &Field[R]{
		Name:     name,
		Dims:     cloneDims(dims),
		Internal: make([]R, len(a.Internal)),
		Boundary: make([]Patch[R], len(a.Boundary)),
	}
	dynamo.ParallelFor(len(a.Internal), dynamo.MinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			r.Internal[i] = fn(a.Internal[i], b.Internal[i])
		}
	})
	for p, patch := range a.Boundary {
		vals := make([]R, len(patch.Values))
		for i := range patch.Values {
			vals[i] = fn(patch.Values[i], b.Boundary[p].Values[i])
		}
		r.Boundary[p] = Patch[R]{Name: patch.Name, Kind: Calculated, Values: vals}
	}
	return r
}

// Add returns a+b.
func Add(a, b *Scalar) (*Scalar, error) {
	if err := CheckDims("add", a.Dims, b.Dims); err != nil {
		return nil, err
	}
	return Zip(a, b, a.Name+"+"+b.Name, a.Dims, func(x, y float64) float64 { return x + y }), nil
}

// Sub returns a-b.
func Sub(a, b *Scalar) (*Scalar, error) {
	if err := CheckDims("sub", a.Dims, b.Dims); err != nil {
		return nil, err
	}
	return Zip(a, b, a.Name+"-"+b.Name, a.Dims, func(x, y float64) float64 { return x - y }), nil
}

// Mul returns a*b.
func Mul(a, b *Scalar) *Scalar {
	return Zip(a, b, a.Name+"*"+b.Name, MulDims(a.Dims, b.Dims), func(x, y float64) float64 { return x * y })
}

// Div returns a/b.
func Div(a, b *Scalar) *Scalar {
	return Zip(a, b, a.Name+"/"+b.Name, DivDims(a.Dims, b.Dims), func(x, y float64) float64 { return x / y })
}

// Scale returns s*a with unchanged dimensions.
func Scale(a *Scalar, s float64) *Scalar {
	return Map(a, a.Name, a.Dims, func(x float64) float64 { return s * x })
}

// Max returns the cell-wise maximum of a and b.
func Max(a, b *Scalar) (*Scalar, error) {
	if err := CheckDims("max", a.Dims, b.Dims); err != nil {
		return nil, err
	}
	return Zip(a, b, "max("+a.Name+","+b.Name+")", a.Dims, math.Max), nil
}

// Min returns the cell-wise minimum of a and b.
func Min(a, b *Scalar) (*Scalar, error) {
	if err := CheckDims("min", a.Dims, b.Dims); err != nil {
		return nil, err
	}
	return Zip(a, b, "min("+a.Name+","+b.Name+")", a.Dims, math.Min), nil
}

// Mag returns the magnitude of a vector field.
func Mag(v *Vector) *Scalar {
	return Map(v, "mag("+v.Name+")", v.Dims, func(x Vec3) float64 { return x.Mag() })
}

// Bound raises every internal and boundary value below lower to lower and
// returns the number of internal cells changed.
func Bound(f *Scalar, lower float64) int {
	n := 0
	for i, v := range f.Internal {
		if v < lower {
			f.Internal[i] = lower
			n++
		}
	}
	for p := range f.Boundary {
		for i, v := range f.Boundary[p].Values {
			if v < lower {
				f.Boundary[p].Values[i] = lower
			}
		}
	}
	return n
}

// MinMax returns the extreme internal values.
func MinMax(f *Scalar) (lo, hi float64) {
	if len(f.Internal) == 0 {
		return 0, 0
	}
	lo, hi = f.Internal[0], f.Internal[0]
	for _, v := range f.Internal[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Valid reports whether every internal value is finite.
func Valid(f *Scalar) bool {
	for _, v := range f.Internal {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
