package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
	"gonum.org/v1/gonum/unit"
)

type patchData struct {
	Name   string    `json:"name"`
	Kind   string    `json:"kind"`
	Values []float64 `json:"values"`
}

type fieldData struct {
	Name       string          `json:"name"`
	Dimensions unit.Dimensions `json:"dimensions"`
	Internal   []float64       `json:"internal"`
	Boundary   []patchData     `json:"boundary"`
}

// WriteField stores a scalar field with its patch kinds and dimensions.
func WriteField(path string, f *field.Scalar) error {
	d := fieldData{
		Name:       f.Name,
		Dimensions: f.Dims,
		Internal:   f.Internal,
		Boundary:   make([]patchData, len(f.Boundary)),
	}
	for i, p := range f.Boundary {
		d.Boundary[i] = patchData{Name: p.Name, Kind: p.Kind.String(), Values: p.Values}
	}
	return writeJSON(path, d)
}

// ReadField loads a field written by WriteField and checks it against
// shape.
func ReadField(path string, shape field.Shape) (*field.Scalar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d fieldData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f := field.New[float64](d.Name, d.Dimensions, shape)
	if len(d.Internal) != shape.Cells || len(d.Boundary) != len(shape.Patches) {
		return nil, fmt.Errorf("%s: stored field does not fit the mesh: %w", path, dynamo.ErrDimensionMismatch)
	}
	copy(f.Internal, d.Internal)
	for i, p := range d.Boundary {
		if p.Name != shape.Patches[i].Name || len(p.Values) != len(f.Boundary[i].Values) {
			return nil, fmt.Errorf("%s: patch %s does not fit the mesh: %w", path, p.Name, dynamo.ErrDimensionMismatch)
		}
		kind, err := field.ParsePatchKind(p.Kind)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		f.Boundary[i].Kind = kind
		copy(f.Boundary[i].Values, p.Values)
	}
	return f, nil
}

// LoadField reads one of the fields stored with a run.
func (s *Store) LoadField(runID, name string, shape field.Shape) (*field.Scalar, error) {
	return ReadField(filepath.Join(s.baseDir, runID, name), shape)
}
