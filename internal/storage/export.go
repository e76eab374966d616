package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/sim"
)

type ExportData struct {
	Case         string                  `json:"case"`
	Flow         string                  `json:"flow"`
	LengthScale  string                  `json:"length_scale"`
	Dt           float64                 `json:"dt"`
	Steps        int                     `json:"steps"`
	Converged    bool                    `json:"converged"`
	Times        []float64               `json:"times"`
	Residuals    []float64               `json:"residuals"`
	Performances []fvm.SolverPerformance `json:"performances"`
	NuTilda      []float64               `json:"nuTilda"`
	Nut          []float64               `json:"nut"`
	Metrics      map[string]float64      `json:"metrics"`
}

// Describe carries the case labels an export is tagged with.
type Describe struct {
	Case        string
	Flow        string
	LengthScale string
	Dt          float64
}

func exportData(d Describe, result *sim.Result) ExportData {
	data := ExportData{
		Case:         d.Case,
		Flow:         d.Flow,
		LengthScale:  d.LengthScale,
		Dt:           d.Dt,
		Steps:        result.StepsTaken,
		Converged:    result.Converged,
		Times:        result.Times,
		Residuals:    result.Residuals,
		Performances: result.Performances,
		Metrics:      result.Metrics,
	}
	if result.NuTilda != nil {
		data.NuTilda = result.NuTilda.Internal
	}
	if result.Nut != nil {
		data.Nut = result.Nut.Internal
	}
	return data
}

func ExportJSON(path string, d Describe, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, d, result)
}

func WriteJSON(w io.Writer, d Describe, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(d, result))
}
