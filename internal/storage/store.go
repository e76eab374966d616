package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/nutilda/internal/config"
	"github.com/san-kum/nutilda/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	residualsFile = "residuals.csv"
	NuTildaFile   = "nuTilda.json"
	NutFile       = "nut.json"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Case          string             `json:"case"`
	Timestamp     time.Time          `json:"timestamp"`
	Flow          string             `json:"flow"`
	LengthScale   string             `json:"length_scale"`
	Solver        string             `json:"solver"`
	Ddt           string             `json:"ddt"`
	Dt            float64            `json:"dt"`
	Iterations    int                `json:"iterations"`
	Converged     bool               `json:"converged"`
	FinalResidual float64            `json:"final_residual"`
	Failures      int                `json:"failures"`
	Metrics       map[string]float64 `json:"metrics"`
	Config        *config.Config     `json:"config"`
}

// Save writes a run directory holding the metadata, the residual history
// and the final nuTilda and nut fields.
func (s *Store) Save(caseName string, cfg *config.Config, result *sim.Result) (string, error) {
	runID, runDir, err := s.newRunDir(caseName)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Case:          caseName,
		Timestamp:     time.Now(),
		Flow:          cfg.Case.Flow,
		LengthScale:   cfg.LengthScale.Type,
		Solver:        cfg.Numerics.Solver,
		Ddt:           cfg.Numerics.Ddt,
		Dt:            cfg.Numerics.Dt,
		Iterations:    result.StepsTaken,
		Converged:     result.Converged,
		FinalResidual: result.FinalResidual(),
		Failures:      len(result.Errors),
		Metrics:       result.Metrics,
		Config:        cfg,
	}
	if cfg.LengthScale.Type == "hybrid" {
		meta.LengthScale += "(" + cfg.LengthScale.Policy + ")"
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeResiduals(filepath.Join(runDir, residualsFile), result); err != nil {
		return "", err
	}
	if result.NuTilda != nil {
		if err := WriteField(filepath.Join(runDir, NuTildaFile), result.NuTilda); err != nil {
			return "", err
		}
	}
	if result.Nut != nil {
		if err := WriteField(filepath.Join(runDir, NutFile), result.Nut); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func (s *Store) newRunDir(caseName string) (string, string, error) {
	base := fmt.Sprintf("%s_%d", caseName, time.Now().Unix())
	runID := base
	for n := 1; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			if err := os.MkdirAll(s.baseDir, 0755); err != nil {
				return "", "", err
			}
			if err := os.Mkdir(runDir, 0755); err != nil {
				return "", "", err
			}
			return runID, runDir, nil
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeResiduals(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"iteration", "time", "initial", "final", "solver_iterations", "converged"}); err != nil {
		return err
	}
	for i, p := range result.Performances {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(result.Times[i], 'g', -1, 64),
			strconv.FormatFloat(p.InitialResidual, 'e', 8, 64),
			strconv.FormatFloat(p.FinalResidual, 'e', 8, 64),
			strconv.Itoa(p.Iterations),
			strconv.FormatBool(p.Converged),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// Residuals is the residual history of a stored run.
type Residuals struct {
	Times   []float64
	Initial []float64
	Final   []float64
}

func (s *Store) LoadResiduals(runID string) (*Residuals, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, residualsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	res := &Residuals{}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 4 {
			continue
		}
		vals := make([]float64, 3)
		ok := true
		for j := range vals {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		res.Times = append(res.Times, vals[0])
		res.Initial = append(res.Initial, vals[1])
		res.Final = append(res.Final, vals[2])
	}
	return res, nil
}
