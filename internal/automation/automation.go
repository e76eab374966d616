package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/nutilda/internal/config"
	"github.com/san-kum/nutilda/internal/experiment"
	"github.com/san-kum/nutilda/internal/sim"
	"github.com/san-kum/nutilda/internal/storage"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Scenario is a batch of closure runs read from YAML.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run: a preset or config file with optional overrides.
type Step struct {
	Preset      string             `yaml:"preset"`
	Config      string             `yaml:"config"`
	Iterations  int                `yaml:"iterations"`
	Dt          float64            `yaml:"dt"`
	Solver      string             `yaml:"solver"`
	LengthScale string             `yaml:"length_scale"`
	Policy      string             `yaml:"policy"`
	Coeffs      map[string]float64 `yaml:"coeffs"`
	SaveAs      string             `yaml:"save_as"`
}

// Outcome is what one step produced. RunID is empty when nothing was
// stored.
type Outcome struct {
	Name   string
	RunID  string
	Result *sim.Result
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &sc, nil
}

// Name is the case name the step is stored under.
func (s Step) Name() string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case s.Preset != "":
		return s.Preset
	default:
		return "channel"
	}
}

// Resolve builds the validated config for the step. A config file replaces
// the preset; the overrides apply on top of either.
func (s Step) Resolve() (*config.Config, error) {
	preset := s.Preset
	if preset == "" {
		preset = "channel"
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if s.Config != "" {
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if s.Iterations > 0 {
		cfg.Numerics.Iterations = s.Iterations
	}
	if s.Dt > 0 {
		cfg.Numerics.Dt = s.Dt
	}
	if s.Solver != "" {
		cfg.Numerics.Solver = s.Solver
	}
	if s.LengthScale != "" {
		cfg.LengthScale.Type = s.LengthScale
	}
	if s.Policy != "" {
		cfg.LengthScale.Policy = s.Policy
	}
	for name, v := range s.Coeffs {
		if err := cfg.Model.Set(name, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// RunScenario runs the steps in order and stores each result when st is
// not nil. It stops at the first step that cannot be set up or run and
// returns the outcomes so far.
func RunScenario(ctx context.Context, sc *Scenario, st *storage.Store, log logrus.FieldLogger) ([]Outcome, error) {
	if st != nil {
		if err := st.Init(); err != nil {
			return nil, err
		}
	}
	reg := experiment.NewRegistry()
	outcomes := make([]Outcome, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		name := step.Name()
		stepLog := log.WithFields(logrus.Fields{"scenario": sc.Name, "step": i + 1, "case": name})

		cfg, err := step.Resolve()
		if err != nil {
			return outcomes, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		exp := experiment.New(cfg, stepLog)
		if err := exp.Setup(reg); err != nil {
			return outcomes, fmt.Errorf("step %d (%s) setup: %w", i+1, name, err)
		}

		stepLog.Infof("running step %d/%d", i+1, len(sc.Steps))
		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}

		out := Outcome{Name: name, Result: result}
		if st != nil {
			if out.RunID, err = st.Save(name, cfg, result); err != nil {
				return outcomes, fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
			}
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
