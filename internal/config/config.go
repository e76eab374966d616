package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/turbulence"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt           = 1.0
	DefaultIterations   = 200
	DefaultTolerance    = 1e-8
	DefaultMaxIter      = 1000
	DefaultNu           = 1.5e-5
	DefaultNuTildaRatio = 3.0
	DefaultCDES         = 0.65
)

// Config describes one closure run: the coefficients, the case it runs on,
// the numerics and the length scale.
type Config struct {
	Model       turbulence.Coeffs `yaml:"model" ini:"model"`
	Case        CaseConfig        `yaml:"case" ini:"case"`
	Numerics    NumericsConfig    `yaml:"numerics" ini:"numerics"`
	LengthScale LengthScaleConfig `yaml:"length_scale" ini:"length_scale"`
}

// CaseConfig sets up the box mesh, the prescribed flow and the initial
// nuTilda.
type CaseConfig struct {
	Cells    []int     `yaml:"cells" ini:"cells" delim:","`
	Length   []float64 `yaml:"length" ini:"length" delim:","`
	GradingY float64   `yaml:"grading_y" ini:"grading_y"`
	Walls    []string  `yaml:"walls" ini:"walls" delim:","`

	Flow  string  `yaml:"flow" ini:"flow"`
	Speed float64 `yaml:"speed" ini:"speed"`
	Swirl float64 `yaml:"swirl" ini:"swirl"`
	Nu    float64 `yaml:"nu" ini:"nu"`

	// NuTildaRatio is the initial nuTilda/nu.
	NuTildaRatio float64 `yaml:"nu_tilda_ratio" ini:"nu_tilda_ratio"`
	// WallBC is the nuTilda condition on wall patches.
	WallBC string `yaml:"wall_bc" ini:"wall_bc"`
}

type NumericsConfig struct {
	Ddt            string  `yaml:"ddt" ini:"ddt"`
	Dt             float64 `yaml:"dt" ini:"dt"`
	Iterations     int     `yaml:"iterations" ini:"iterations"`
	Solver         string  `yaml:"solver" ini:"solver"`
	Tolerance      float64 `yaml:"tolerance" ini:"tolerance"`
	RelTol         float64 `yaml:"rel_tol" ini:"rel_tol"`
	MaxIter        int     `yaml:"max_iter" ini:"max_iter"`
	Relaxation     float64 `yaml:"relaxation" ini:"relaxation"`
	ResidualTarget float64 `yaml:"residual_target" ini:"residual_target"`
	StopOnFailure  bool    `yaml:"stop_on_failure" ini:"stop_on_failure"`
}

type LengthScaleConfig struct {
	Type       string  `yaml:"type" ini:"type"`
	Policy     string  `yaml:"policy" ini:"policy"`
	CDES       float64 `yaml:"CDES" ini:"CDES"`
	DeltaCoeff float64 `yaml:"delta_coeff" ini:"delta_coeff"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: turbulence.DefaultCoeffs(),
		Case: CaseConfig{
			Cells:        []int{1, 40, 1},
			Length:       []float64{0.1, 2, 0.1},
			Walls:        []string{"yMin", "yMax"},
			Flow:         "poiseuille",
			Speed:        1,
			Nu:           DefaultNu,
			NuTildaRatio: DefaultNuTildaRatio,
			WallBC:       "fixedValue",
		},
		Numerics: NumericsConfig{
			Ddt:        "Euler",
			Dt:         DefaultDt,
			Iterations: DefaultIterations,
			Solver:     "PBiCGStab",
			Tolerance:  DefaultTolerance,
			MaxIter:    DefaultMaxIter,
		},
		LengthScale: LengthScaleConfig{
			Type:       "wallDistance",
			Policy:     "min",
			CDES:       DefaultCDES,
			DeltaCoeff: 1,
		},
	}
}

// Load reads a yaml file, or an ini file when the extension is .ini, over
// the defaults.
func Load(path string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		return LoadINI(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadINI reads a dictionary with [model], [case], [numerics] and
// [length_scale] sections. Missing keys keep their defaults.
func LoadINI(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	sections := []struct {
		name string
		dst  any
	}{
		{"model", &cfg.Model},
		{"case", &cfg.Case},
		{"numerics", &cfg.Numerics},
		{"length_scale", &cfg.LengthScale},
	}
	for _, s := range sections {
		if !f.HasSection(s.name) {
			continue
		}
		if err := f.Section(s.name).MapTo(s.dst); err != nil {
			return nil, fmt.Errorf("parse %s [%s]: %w", path, s.name, err)
		}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SaveINI writes cfg in the ini layout LoadINI reads.
func SaveINI(path string, cfg *Config) error {
	f := ini.Empty()
	if err := ini.ReflectFrom(f, cfg); err != nil {
		return err
	}
	return f.SaveTo(path)
}

// Validate checks ranges. Component names are resolved later by the
// experiment registry.
func (c *Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}

	cs := c.Case
	if len(cs.Cells) != 3 {
		return &dynamo.ConfigError{Key: "case.cells", Value: cs.Cells, Reason: "needs three entries"}
	}
	for _, n := range cs.Cells {
		if n < 1 {
			return &dynamo.ConfigError{Key: "case.cells", Value: cs.Cells, Reason: "must be at least 1"}
		}
	}
	if len(cs.Length) != 3 {
		return &dynamo.ConfigError{Key: "case.length", Value: cs.Length, Reason: "needs three entries"}
	}
	for _, l := range cs.Length {
		if !(l > 0) {
			return &dynamo.ConfigError{Key: "case.length", Value: cs.Length, Reason: "must be positive"}
		}
	}
	if !(cs.Nu > 0) {
		return &dynamo.ConfigError{Key: "case.nu", Value: cs.Nu, Reason: "must be positive"}
	}
	if cs.NuTildaRatio < 0 {
		return &dynamo.ConfigError{Key: "case.nu_tilda_ratio", Value: cs.NuTildaRatio, Reason: "must be non-negative"}
	}
	if cs.WallBC != "fixedValue" && cs.WallBC != "zeroGradient" {
		return &dynamo.ConfigError{Key: "case.wall_bc", Value: cs.WallBC, Reason: "must be fixedValue or zeroGradient"}
	}

	n := c.Numerics
	if !(n.Dt > 0) {
		return &dynamo.ConfigError{Key: "numerics.dt", Value: n.Dt, Reason: "must be positive"}
	}
	if n.Iterations < 1 {
		return &dynamo.ConfigError{Key: "numerics.iterations", Value: n.Iterations, Reason: "must be at least 1"}
	}
	if !(n.Tolerance > 0) {
		return &dynamo.ConfigError{Key: "numerics.tolerance", Value: n.Tolerance, Reason: "must be positive"}
	}
	if n.RelTol < 0 || n.RelTol >= 1 {
		return &dynamo.ConfigError{Key: "numerics.rel_tol", Value: n.RelTol, Reason: "must lie in [0, 1)"}
	}
	if n.MaxIter < 1 {
		return &dynamo.ConfigError{Key: "numerics.max_iter", Value: n.MaxIter, Reason: "must be at least 1"}
	}
	if n.Relaxation < 0 || n.Relaxation > 1 {
		return &dynamo.ConfigError{Key: "numerics.relaxation", Value: n.Relaxation, Reason: "must lie in [0, 1]"}
	}

	ls := c.LengthScale
	if _, err := turbulence.ParsePolicy(ls.Policy); err != nil {
		return err
	}
	if !(ls.CDES > 0) {
		return &dynamo.ConfigError{Key: "length_scale.CDES", Value: ls.CDES, Reason: "must be positive"}
	}
	if !(ls.DeltaCoeff > 0) {
		return &dynamo.ConfigError{Key: "length_scale.delta_coeff", Value: ls.DeltaCoeff, Reason: "must be positive"}
	}
	return nil
}
