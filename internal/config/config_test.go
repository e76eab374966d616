package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/nutilda/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Case.Flow != "poiseuille" {
		t.Errorf("expected flow poiseuille, got %s", cfg.Case.Flow)
	}
	if cfg.Numerics.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Model.Kappa != 0.41 {
		t.Errorf("expected kappa 0.41, got %f", cfg.Model.Kappa)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("ddes_channel")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.LengthScale.Type != "hybrid" || cfg.LengthScale.Policy != "delayed" {
		t.Errorf("unexpected length scale %+v", cfg.LengthScale)
	}

	cfg.Case.Nu = 42
	if again := GetPreset("ddes_channel"); again.Case.Nu == 42 {
		t.Error("preset should be a fresh copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.yaml")

	cfg := GetPreset("swirl")
	cfg.Model.Ft2 = true
	cfg.Numerics.Iterations = 17
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Case.Flow != "swirl" {
		t.Errorf("expected flow swirl, got %s", loaded.Case.Flow)
	}
	if !loaded.Model.Ft2 {
		t.Error("ft2 switch lost")
	}
	if loaded.Numerics.Iterations != 17 {
		t.Errorf("expected 17 iterations, got %d", loaded.Numerics.Iterations)
	}
	if len(loaded.Case.Cells) != 3 || loaded.Case.Cells[1] != 40 {
		t.Errorf("unexpected cells %v", loaded.Case.Cells)
	}
}

func TestLoadPartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("model:\n  Cb1: 0.2\nnumerics:\n  dt: 0.25\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Model.Cb1 != 0.2 {
		t.Errorf("expected Cb1 0.2, got %f", cfg.Model.Cb1)
	}
	if cfg.Model.Cv1 != 7.1 {
		t.Errorf("expected default Cv1, got %f", cfg.Model.Cv1)
	}
	if cfg.Numerics.Dt != 0.25 {
		t.Errorf("expected dt 0.25, got %f", cfg.Numerics.Dt)
	}
	if cfg.Numerics.Solver != "PBiCGStab" {
		t.Errorf("expected default solver, got %s", cfg.Numerics.Solver)
	}
}

func TestLoadINI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.ini")
	data := []byte(`[model]
Cb1 = 0.2
ft2 = true

[case]
cells = 2,16,1
walls = yMin
flow = couette

[length_scale]
type = hybrid
policy = delayed
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Model.Cb1 != 0.2 || !cfg.Model.Ft2 {
		t.Errorf("model section not applied: %+v", cfg.Model)
	}
	if cfg.Model.Kappa != 0.41 {
		t.Errorf("expected default kappa, got %f", cfg.Model.Kappa)
	}
	if len(cfg.Case.Cells) != 3 || cfg.Case.Cells[1] != 16 {
		t.Errorf("unexpected cells %v", cfg.Case.Cells)
	}
	if len(cfg.Case.Walls) != 1 || cfg.Case.Walls[0] != "yMin" {
		t.Errorf("unexpected walls %v", cfg.Case.Walls)
	}
	if cfg.LengthScale.Policy != "delayed" {
		t.Errorf("expected delayed policy, got %s", cfg.LengthScale.Policy)
	}
	if cfg.Numerics.Dt != DefaultDt {
		t.Errorf("expected default dt, got %f", cfg.Numerics.Dt)
	}
}

func TestSaveINIRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.ini")
	cfg := GetPreset("steady_channel")
	if err := SaveINI(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := LoadINI(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Numerics.Ddt != "steadyState" {
		t.Errorf("expected steadyState, got %s", loaded.Numerics.Ddt)
	}
	if loaded.Numerics.Relaxation != 0.7 {
		t.Errorf("expected relaxation 0.7, got %f", loaded.Numerics.Relaxation)
	}
	if loaded.Case.GradingY != 4 {
		t.Errorf("expected grading 4, got %f", loaded.Case.GradingY)
	}
}

func TestLoad_NotFound(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		key  string
	}{
		{"cells", func(c *Config) { c.Case.Cells = []int{1, 0, 1} }, "case.cells"},
		{"cells length", func(c *Config) { c.Case.Cells = []int{4} }, "case.cells"},
		{"length", func(c *Config) { c.Case.Length[2] = 0 }, "case.length"},
		{"nu", func(c *Config) { c.Case.Nu = 0 }, "case.nu"},
		{"wall bc", func(c *Config) { c.Case.WallBC = "slip" }, "case.wall_bc"},
		{"dt", func(c *Config) { c.Numerics.Dt = -1 }, "numerics.dt"},
		{"relaxation", func(c *Config) { c.Numerics.Relaxation = 1.5 }, "numerics.relaxation"},
		{"rel tol", func(c *Config) { c.Numerics.RelTol = 1 }, "numerics.rel_tol"},
		{"policy", func(c *Config) { c.LengthScale.Policy = "ideal" }, "policy"},
		{"CDES", func(c *Config) { c.LengthScale.CDES = 0 }, "length_scale.CDES"},
		{"coeffs", func(c *Config) { c.Model.Kappa = 0 }, "kappa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			err := cfg.Validate()
			var ce *dynamo.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if ce.Key != tt.key {
				t.Errorf("expected key %s, got %s", tt.key, ce.Key)
			}
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Error("expected ErrInvalidConfig in chain")
			}
		})
	}
}
