package config

import "sort"

// Presets are ready-made cases keyed by name. GetPreset hands out copies.
var Presets = map[string]func() *Config{
	"channel": func() *Config {
		return DefaultConfig()
	},
	"decay": func() *Config {
		c := DefaultConfig()
		c.Case.Flow = "uniform"
		c.Case.Speed = 0
		c.Case.Cells = []int{1, 20, 1}
		c.Case.WallBC = "zeroGradient"
		c.Numerics.Iterations = 50
		return c
	},
	"couette": func() *Config {
		c := DefaultConfig()
		c.Case.Flow = "couette"
		c.Case.Cells = []int{1, 30, 1}
		c.Case.Walls = []string{"yMin"}
		return c
	},
	"swirl": func() *Config {
		c := DefaultConfig()
		c.Case.Flow = "swirl"
		c.Case.Swirl = 0.5
		c.Case.Cells = []int{1, 40, 1}
		return c
	},
	"steady_channel": func() *Config {
		c := DefaultConfig()
		c.Case.GradingY = 4
		c.Numerics.Ddt = "steadyState"
		c.Numerics.Relaxation = 0.7
		c.Numerics.Solver = "smoothSolver"
		c.Numerics.ResidualTarget = 1e-6
		c.Numerics.Iterations = 500
		return c
	},
	"des_channel": func() *Config {
		c := DefaultConfig()
		c.Case.Cells = []int{4, 40, 4}
		c.Case.Length = []float64{0.4, 2, 0.4}
		c.LengthScale.Type = "hybrid"
		c.Numerics.Ddt = "backward"
		c.Numerics.Dt = 0.1
		return c
	},
	"ddes_channel": func() *Config {
		c := DefaultConfig()
		c.Case.Cells = []int{4, 40, 4}
		c.Case.Length = []float64{0.4, 2, 0.4}
		c.LengthScale.Type = "hybrid"
		c.LengthScale.Policy = "delayed"
		c.Numerics.Ddt = "backward"
		c.Numerics.Dt = 0.1
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

// ListPresets returns the preset names in order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
