package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/storage"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batch = `name: decay-study
description: decay with two Cv1 values
steps:
  - preset: decay
    iterations: 2
    solver: directLU
    save_as: decay_a
  - preset: decay
    iterations: 3
    solver: directLU
    coeffs:
      Cv1: 6.5
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, batch))
	require.NoError(t, err)
	assert.Equal(t, "decay-study", sc.Name)
	require.Len(t, sc.Steps, 2)
	assert.Equal(t, "decay_a", sc.Steps[0].Name())
	assert.Equal(t, "decay", sc.Steps[1].Name())
	assert.Equal(t, 6.5, sc.Steps[1].Coeffs["Cv1"])
}

func TestLoadScenarioEmpty(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, "name: nothing\n"))
	assert.Error(t, err)
}

func TestStepResolve(t *testing.T) {
	cfg, err := Step{Preset: "ddes_channel", Iterations: 7, Policy: "min", Coeffs: map[string]float64{"Cb1": 0.14}}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Numerics.Iterations)
	assert.Equal(t, "min", cfg.LengthScale.Policy)
	assert.Equal(t, "hybrid", cfg.LengthScale.Type)
	assert.Equal(t, 0.14, cfg.Model.Cb1)

	_, err = Step{Preset: "nope"}.Resolve()
	assert.Error(t, err)

	_, err = Step{Coeffs: map[string]float64{"Cw1": 3}}.Resolve()
	assert.ErrorIs(t, err, dynamo.ErrUnknownComponent)

	_, err = Step{Dt: -1}.Resolve()
	assert.NoError(t, err, "non-positive overrides are ignored")

	_, err = Step{Coeffs: map[string]float64{"kappa": -1}}.Resolve()
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)
}

func TestRunScenarioStoresRuns(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, batch))
	require.NoError(t, err)
	st := storage.New(t.TempDir())
	logger, hook := test.NewNullLogger()

	outcomes, err := RunScenario(context.Background(), sc, st, logger)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, 2, outcomes[0].Result.StepsTaken)
	assert.Equal(t, 3, outcomes[1].Result.StepsTaken)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	meta, err := st.Load(outcomes[1].RunID)
	require.NoError(t, err)
	assert.Equal(t, "decay", meta.Case)
	assert.Equal(t, 6.5, meta.Config.Model.Cv1)

	var tagged bool
	for _, e := range hook.AllEntries() {
		if e.Data["scenario"] == "decay-study" {
			tagged = true
		}
	}
	assert.True(t, tagged, "step logs should carry the scenario name")
}

func TestRunScenarioStopsOnBadStep(t *testing.T) {
	sc := &Scenario{Name: "bad", Steps: []Step{
		{Preset: "decay", Iterations: 1, Solver: "directLU"},
		{Preset: "decay", Solver: "cg"},
	}}
	logger, _ := test.NewNullLogger()

	outcomes, err := RunScenario(context.Background(), sc, nil, logger)
	assert.ErrorIs(t, err, dynamo.ErrUnknownComponent)
	require.Len(t, outcomes, 1)
	assert.Empty(t, outcomes[0].RunID)
}
