package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/flow"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/integrators"
	"github.com/san-kum/nutilda/internal/mesh"
	"github.com/san-kum/nutilda/internal/turbulence"
	"github.com/sirupsen/logrus/hooks/test"
)

const testNu = 1e-5

func newChannel(t *testing.T, opts ...turbulence.Option) *Simulator {
	t.Helper()
	m, err := mesh.NewBox(mesh.BoxSpec{
		NX: 1, NY: 12, NZ: 1,
		Length: field.Vec3{0.1, 2, 0.1},
		Walls:  []string{mesh.YMin, mesh.YMax},
	})
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	f, err := flow.New(m, flow.NewPoiseuille(1, 2), testNu)
	if err != nil {
		t.Fatalf("flow: %v", err)
	}

	nuTilda := field.Uniform("nuTilda", field.DimKinematicViscosity, m.Shape(), 3*testNu)
	kinds := make([]field.PatchKind, len(m.Patches))
	for i := range kinds {
		kinds[i] = field.ZeroGradient
	}
	nuTilda.SetKinds(kinds)
	for _, w := range []string{mesh.YMin, mesh.YMax} {
		if err := nuTilda.SetPatch(w, field.FixedValue, 0); err != nil {
			t.Fatal(err)
		}
	}

	logger, _ := test.NewNullLogger()
	opts = append([]turbulence.Option{
		turbulence.WithSolver(fvm.NewDirect()),
		turbulence.WithLogger(logger),
	}, opts...)
	model, err := turbulence.New(turbulence.DefaultCoeffs(), nuTilda, opts...)
	if err != nil {
		t.Fatalf("model: %v", err)
	}

	s := New(model, f)
	s.SetLogger(logger)
	return s
}

func TestSimulatorRun(t *testing.T) {
	s := newChannel(t)

	result, err := s.Run(context.Background(), Config{Dt: 0.5, Iterations: 6})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 6 {
		t.Errorf("expected 6 steps, got %d", result.StepsTaken)
	}
	if len(result.Residuals) != 6 || len(result.Times) != 6 {
		t.Errorf("expected 6 residuals and times, got %d and %d", len(result.Residuals), len(result.Times))
	}
	if result.Times[5] != 3 {
		t.Errorf("expected final time 3, got %f", result.Times[5])
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if result.NuTilda == nil || result.Nut == nil {
		t.Fatal("final fields missing")
	}
	lo, _ := field.MinMax(result.NuTilda)
	if lo < 0 {
		t.Errorf("nuTilda should stay bounded, min %g", lo)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := newChannel(t)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Iterations: 1}},
		{"negative dt", Config{Dt: -0.1, Iterations: 1}},
		{"zero iterations", Config{Dt: 0.1, Iterations: 0}},
		{"negative target", Config{Dt: 0.1, Iterations: 1, ResidualTarget: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorResidualTarget(t *testing.T) {
	s := newChannel(t)

	result, err := s.Run(context.Background(), Config{Dt: 0.5, Iterations: 10, ResidualTarget: 1e300})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !result.Converged {
		t.Error("expected converged result")
	}
	if result.StepsTaken != 1 {
		t.Errorf("expected stop after 1 step, got %d", result.StepsTaken)
	}
}

func TestSimulatorSolveFailures(t *testing.T) {
	starved := turbulence.WithSolver(fvm.NewGaussSeidel(fvm.Controls{Tolerance: 1e-300, MaxIter: 1}))

	t.Run("collected", func(t *testing.T) {
		s := newChannel(t, starved)
		result, err := s.Run(context.Background(), Config{Dt: 0.5, Iterations: 3})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if len(result.Errors) != 3 {
			t.Fatalf("expected 3 errors, got %d", len(result.Errors))
		}
		var ie *dynamo.IterationError
		if !errors.As(result.Errors[1], &ie) || ie.Iteration != 2 {
			t.Errorf("expected iteration error for step 2, got %v", result.Errors[1])
		}
		if !errors.Is(result.Errors[0], dynamo.ErrNotConverged) {
			t.Errorf("expected ErrNotConverged in chain, got %v", result.Errors[0])
		}
	})

	t.Run("stop on failure", func(t *testing.T) {
		s := newChannel(t, starved)
		result, err := s.Run(context.Background(), Config{Dt: 0.5, Iterations: 3, StopOnFailure: true})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if result.StepsTaken != 1 {
			t.Errorf("expected 1 step, got %d", result.StepsTaken)
		}
	})
}

func TestSimulatorCanceled(t *testing.T) {
	s := newChannel(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, Config{Dt: 0.5, Iterations: 5})
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Fatalf("expected ErrContextCanceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected partial result with no steps, got %+v", result)
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(s Step) {
	t.count++
	t.sum += s.Perf.InitialResidual
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

type testObserver struct{ indices []int }

func (o *testObserver) OnStep(s Step) { o.indices = append(o.indices, s.Index) }

func TestSimulatorMetrics(t *testing.T) {
	s := newChannel(t)

	metric := &testMetric{}
	obs := &testObserver{}
	s.AddMetric(metric)
	s.AddObserver(obs)

	result, err := s.Run(context.Background(), Config{Dt: 0.5, Iterations: 4})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 4 {
		t.Errorf("expected 4 observations, got %d", metric.count)
	}
	for i, idx := range obs.indices {
		if idx != i+1 {
			t.Errorf("observer saw index %d at position %d", idx, i)
		}
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	s := newChannel(t)

	calls := 0
	err := s.RunWithCallback(context.Background(), Config{Dt: 0.5, Iterations: 10}, func(st Step) bool {
		calls++
		return st.Index < 3
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestEnsemble(t *testing.T) {
	a := newChannel(t)
	b := newChannel(t, turbulence.WithScheme(mustScheme(t, "backward")))

	results, err := NewEnsemble(2, a, b).Run(context.Background(), Config{Dt: 0.5, Iterations: 3})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 3 {
			t.Errorf("run %d: expected 3 steps, got %d", i, r.StepsTaken)
		}
	}
}

func TestBufferPool(t *testing.T) {
	p := NewBufferPool(4)

	b := p.GetAndCopy([]float64{1, 2, 3, 4})
	if len(b) != 4 || b[3] != 4 {
		t.Fatalf("unexpected buffer %v", b)
	}
	p.Put(b)
	if b[0] != 0 {
		t.Error("put should zero the buffer")
	}

	p.Put(make([]float64, 3))
	if got := p.Get(); len(got) != 4 {
		t.Errorf("expected length 4, got %d", len(got))
	}
}

func mustScheme(t *testing.T, name string) integrators.Scheme {
	t.Helper()
	s, err := integrators.New(name)
	if err != nil {
		t.Fatal(err)
	}
	return s
}
