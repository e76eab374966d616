package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/turbulence"
	"github.com/sirupsen/logrus"
)

// Simulator drives outer iterations of a closure over a prescribed flow.
type Simulator struct {
	model     *turbulence.Model
	source    Source
	metrics   []Metric
	observers []Observer
	log       logrus.FieldLogger
}

func New(model *turbulence.Model, source Source) *Simulator {
	return &Simulator{
		model:     model,
		source:    source,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       logrus.StandardLogger(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l logrus.FieldLogger) { s.log = l }

func (s *Simulator) Model() *turbulence.Model { return s.model }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Residuals:    make([]float64, 0, cfg.Iterations),
		Performances: make([]fvm.SolverPerformance, 0, cfg.Iterations),
		Times:        make([]float64, 0, cfg.Iterations),
		Metrics:      make(map[string]float64),
		Errors:       make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	err := s.loop(ctx, cfg, func(st Step) bool {
		result.StepsTaken++
		result.Residuals = append(result.Residuals, st.Perf.InitialResidual)
		result.Performances = append(result.Performances, st.Perf)
		result.Times = append(result.Times, st.Time)
		if st.Err != nil {
			result.Errors = append(result.Errors, st.Err)
		}

		for _, m := range s.metrics {
			m.Observe(st)
		}
		for _, obs := range s.observers {
			obs.OnStep(st)
		}

		if st.Err != nil && cfg.StopOnFailure {
			return false
		}
		if cfg.ResidualTarget > 0 && st.Perf.InitialResidual < cfg.ResidualTarget {
			result.Converged = true
			return false
		}
		return true
	})

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.NuTilda = s.model.NuTilda()
	result.Nut = s.model.Nut()

	s.log.WithFields(logrus.Fields{
		"iterations": result.StepsTaken,
		"residual":   result.FinalResidual(),
		"converged":  result.Converged,
		"failures":   len(result.Errors),
	}).Info("run finished")

	return result, err
}

// RunWithCallback iterates until the callback returns false, the iteration
// count is reached or ctx is done. Solve failures are reported to the
// callback, not returned.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Step) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}
	return s.loop(ctx, cfg, callback)
}

func (s *Simulator) loop(ctx context.Context, cfg Config, visit func(Step) bool) error {
	t := 0.0
	for i := 1; i <= cfg.Iterations; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w after %d iterations: %v", dynamo.ErrContextCanceled, i-1, ctx.Err())
		default:
		}

		t += cfg.Dt
		in := s.source.Inputs(cfg.Dt, i)
		perf, err := s.model.Correct(in)
		if err != nil && !errors.Is(err, dynamo.ErrNotConverged) {
			return &dynamo.IterationError{Iteration: i, Time: t, Wrapped: err}
		}

		st := Step{
			Index:   i,
			Time:    t,
			Perf:    perf,
			Inputs:  in,
			NuTilda: s.model.NuTilda(),
			Nut:     s.model.Nut(),
		}
		if err != nil {
			st.Err = &dynamo.IterationError{Iteration: i, Time: t, Wrapped: err}
		}

		if cfg.ValidateState && !field.Valid(st.NuTilda) {
			return &dynamo.IterationError{Iteration: i, Time: t, Wrapped: dynamo.ErrInvalidState}
		}

		if !visit(st) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.model == nil || s.source == nil {
		return fmt.Errorf("simulator needs a model and a source: %w", dynamo.ErrInvalidConfig)
	}
	if !(cfg.Dt > 0) {
		return &dynamo.ConfigError{Key: "dt", Value: cfg.Dt, Reason: "must be positive"}
	}
	if cfg.Iterations < 1 {
		return &dynamo.ConfigError{Key: "iterations", Value: cfg.Iterations, Reason: "must be at least 1"}
	}
	if cfg.ResidualTarget < 0 {
		return &dynamo.ConfigError{Key: "residual_target", Value: cfg.ResidualTarget, Reason: "must be non-negative"}
	}
	return nil
}
