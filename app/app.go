package app

import (
	"context"
	"fmt"
	"os"
	"time"

	apiError "github.com/armoucar-neon/dspy-memory-leak-repro/api/error"
	"github.com/armoucar-neon/dspy-memory-leak-repro/api/object"
	"github.com/armoucar-neon/dspy-memory-leak-repro/internal/harness"
	"github.com/armoucar-neon/dspy-memory-leak-repro/internal/pipeline"
	"github.com/armoucar-neon/dspy-memory-leak-repro/internal/report"
	"github.com/armoucar-neon/dspy-memory-leak-repro/internal/sampler"
)

// App wires the sampler, the growth reporter, the completion client and the
// module factory into one measurement run.
type App struct {
	cfg Config
}

func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &App{cfg: cfg}, nil
}

func (a *App) GetConfig() Config {
	return a.cfg
}

// Run executes one measurement run and writes the growth report. The returned
// report covers the completed iterations even when ctx is cancelled mid-run.
func (a *App) Run(ctx context.Context) (object.RunReport, error) {
	if ctx == nil {
		return object.RunReport{}, apiError.ErrNilContext
	}

	client, err := pipeline.NewOpenAIClient(a.cfg.APIKey, a.cfg.BaseURL)
	if err != nil {
		return object.RunReport{}, err
	}

	reporter, err := report.NewWriter(os.Stdout, a.cfg.LogPath)
	if err != nil {
		return object.RunReport{}, fmt.Errorf("failed to create growth log writer; %w", err)
	}
	defer reporter.Close()

	sig := pipeline.SimpleSignature()
	factory := func() (pipeline.Module, error) {
		return pipeline.New(a.cfg.Module, client, a.cfg.Model, sig)
	}

	h, err := harness.New(harness.Config{
		ModuleName:        pipeline.DisplayName(a.cfg.Module),
		Iterations:        a.cfg.Iterations,
		CallsPerIteration: a.cfg.CallsPerIteration,
		Parallel:          a.cfg.Parallel,
		ForceGC:           a.cfg.ForceGC,
		HeapProfile:       a.cfg.HeapProfile,
		Delay:             time.Duration(a.cfg.Delay),
	}, sampler.New(), reporter, factory)
	if err != nil {
		return object.RunReport{}, fmt.Errorf("failed to create harness; %w", err)
	}

	rep, err := h.Run(ctx)
	if err != nil {
		return rep, err
	}

	if err = reporter.Summary(rep); err != nil {
		return rep, err
	}

	return rep, nil
}
