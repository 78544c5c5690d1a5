package harness

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	apiError "github.com/armoucar-neon/dspy-memory-leak-repro/api/error"
	"github.com/armoucar-neon/dspy-memory-leak-repro/api/object"
	"github.com/armoucar-neon/dspy-memory-leak-repro/internal/pipeline"
	"github.com/armoucar-neon/dspy-memory-leak-repro/internal/report"
	"github.com/armoucar-neon/dspy-memory-leak-repro/internal/sampler"
)

const defaultCallsPerIteration = 10

type (
	// Harness runs the measurement loop: per iteration it builds a fresh
	// pipeline module, pushes the configured number of requests through it,
	// drops the instance, optionally forces a collection and samples process
	// memory against the baseline taken before the first iteration.
	Harness struct {
		cfg      Config
		sampler  *sampler.Sampler
		reporter *report.Writer
		factory  Factory
		// heapSummary captures and reduces a heap profile, replaceable in tests
		heapSummary func() (object.HeapProfileSummary, error)
	}

	// Factory builds a fresh module instance for one iteration
	Factory func() (pipeline.Module, error)

	Config struct {
		ModuleName string
		// Iterations is the number of loop iterations, 0 means run until the
		// context is cancelled
		Iterations        int
		CallsPerIteration int
		// Parallel fans the per-iteration calls out on goroutines instead of
		// issuing them serially
		Parallel    bool
		ForceGC     bool
		HeapProfile bool
		// Delay is slept between iterations, zero or negative disables it
		Delay time.Duration
	}
)

func New(cfg Config, smp *sampler.Sampler, reporter *report.Writer, factory Factory) (*Harness, error) {
	if smp == nil {
		return nil, errors.New("sampler must not be nil")
	}
	if reporter == nil {
		return nil, errors.New("reporter must not be nil")
	}
	if factory == nil {
		return nil, apiError.ErrNilModuleFactory
	}
	if cfg.Iterations < 0 {
		return nil, apiError.ErrNegativeIterations
	}
	if cfg.CallsPerIteration <= 0 {
		cfg.CallsPerIteration = defaultCallsPerIteration
	}

	return &Harness{
		cfg:      cfg,
		sampler:  smp,
		reporter: reporter,
		factory:  factory,
		heapSummary: func() (object.HeapProfileSummary, error) {
			data, err := sampler.CaptureHeapProfile()
			if err != nil {
				return object.HeapProfileSummary{}, err
			}
			return sampler.SummarizeHeapProfile(data)
		},
	}, nil
}

// Run executes the loop. Context cancellation is a normal stop: the returned
// report covers the iterations completed so far and err is nil. Any API
// failure aborts the run immediately, there are no retries.
func (h *Harness) Run(ctx context.Context) (object.RunReport, error) {
	if ctx == nil {
		return object.RunReport{}, apiError.ErrNilContext
	}

	baseline := h.sampler.Sample()
	if err := h.reporter.Header(h.cfg.ModuleName, h.cfg.CallsPerIteration, baseline); err != nil {
		return object.RunReport{}, err
	}

	started := time.Now()
	rep := object.RunReport{ModuleName: h.cfg.ModuleName, Baseline: baseline, Last: baseline}

	for i := 1; h.cfg.Iterations == 0 || i <= h.cfg.Iterations; i++ {
		if ctx.Err() != nil {
			break
		}

		if err := h.runIteration(ctx, i); err != nil {
			// A call interrupted by cancellation is a normal stop, not a
			// failed run: report the iterations completed so far
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				break
			}
			rep.Elapsed = time.Since(started)
			return rep, fmt.Errorf("iteration %d failed; %w", i, err)
		}

		sample := h.sampler.Sample()
		growth := sample.RSSMB - baseline.RSSMB
		stat := object.IterationStat{
			Iteration: i,
			Elapsed:   time.Since(started),
			Sample:    sample,
			GrowthMB:  growth,
			RateMB:    growth / float64(i),
		}
		if err := h.reporter.Iteration(stat); err != nil {
			rep.Elapsed = time.Since(started)
			return rep, err
		}

		rep.Iterations = i
		rep.Last = sample
		rep.GrowthMB = growth
		rep.RateMB = stat.RateMB

		if h.cfg.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(h.cfg.Delay):
			}
		}
	}
	rep.Elapsed = time.Since(started)

	return rep, nil
}

func (h *Harness) runIteration(ctx context.Context, iteration int) error {
	module, err := h.factory()
	if err != nil {
		return fmt.Errorf("failed to build pipeline module; %w", err)
	}

	if h.cfg.Parallel {
		err = h.callParallel(ctx, module)
	} else {
		err = h.callSequential(ctx, module)
	}
	// Clearing the history is part of the scenario under test: the growth
	// shows up even with no exchange records retained
	module.ClearHistory()
	if err != nil {
		return err
	}

	if h.cfg.ForceGC {
		runtime.GC()
		debug.FreeOSMemory()
	}

	if h.cfg.HeapProfile {
		// Profiling trouble must not kill a measurement run, only the API
		// calls carry abort semantics
		if summary, err := h.heapSummary(); err != nil {
			log.Printf("failed to summarize heap profile; %v", err)
		} else if err = h.reporter.HeapSummary(iteration, summary); err != nil {
			return err
		}
	}

	return nil
}

func (h *Harness) callSequential(ctx context.Context, module pipeline.Module) error {
	for i := 0; i < h.cfg.CallsPerIteration; i++ {
		if _, err := module.Call(ctx, callInputs(i)); err != nil {
			return err
		}
	}

	return nil
}

func (h *Harness) callParallel(ctx context.Context, module pipeline.Module) error {
	errs := make([]error, h.cfg.CallsPerIteration)
	var wg sync.WaitGroup
	for i := 0; i < h.cfg.CallsPerIteration; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = module.Call(ctx, callInputs(n))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}

func callInputs(n int) map[string]string {
	return map[string]string{
		"context": fmt.Sprintf("Context for request %d", n),
		"query":   fmt.Sprintf("Query number %d", n),
	}
}
