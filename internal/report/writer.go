package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	apiError "github.com/armoucar-neon/dspy-memory-leak-repro/api/error"
	"github.com/armoucar-neon/dspy-memory-leak-repro/api/object"
)

// Writer emits one growth line per iteration to the console and appends the
// same line, timestamped, to the growth log file. The log is flock-guarded so
// two concurrent runs cannot interleave writes into one file.
type Writer struct {
	console io.Writer
	logFile *os.File
	lock    *flock.Flock
}

func NewWriter(console io.Writer, logPath string) (*Writer, error) {
	if logPath == "" {
		return nil, apiError.ErrEmptyLogPath
	}
	if console == nil {
		console = os.Stdout
	}

	lock := flock.New(logPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock growth log; %w", err)
	}
	if !locked {
		return nil, apiError.ErrGrowthLogLocked
	}

	f, err := os.Create(logPath)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("failed to create growth log; %w", err)
	}

	return &Writer{console: console, logFile: f, lock: lock}, nil
}

// Header writes the run banner to the console and the log file preamble.
func (w *Writer) Header(moduleName string, calls int, baseline object.MemorySample) error {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w.console, rule)
	fmt.Fprintln(w.console, "Pipeline Memory Leak Reproduction")
	fmt.Fprintln(w.console, rule)
	fmt.Fprintf(w.console, "\nThis run measures %s memory usage with module history clearing enabled.\n\n", moduleName)
	fmt.Fprintf(w.console, "Initial memory: RSS=%.1fMB\n", baseline.RSSMB)
	fmt.Fprintf(w.console, "\nRunning with %d calls per iteration...\n", calls)
	fmt.Fprintf(w.console, "Memory growth will be logged to %s\n\n", w.logFile.Name())

	if _, err := fmt.Fprintf(w.logFile, "%s Memory Leak Test - Memory Growth Log\n%s\n", moduleName, strings.Repeat("=", 50)); err != nil {
		return fmt.Errorf("failed to write growth log header; %w", err)
	}

	return w.logFile.Sync()
}

// Iteration writes one measurement line. The file copy is synced immediately
// so a kill mid-run loses nothing.
func (w *Writer) Iteration(stat object.IterationStat) error {
	line := fmt.Sprintf("Iteration %3d: RSS=%.1fMB (growth=%+.1fMB, rate=%.3fMB/iter)",
		stat.Iteration, stat.Sample.RSSMB, stat.GrowthMB, stat.RateMB)
	fmt.Fprintln(w.console, line)

	if _, err := fmt.Fprintf(w.logFile, "[%s] %s\n", stat.Sample.TakenAt.Format(time.RFC3339), line); err != nil {
		return fmt.Errorf("failed to append to growth log; %w", err)
	}

	return w.logFile.Sync()
}

// HeapSummary writes the optional per-iteration heap profile digest.
func (w *Writer) HeapSummary(iteration int, s object.HeapProfileSummary) error {
	line := fmt.Sprintf("Iteration %3d heap: inuse=%.1fMB objects=%d", iteration, float64(s.InuseSpace)/1024/1024, s.InuseObjects)
	for _, site := range s.TopSites {
		line += fmt.Sprintf("\n    %8.1fKB %s", float64(site.InuseBytes)/1024, site.Function)
	}
	fmt.Fprintln(w.console, line)

	if _, err := fmt.Fprintf(w.logFile, "%s\n", line); err != nil {
		return fmt.Errorf("failed to append to growth log; %w", err)
	}

	return w.logFile.Sync()
}

// Summary writes the end-of-run totals.
func (w *Writer) Summary(rep object.RunReport) error {
	line := fmt.Sprintf("Completed %d iteration(s) in %s: RSS %.1fMB -> %.1fMB (growth=%+.1fMB, rate=%.3fMB/iter)",
		rep.Iterations, rep.Elapsed.Round(time.Millisecond), rep.Baseline.RSSMB, rep.Last.RSSMB, rep.GrowthMB, rep.RateMB)
	fmt.Fprintln(w.console, line)

	if _, err := fmt.Fprintf(w.logFile, "%s\n", line); err != nil {
		return fmt.Errorf("failed to append to growth log; %w", err)
	}

	return w.logFile.Sync()
}

func (w *Writer) Close() error {
	if err := w.lock.Unlock(); err != nil {
		w.logFile.Close()
		return fmt.Errorf("failed to unlock growth log; %w", err)
	}

	return w.logFile.Close()
}
