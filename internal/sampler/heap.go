package sampler

import (
	"bytes"
	"fmt"
	"runtime"
	"runtime/pprof"

	"github.com/google/pprof/profile"

	"github.com/armoucar-neon/dspy-memory-leak-repro/api/object"
	"github.com/armoucar-neon/dspy-memory-leak-repro/internal/helper"
)

// defaultTopSites is how many allocation sites a heap summary keeps
const defaultTopSites = 5

// CaptureHeapProfile takes a heap profile of the current process. The heap
// profile lags allocation by up to two GC cycles, a collection is forced first
// so the snapshot reflects the iteration that just finished.
func CaptureHeapProfile() ([]byte, error) {
	runtime.GC()

	var buf bytes.Buffer
	if err := pprof.WriteHeapProfile(&buf); err != nil {
		return nil, fmt.Errorf("failed to write heap profile; %w", err)
	}

	return buf.Bytes(), nil
}

// SummarizeHeapProfile reduces raw pprof data to space/object totals plus the
// biggest allocation sites by in-use bytes.
func SummarizeHeapProfile(data []byte) (object.HeapProfileSummary, error) {
	pf, err := profile.ParseData(data)
	if err != nil {
		return object.HeapProfileSummary{}, fmt.Errorf("failed to parse profile; %w", err)
	}

	inuseSpaceIdx, inuseObjectsIdx, allocSpaceIdx, allocObjectsIdx := -1, -1, -1, -1
	for i, st := range pf.SampleType {
		switch st.Type {
		case "inuse_space":
			inuseSpaceIdx = i
		case "inuse_objects":
			inuseObjectsIdx = i
		case "alloc_space":
			allocSpaceIdx = i
		case "alloc_objects":
			allocObjectsIdx = i
		}
	}

	summary := object.HeapProfileSummary{TimeNanos: pf.TimeNanos}
	bySite := make(map[string]int64)
	for _, sample := range pf.Sample {
		var inuse int64
		if inuseSpaceIdx != -1 && inuseSpaceIdx < len(sample.Value) {
			inuse = sample.Value[inuseSpaceIdx]
			summary.InuseSpace += inuse
		}
		if inuseObjectsIdx != -1 && inuseObjectsIdx < len(sample.Value) {
			summary.InuseObjects += sample.Value[inuseObjectsIdx]
		}
		if allocSpaceIdx != -1 && allocSpaceIdx < len(sample.Value) {
			summary.AllocSpace += sample.Value[allocSpaceIdx]
		}
		if allocObjectsIdx != -1 && allocObjectsIdx < len(sample.Value) {
			summary.AllocObjects += sample.Value[allocObjectsIdx]
		}

		if fn := sampleFunction(sample); fn != "" && inuse > 0 {
			bySite[fn] += inuse
		}
	}

	top := helper.NewTopKeeper[int64, string](defaultTopSites)
	for fn, inuse := range bySite {
		top.Offer(inuse, fn)
	}
	keys, values := top.Keys(), top.Values()
	for i := range keys {
		summary.TopSites = append(summary.TopSites, object.AllocSite{Function: values[i], InuseBytes: keys[i]})
	}

	return summary, nil
}

// sampleFunction returns the innermost named function of a sample's stack
func sampleFunction(s *profile.Sample) string {
	for _, loc := range s.Location {
		for _, line := range loc.Line {
			if line.Function != nil && line.Function.Name != "" {
				return line.Function.Name
			}
		}
	}

	return ""
}
