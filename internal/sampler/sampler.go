package sampler

import (
	"runtime"
	"time"

	"github.com/prometheus/procfs"

	"github.com/armoucar-neon/dspy-memory-leak-repro/api/object"
)

const bytesPerMB = 1024 * 1024

// Sampler reads the current process memory usage. On Linux the RSS/VMS/Data
// numbers come from /proc/self/status, elsewhere only the Go runtime stats
// are filled.
type Sampler struct {
	proc *procfs.Proc
}

func New() *Sampler {
	s := &Sampler{}
	if p, err := procfs.Self(); err == nil {
		s.proc = &p
	}

	return s
}

func (s *Sampler) Sample() object.MemorySample {
	ret := object.MemorySample{TakenAt: time.Now()}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	ret.HeapAllocMB = float64(m.HeapAlloc) / bytesPerMB
	ret.HeapInuseMB = float64(m.HeapInuse) / bytesPerMB
	ret.SysMB = float64(m.Sys) / bytesPerMB
	ret.NumGC = m.NumGC
	ret.Goroutines = runtime.NumGoroutine()

	if s.proc != nil {
		if status, err := s.proc.NewStatus(); err == nil {
			ret.RSSMB = float64(status.VmRSS) / bytesPerMB
			ret.VMSMB = float64(status.VmSize) / bytesPerMB
			ret.DataMB = float64(status.VmData) / bytesPerMB
		}
	}
	// Hosts without procfs still need a resident-size figure for the growth
	// trend, the runtime's view of OS-obtained memory is the closest match
	if ret.RSSMB == 0 {
		ret.RSSMB = ret.SysMB
	}

	return ret
}
