package object

import "time"

// MemorySample is a point-in-time view of the process memory. RSS, VMS and
// Data come from /proc/self/status and are zero on hosts without procfs; the
// runtime fields are always filled.
type MemorySample struct {
	RSSMB       float64   `json:"rss_mb"`
	VMSMB       float64   `json:"vms_mb"`
	DataMB      float64   `json:"data_mb"`
	HeapAllocMB float64   `json:"heap_alloc_mb"`
	HeapInuseMB float64   `json:"heap_inuse_mb"`
	SysMB       float64   `json:"sys_mb"`
	NumGC       uint32    `json:"num_gc"`
	Goroutines  int       `json:"goroutines"`
	TakenAt     time.Time `json:"taken_at"`
}
