package object

import "time"

type (
	// IterationStat is the transient record produced after every iteration of
	// the measurement loop.
	IterationStat struct {
		Iteration int           `json:"iteration"`
		Elapsed   time.Duration `json:"elapsed"`
		Sample    MemorySample  `json:"sample"`
		GrowthMB  float64       `json:"growth_mb"`
		RateMB    float64       `json:"rate_mb_per_iter"`
	}

	// RunReport summarizes a whole measurement run.
	RunReport struct {
		ModuleName string        `json:"module_name"`
		Iterations int           `json:"iterations"`
		Baseline   MemorySample  `json:"baseline"`
		Last       MemorySample  `json:"last"`
		GrowthMB   float64       `json:"growth_mb"`
		RateMB     float64       `json:"rate_mb_per_iter"`
		Elapsed    time.Duration `json:"elapsed"`
	}
)
