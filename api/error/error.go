package error

import "errors"

var (
	ErrNilContext         = errors.New("context must not be nil")
	ErrNilClient          = errors.New("completion client must not be nil")
	ErrNilModuleFactory   = errors.New("module factory must not be nil")
	ErrMissingAPIKey      = errors.New("OPENAI_API_KEY environment variable is required")
	ErrUnknownModuleKind  = errors.New("unknown pipeline module kind")
	ErrEmptyLogPath       = errors.New("growth log path must not be empty")
	ErrNegativeIterations = errors.New("iterations must not be negative")
	ErrGrowthLogLocked    = errors.New("growth log is locked by another process")
)
