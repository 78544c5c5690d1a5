package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apiError "github.com/armoucar-neon/dspy-memory-leak-repro/api/error"
	"github.com/armoucar-neon/dspy-memory-leak-repro/internal/pipeline"
)

const (
	defaultModel             = "gpt-3.5-turbo"
	defaultLogPath           = "memory_growth.log"
	defaultCallsPerIteration = 10
	defaultDelay             = 100 * time.Millisecond

	// envAPIKey carries the credential, envModuleKind selects which pipeline
	// module the loop instantiates
	envAPIKey     = "OPENAI_API_KEY"
	envModuleKind = "PIPELINE_MODULE"
)

type (
	// Config describes one measurement run. Sources are merged in order:
	// built-in defaults, optional YAML file, environment, command-line flags.
	Config struct {
		Module            string   `yaml:"module"`
		Model             string   `yaml:"model"`
		BaseURL           string   `yaml:"base_url"`
		Iterations        int      `yaml:"iterations"`
		CallsPerIteration int      `yaml:"calls_per_iteration"`
		Parallel          bool     `yaml:"parallel"`
		ForceGC           bool     `yaml:"force_gc"`
		HeapProfile       bool     `yaml:"heap_profile"`
		Delay             Duration `yaml:"delay"`
		LogPath           string   `yaml:"log_path"`

		// APIKey comes from the environment only, never from the file
		APIKey string `yaml:"-"`
	}

	// Duration exists because yaml.v3 does not decode "100ms" style values
	// into time.Duration on its own
	Duration time.Duration
)

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)

	return nil
}

func defaultConfig() Config {
	return Config{
		Module:            pipeline.KindChainOfThought,
		Model:             defaultModel,
		CallsPerIteration: defaultCallsPerIteration,
		ForceGC:           true,
		Delay:             Duration(defaultDelay),
		LogPath:           defaultLogPath,
	}
}

// LoadConfig builds a Config from defaults, the optional YAML file at path
// and the environment.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("error reading config file: %w", err)
		}
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if v := os.Getenv(envModuleKind); v != "" {
		cfg.Module = v
	}
	cfg.APIKey = os.Getenv(envAPIKey)

	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return apiError.ErrMissingAPIKey
	}
	if c.Iterations < 0 {
		return apiError.ErrNegativeIterations
	}
	if c.LogPath == "" {
		return apiError.ErrEmptyLogPath
	}

	switch c.Module {
	case pipeline.KindPredict, pipeline.KindChainOfThought:
		return nil
	default:
		return fmt.Errorf("%w: %q", apiError.ErrUnknownModuleKind, c.Module)
	}
}
