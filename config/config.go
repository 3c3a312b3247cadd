// Package config loads simulation settings from YAML and the environment.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ira-ai-automation/agentsim/logging"
	"github.com/ira-ai-automation/agentsim/simerr"
	"github.com/ira-ai-automation/agentsim/simulation"
	"github.com/ira-ai-automation/agentsim/space"
)

// Config is the top-level configuration document.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Space     SpaceConfig     `yaml:"space"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Journal   JournalConfig   `yaml:"journal"`
}

// EngineConfig configures the step engine.
type EngineConfig struct {
	// Workers bounds concurrent batches; 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`
	// ParallelThreshold is the maximum number of agents per batch.
	ParallelThreshold int `yaml:"parallel_threshold"`
	// Inline runs all batches on the stepping goroutine.
	Inline bool `yaml:"inline"`
}

// SpaceConfig configures the spatial grid.
type SpaceConfig struct {
	CellSize float64 `yaml:"cell_size"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig configures tracing.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Stdout      bool   `yaml:"stdout"`
}

// Journal drivers.
const (
	JournalNone     = "none"
	JournalMemory   = "memory"
	JournalPostgres = "postgres"
)

// JournalConfig configures event persistence.
type JournalConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Run    string `yaml:"run"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			ParallelThreshold: simulation.DefaultParallelThreshold,
		},
		Space: SpaceConfig{
			CellSize: 5,
			Width:    100,
			Height:   100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "agentsim",
		},
		Journal: JournalConfig{
			Driver: JournalMemory,
		},
	}
}

// Load reads path on top of Default, applies environment overrides and
// validates the result. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, simerr.Wrap(simerr.InvalidConfiguration, "read config "+path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document on top of Default, applies environment
// overrides and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, simerr.Wrap(simerr.InvalidConfiguration, "decode config", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from AGENTSIM_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("AGENTSIM_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("AGENTSIM_WORKERS", err)
		}
		c.Engine.Workers = n
	}
	if v, ok := os.LookupEnv("AGENTSIM_PARALLEL_THRESHOLD"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("AGENTSIM_PARALLEL_THRESHOLD", err)
		}
		c.Engine.ParallelThreshold = n
	}
	if v, ok := os.LookupEnv("AGENTSIM_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv("AGENTSIM_JOURNAL_DSN"); ok && v != "" {
		c.Journal.DSN = v
		c.Journal.Driver = JournalPostgres
	}
	if v, ok := os.LookupEnv("AGENTSIM_TRACE_STDOUT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("AGENTSIM_TRACE_STDOUT", err)
		}
		c.Telemetry.Enabled = c.Telemetry.Enabled || b
		c.Telemetry.Stdout = b
	}
	return nil
}

func envError(name string, err error) error {
	return simerr.Wrap(simerr.InvalidConfiguration, "invalid "+name, err).WithContext("variable", name)
}

// Validate checks value ranges and cross-field constraints.
func (c Config) Validate() error {
	var problems []string
	if c.Engine.Workers < 0 {
		problems = append(problems, "engine.workers must not be negative")
	}
	if c.Engine.ParallelThreshold < 1 {
		problems = append(problems, "engine.parallel_threshold must be at least 1")
	}
	if c.Space.CellSize <= 0 {
		problems = append(problems, "space.cell_size must be positive")
	}
	if c.Space.Width < 0 || c.Space.Height < 0 {
		problems = append(problems, "space.width and space.height must not be negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		problems = append(problems, "logging.format must be text or json")
	}
	switch c.Journal.Driver {
	case JournalNone, JournalMemory:
	case JournalPostgres:
		if c.Journal.DSN == "" {
			problems = append(problems, "journal.dsn is required for the postgres driver")
		}
	default:
		problems = append(problems, "journal.driver must be none, memory or postgres")
	}

	if len(problems) > 0 {
		return simerr.New(simerr.InvalidConfiguration, strings.Join(problems, "; ")).
			WithContext("problems", problems)
	}
	return nil
}

// LoggerOptions maps the logging section onto logging.Options.
func (c Config) LoggerOptions() logging.Options {
	return logging.Options{
		Level:  logging.ParseLevel(c.Logging.Level),
		Format: strings.ToLower(c.Logging.Format),
		Output: os.Stderr,
	}
}

// EngineOptions maps the engine and space sections onto simulation.Options.
// Callers fill in the logger, id generator, event bus and tracer.
func (c Config) EngineOptions() simulation.Options {
	opts := simulation.Options{
		Grid: space.GridOptions{
			CellSize: c.Space.CellSize,
			Width:    c.Space.Width,
			Height:   c.Space.Height,
		},
		Workers:           c.Engine.Workers,
		ParallelThreshold: c.Engine.ParallelThreshold,
	}
	if c.Engine.Inline {
		opts.Executor = simulation.InlineExecutor{}
	}
	return opts
}
