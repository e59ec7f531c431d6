// Package config loads the YAML run configuration of a build.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/loopbuild/internal/logging"
	"github.com/aretw0/loopbuild/pkg/adapters/process"
	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/evaluate"
)

// Report store drivers.
const (
	DriverNone  = "none"
	DriverFile  = "file"
	DriverRedis = "redis"
)

// Config holds a build run.
type Config struct {
	Structure         string                  `yaml:"structure"`
	OutputDirectory   string                  `yaml:"output_directory"`
	WorkingDirectory  string                  `yaml:"working_directory"`
	N                 int                     `yaml:"n"`
	MaxTries          *int                    `yaml:"max_tries"` // nil = n * 10
	OnCandidateError  string                  `yaml:"on_candidate_error"`
	StrictExtraction  bool                    `yaml:"strict_extraction"`
	KeepIntermediates bool                    `yaml:"keep_intermediates"`
	Catalog           *bool                   `yaml:"catalog"`
	ToolsFile         string                  `yaml:"tools_file"`
	Tools             []process.ProcessConfig `yaml:"tools"`
	Generator         string                  `yaml:"generator"`
	Finder            string                  `yaml:"finder"`
	Segments          []map[string]any        `yaml:"segments"`
	Scorers           []evaluate.Spec         `yaml:"scorers"`
	Filters           []evaluate.Spec         `yaml:"filters"`
	Report            ReportConfig            `yaml:"report"`
	Metrics           MetricsConfig           `yaml:"metrics"`
	Logging           LoggingConfig           `yaml:"logging"`

	// BaseDir is the directory of the loaded file; tools run from there.
	BaseDir string `yaml:"-"`
}

// ReportConfig selects where build reports are kept.
type ReportConfig struct {
	Driver   string `yaml:"driver"` // none, file, redis (default: none)
	Path     string `yaml:"path"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	TTLSec   int    `yaml:"ttl_sec"`
	// Lock serializes builds of the same structure through the redis server.
	Lock       bool `yaml:"lock"`
	LockTTLSec int  `yaml:"lock_ttl_sec"`
}

// TTL returns the report expiration, 0 meaning never.
func (r ReportConfig) TTL() time.Duration {
	return time.Duration(r.TTLSec) * time.Second
}

// LockTTL returns the expiration of the build lock.
func (r ReportConfig) LockTTL() time.Duration {
	return time.Duration(r.LockTTLSec) * time.Second
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
	JSON  bool   `yaml:"json"`
}

// Load reads, expands, defaults and validates the configuration at path.
// Relative paths inside the file are resolved against the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	cfg.BaseDir = filepath.Dir(path)
	cfg.ResolvePaths(cfg.BaseDir)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Parse decodes a configuration document after environment expansion.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(expandEnvVars(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// ResolvePaths makes the file paths of the configuration relative to base.
func (c *Config) ResolvePaths(base string) {
	for _, p := range []*string{&c.Structure, &c.OutputDirectory, &c.WorkingDirectory, &c.ToolsFile, &c.Report.Path} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.OnCandidateError == "" {
		c.OnCandidateError = string(domain.CandidateAbort)
	}
	if c.Catalog == nil {
		enabled := true
		c.Catalog = &enabled
	}
	if c.Report.Driver == "" {
		c.Report.Driver = DriverNone
	}
	if c.Report.Driver == DriverFile && c.Report.Path == "" && c.OutputDirectory != "" {
		c.Report.Path = filepath.Join(c.OutputDirectory, "reports")
	}
	if c.Report.LockTTLSec <= 0 {
		c.Report.LockTTLSec = 3600
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
// Non-positive n and max_tries are accepted: the build turns them into warnings.
func (c *Config) Validate() error {
	if c.Structure == "" {
		return fmt.Errorf("structure is required")
	}
	if c.OutputDirectory == "" {
		return fmt.Errorf("output_directory is required")
	}
	if !domain.CandidatePolicy(c.OnCandidateError).Valid() {
		return fmt.Errorf("on_candidate_error must be %q or %q, got %q",
			domain.CandidateAbort, domain.CandidateSkip, c.OnCandidateError)
	}
	if c.Generator == "" {
		return fmt.Errorf("generator is required")
	}
	if c.ToolsFile == "" {
		tools := process.ToolMap(c.Tools)
		for _, name := range c.ToolNames() {
			if _, ok := tools[name]; !ok {
				return fmt.Errorf("tool %q is not defined in tools", name)
			}
		}
	}
	for i, s := range c.Scorers {
		if s.Kind == "" {
			return fmt.Errorf("scorers[%d].kind is required", i)
		}
	}
	for i, f := range c.Filters {
		if f.Kind == "" {
			return fmt.Errorf("filters[%d].kind is required", i)
		}
	}
	switch c.Report.Driver {
	case DriverNone, DriverFile:
	case DriverRedis:
		if c.Report.Addr == "" {
			return fmt.Errorf("report.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("report.driver must be %q, %q or %q, got %q", DriverNone, DriverFile, DriverRedis, c.Report.Driver)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Report.Lock && c.Report.Driver != DriverRedis {
		return fmt.Errorf("report.lock requires the redis driver")
	}
	if _, err := c.DecodeSegments(); err != nil {
		return err
	}
	return nil
}

// ToolNames returns the tools referenced by the generator and finder settings.
func (c *Config) ToolNames() []string {
	names := []string{c.Generator}
	if c.Finder != "" {
		names = append(names, c.Finder)
	}
	return names
}

// CandidatePolicy returns the configured candidate failure policy.
func (c *Config) CandidatePolicy() domain.CandidatePolicy {
	return domain.CandidatePolicy(c.OnCandidateError)
}

// CatalogEnabled reports whether catalogs are written.
func (c *Config) CatalogEnabled() bool {
	return c.Catalog == nil || *c.Catalog
}

// DecodeSegments converts the inline segment list. Segments without an identifier
// get "loop_<i>" and segments without a parent file get the configured structure.
func (c *Config) DecodeSegments() ([]*domain.Segment, error) {
	if len(c.Segments) == 0 {
		return nil, nil
	}
	out := make([]*domain.Segment, 0, len(c.Segments))
	for i, raw := range c.Segments {
		var seg domain.Segment
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           &seg,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder: %w", err)
		}
		if err := dec.Decode(raw); err != nil {
			return nil, fmt.Errorf("segments[%d]: %w", i, err)
		}
		if seg.Identifier == "" {
			seg.Identifier = fmt.Sprintf("loop_%d", i+1)
		}
		if seg.ParentStructureFile == "" {
			seg.ParentStructureFile = c.Structure
		}
		if err := seg.Validate(); err != nil {
			return nil, fmt.Errorf("segments[%d]: %w", i, err)
		}
		out = append(out, &seg)
	}
	return out, nil
}

// LogLevel returns the configured logging level.
func (c *Config) LogLevel() slog.Level {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return level
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
