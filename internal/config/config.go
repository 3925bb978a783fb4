package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration for the serve command.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string `yaml:"listen"`

	// SchemaDir is the directory scanned for schema definition files.
	SchemaDir string `yaml:"schema_dir"`

	// Watch enables reloading the schema when files under SchemaDir change.
	Watch bool `yaml:"watch"`

	// Timeout bounds a single request when the client sets no deadline.
	Timeout Duration `yaml:"timeout"`

	// Pretty enables indented JSON responses.
	Pretty bool `yaml:"pretty"`

	// MaxBodyBytes limits request body size. 0 means unlimited.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORSOrigins lists allowed origins. Empty disables CORS.
	CORSOrigins []string `yaml:"cors_origins"`

	// Metrics enables the Prometheus endpoint at /metrics.
	Metrics bool `yaml:"metrics"`

	// OTLPEndpoint is the OTLP/gRPC collector address. Empty disables tracing.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// ServiceName is reported in traces.
	ServiceName string `yaml:"service_name"`
}

// Duration wraps time.Duration so "3s" style values parse from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:      ":8080",
		SchemaDir:   ".",
		Timeout:     Duration(10 * time.Second),
		Metrics:     true,
		ServiceName: "queryward",
	}
}

// Load reads a YAML configuration file on top of the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.SchemaDir == "" {
		return fmt.Errorf("schema_dir must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative")
	}
	return nil
}
