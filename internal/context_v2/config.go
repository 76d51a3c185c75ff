package context_v2

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds compiler configuration
type Config struct {
	// Debug enables colored phase traces
	Debug bool `yaml:"debug"`

	// Intrinsics is the path of an intrinsic type catalog. Empty selects the
	// embedded catalog.
	Intrinsics string `yaml:"intrinsics"`

	// SuppressConsecutive hides diagnostics caused by earlier ones when emitting
	SuppressConsecutive bool `yaml:"suppressConsecutive"`

	// DefaultIntegerType overrides the catalog's type for integer literals
	// without context (e.g. "S64")
	DefaultIntegerType string `yaml:"defaultIntegerType"`

	// NoColor writes traces without ANSI colors
	NoColor bool `yaml:"noColor"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return config, nil
}

// ParseConfig decodes a YAML configuration. Unknown keys are rejected and an
// empty document yields the zero configuration.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode yaml")
	}
	return &config, nil
}
