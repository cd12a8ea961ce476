package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

// Load reads a YAML profile. A file may set "extends" to start from a
// built-in profile; any weight table in the file replaces the inherited one.
// The result is validated before it is returned.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading profile file %q: %w", ports.ErrConfigurationError, path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile file %q: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML profile document.
func Parse(data []byte) (*Profile, error) {
	var header struct {
		Name    string                       `yaml:"name"`
		Extends string                       `yaml:"extends"`
		Weights map[domain.Component]float64 `yaml:"weights"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: decoding profile: %w", ports.ErrConfigurationError, err)
	}

	var (
		p   *Profile
		err error
	)
	if header.Extends != "" {
		p, err = Builtin(header.Extends)
	} else {
		p, err = New(header.Name)
	}
	if err != nil {
		return nil, err
	}
	if header.Weights != nil {
		p.Weights = nil
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: decoding profile: %w", ports.ErrConfigurationError, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
