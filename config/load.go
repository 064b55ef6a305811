package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes and validates an experiment document. Unknown keys are rejected.
func Parse(data []byte) (*Experiment, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var exp Experiment
	if err := dec.Decode(&exp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty experiment document", ErrConfiguration)
		}
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	return &exp, nil
}

// Load reads and parses the experiment document at path.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment %s: %w", path, err)
	}
	exp, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", path, err)
	}
	return exp, nil
}
