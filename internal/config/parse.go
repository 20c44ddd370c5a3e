package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseGlobalConfig decodes a config file. Unknown keys, type mismatches and
// a second YAML document are errors; absent keys stay zero for
// ApplyDefaults. Empty input yields a zero GlobalConfig.
func ParseGlobalConfig(data []byte) (*GlobalConfig, error) {
	cfg := new(GlobalConfig)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	switch err := dec.Decode(cfg); {
	case errors.Is(err, io.EOF):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("parse config: expected a single YAML document")
	}
	return cfg, nil
}

// MarshalGlobalConfig encodes cfg as YAML with two-space indentation, the
// layout of the default config file.
func MarshalGlobalConfig(cfg *GlobalConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf.Bytes(), nil
}
