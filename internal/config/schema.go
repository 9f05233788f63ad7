package config

import (
	"errors"
	"fmt"
)

// Config is the generator configuration.
type Config struct {
	// Version is the schema version. Only "1" exists.
	Version string `yaml:"version" toml:"version"`
	// Patterns are the package patterns to generate for.
	Patterns StringArray `yaml:"patterns,omitempty" toml:"patterns,omitempty"`
	// Tags are build tags applied while loading, so gated declarations whose
	// files need them are seen.
	Tags StringArray `yaml:"tags,omitempty" toml:"tags,omitempty"`
	// Output is the base name of generated files.
	Output string `yaml:"output,omitempty" toml:"output,omitempty"`
	// Runtime is the import path of the mock runtime package.
	Runtime string `yaml:"runtime,omitempty" toml:"runtime,omitempty"`
	// Jobs limits concurrent package generation; 0 means GOMAXPROCS.
	Jobs int `yaml:"jobs,omitempty" toml:"jobs,omitempty"`
}

// StringArray is a string slice that can be unmarshaled from a single string or a list.
type StringArray []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringArray) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var multi []string
	if err := unmarshal(&multi); err == nil {
		*s = multi
		return nil
	}

	return errors.New("expected string or list of strings")
}

// UnmarshalTOML implements toml.Unmarshaler.
func (s *StringArray) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*s = []string{v}
		return nil

	case []any:
		multi := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected string, got %T", item)
			}

			multi = append(multi, str)
		}

		*s = multi

		return nil

	default:
		return errors.New("expected string or list of strings")
	}
}
