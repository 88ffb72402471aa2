// Package config loads the pass/fail policy of a report run.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/sca"
	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

// DefaultPolicyFile is looked up in the working directory when no policy is given.
const DefaultPolicyFile = ".yorosec-policy.yml"

type yamlPolicyFile struct {
	Policy yamlPolicy `yaml:"policy"`
}

type yamlPolicy struct {
	SeverityThreshold string   `yaml:"severity_threshold"`
	CompliantStatuses []string `yaml:"compliant_statuses"`
	Strict            bool     `yaml:"strict"`
	Workers           int      `yaml:"workers"`
}

// Settings is the policy plus the run options that travel with it.
type Settings struct {
	Policy  sca.Policy
	Strict  bool
	Workers int
}

// Defaults returns the settings used when no policy file exists.
func Defaults() Settings {
	return Settings{Policy: sca.DefaultPolicy()}
}

// Config builds the aggregation config for one run.
func (s Settings) Config(logger *slog.Logger) sca.Config {
	return sca.Config{
		Policy:  s.Policy,
		Strict:  s.Strict,
		Workers: s.Workers,
		Logger:  logger,
	}
}

// LoadPolicy reads a YAML policy file. Keys left out keep their default.
func LoadPolicy(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read policy %s: %w", path, err)
	}
	s, err := ParsePolicy(data)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to parse policy %s: %w", path, err)
	}
	return s, nil
}

// ParsePolicy parses policy YAML and validates the result.
func ParsePolicy(data []byte) (Settings, error) {
	var raw yamlPolicyFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Settings{}, err
	}

	s := Defaults()
	if raw.Policy.SeverityThreshold != "" {
		sev, err := schema.ParseSeverity(raw.Policy.SeverityThreshold)
		if err != nil {
			return Settings{}, fmt.Errorf("severity_threshold: %w", err)
		}
		s.Policy.SeverityThreshold = sev
	}
	if len(raw.Policy.CompliantStatuses) > 0 {
		s.Policy.CompliantStatuses = raw.Policy.CompliantStatuses
	}
	if raw.Policy.Workers < 0 {
		return Settings{}, fmt.Errorf("workers must not be negative, got %d", raw.Policy.Workers)
	}
	s.Strict = raw.Policy.Strict
	s.Workers = raw.Policy.Workers

	if err := s.Policy.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
