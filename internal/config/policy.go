package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy holds the tunable parameters of the item-processing pipeline. The
// defaults mirror the values the pipeline shipped with; a YAML file can
// override any of them.
type Policy struct {
	ClassificationThreshold float64 `yaml:"classification_threshold"`
	TextCap                 int     `yaml:"text_cap"`
	MaxAttempts             int     `yaml:"max_attempts"`
	RetryDelaySeconds       int     `yaml:"retry_delay_seconds"`
	ImageCheckTimeoutSecs   int     `yaml:"image_check_timeout_seconds"`
}

// DefaultPolicy returns the built-in pipeline parameters.
func DefaultPolicy() Policy {
	return Policy{
		ClassificationThreshold: 0.5,
		TextCap:                 40000,
		MaxAttempts:             3,
		RetryDelaySeconds:       5,
		ImageCheckTimeoutSecs:   5,
	}
}

// LoadPolicy reads a YAML policy file and merges it over the defaults. An
// empty path returns the defaults unchanged.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return policy, fmt.Errorf("parse policy file: %w", err)
	}
	if err := policy.validate(); err != nil {
		return policy, err
	}
	return policy, nil
}

func (p Policy) validate() error {
	if p.ClassificationThreshold < 0 || p.ClassificationThreshold > 1 {
		return fmt.Errorf("classification_threshold %v out of range [0,1]", p.ClassificationThreshold)
	}
	if p.TextCap <= 0 {
		return fmt.Errorf("text_cap must be positive, got %d", p.TextCap)
	}
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", p.MaxAttempts)
	}
	if p.RetryDelaySeconds < 0 {
		return fmt.Errorf("retry_delay_seconds must not be negative, got %d", p.RetryDelaySeconds)
	}
	if p.ImageCheckTimeoutSecs <= 0 {
		return fmt.Errorf("image_check_timeout_seconds must be positive, got %d", p.ImageCheckTimeoutSecs)
	}
	return nil
}

// RetryDelay is the fixed delay applied before a failed attempt is retried.
func (p Policy) RetryDelay() time.Duration {
	return time.Duration(p.RetryDelaySeconds) * time.Second
}

// ImageCheckTimeout bounds the HEAD request used to validate image URLs.
func (p Policy) ImageCheckTimeout() time.Duration {
	return time.Duration(p.ImageCheckTimeoutSecs) * time.Second
}
