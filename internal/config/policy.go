package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds resolution settings from .refmark/refmark.yaml. All fields
// are optional; command-line flags override whatever is set here.
type Policy struct {
	AllowPlaceholders bool `yaml:"allow_placeholders,omitempty"`
	Enrich            bool `yaml:"enrich,omitempty"`
	Workers           int  `yaml:"workers,omitempty"`
	TimeoutSeconds    int  `yaml:"timeout_seconds,omitempty"`
}

// DefaultPolicy returns the policy used when refmark.yaml is absent or
// leaves fields unset.
func DefaultPolicy() Policy {
	return Policy{
		Workers:        4,
		TimeoutSeconds: 30,
	}
}

// LoadPolicy reads refmark.yaml from the repository at root, filling unset
// numeric fields from the defaults. A missing file yields the default policy.
func LoadPolicy(root string) (Policy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(PolicyPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return policy, nil
		}
		return policy, fmt.Errorf("reading policy: %w", err)
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, fmt.Errorf("parsing policy: %w", err)
	}

	if policy.Workers <= 0 {
		policy.Workers = DefaultPolicy().Workers
	}
	if policy.TimeoutSeconds <= 0 {
		policy.TimeoutSeconds = DefaultPolicy().TimeoutSeconds
	}

	return policy, nil
}
