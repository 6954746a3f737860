// Package config loads replica discovery configuration from YAML: an
// explicit file a caller loads at startup, instead of process-global
// flags.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ReplicaConfig describes a single replica's discovery address and
// logical table path.
type ReplicaConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

// ReplicaSetConfig is the on-disk shape of a ReplicaSet Client's
// discovery and fan-out policy configuration.
type ReplicaSetConfig struct {
	Replicas []ReplicaConfig `yaml:"replicas"`

	DDLFailFast   bool          `yaml:"ddl_fail_fast"`
	TimestampDiff time.Duration `yaml:"timestamp_diff"`
	GetRandomMode bool          `yaml:"get_random_mode"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
}

// LoadReplicaSetConfig reads and parses path into a ReplicaSetConfig.
func LoadReplicaSetConfig(path string) (*ReplicaSetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg ReplicaSetConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks that cfg describes at least one replica and that
// every replica has both an address and a path.
func (c *ReplicaSetConfig) Validate() error {
	if len(c.Replicas) == 0 {
		return fmt.Errorf("at least one replica is required")
	}

	for i, r := range c.Replicas {
		if r.Addr == "" {
			return fmt.Errorf("replicas[%d].addr is required", i)
		}
		if r.Path == "" {
			return fmt.Errorf("replicas[%d].path is required", i)
		}
	}

	return nil
}

// Addrs returns the replicas' discovery addresses, in order.
func (c *ReplicaSetConfig) Addrs() []string {
	out := make([]string, len(c.Replicas))
	for i, r := range c.Replicas {
		out[i] = r.Addr
	}

	return out
}

// Paths returns the replicas' logical table paths, in order.
func (c *ReplicaSetConfig) Paths() []string {
	out := make([]string, len(c.Replicas))
	for i, r := range c.Replicas {
		out[i] = r.Path
	}

	return out
}

// Names returns the replicas' display names, in order, or nil if none
// were configured.
func (c *ReplicaSetConfig) Names() []string {
	var names []string
	hasAny := false
	for _, r := range c.Replicas {
		if r.Name != "" {
			hasAny = true
		}
		names = append(names, r.Name)
	}

	if !hasAny {
		return nil
	}

	return names
}
