// Package config holds the settings of the meshtopo command. Values come
// from defaults, then an optional YAML file, then MESHTOPO_* environment
// variables; command-line flags are applied last by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/notargets/meshtopo/faces"
	"github.com/notargets/meshtopo/partitions"
)

// Mesh file formats
const (
	FormatAuto = "auto" // by file extension
	FormatYAML = "yaml"
	FormatGmsh = "gmsh" // anything the gocfd readers accept
)

type Config struct {
	Mesh     string `yaml:"mesh" env:"MESHTOPO_MESH"`
	Format   string `yaml:"format" env:"MESHTOPO_FORMAT"`
	Snapshot string `yaml:"snapshot" env:"MESHTOPO_SNAPSHOT"`
	LogLevel string `yaml:"log_level" env:"MESHTOPO_LOG_LEVEL"`

	Faces     FacesConfig     `yaml:"faces"`
	Partition PartitionConfig `yaml:"partition"`
}

type FacesConfig struct {
	Tolerance    float64 `yaml:"tolerance" env:"MESHTOPO_TOLERANCE"`
	SkipOrdering bool    `yaml:"skip_ordering" env:"MESHTOPO_SKIP_ORDERING"`
	SetPolicy    string  `yaml:"set_policy" env:"MESHTOPO_SET_POLICY"`
}

// PartitionConfig enables a partitioned build when Size > 0
type PartitionConfig struct {
	Size         int     `yaml:"size" env:"MESHTOPO_PARTITION_SIZE"`
	Strategy     string  `yaml:"strategy" env:"MESHTOPO_PARTITION_STRATEGY"`
	MaxImbalance float64 `yaml:"max_imbalance" env:"MESHTOPO_PARTITION_MAX_IMBALANCE"`
	Workers      int     `yaml:"workers" env:"MESHTOPO_PARTITION_WORKERS"`
}

// Default returns the settings used when nothing else is given
func Default() *Config {
	return &Config{
		Format:   FormatAuto,
		LogLevel: "info",
		Faces: FacesConfig{
			Tolerance: faces.DefaultTolerance,
			SetPolicy: faces.AllNodes.String(),
		},
		Partition: PartitionConfig{
			Strategy: partitions.BlockPartition.String(),
		},
	}
}

// Load reads path (skipped when empty) over the defaults, applies the
// environment and validates the result
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.decodeYAML(bytes.NewReader(data)); err != nil {
			return nil, err
		}
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// ParseEnv overrides fields from MESHTOPO_* environment variables
func ParseEnv(target *Config) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values that cannot be checked by the decoders
func (c *Config) Validate() error {
	switch c.Format {
	case FormatAuto, FormatYAML, FormatGmsh:
	default:
		return fmt.Errorf("unknown mesh format %q", c.Format)
	}
	if c.Faces.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %g", c.Faces.Tolerance)
	}
	if _, err := c.SetPolicy(); err != nil {
		return err
	}
	if c.Partition.Size < 0 {
		return fmt.Errorf("partition size must not be negative, got %d", c.Partition.Size)
	}
	if _, err := c.Strategy(); err != nil {
		return err
	}
	return nil
}

// SetPolicy parses Faces.SetPolicy
func (c *Config) SetPolicy() (faces.SetPolicy, error) {
	switch c.Faces.SetPolicy {
	case faces.AllNodes.String():
		return faces.AllNodes, nil
	case faces.AnyNode.String():
		return faces.AnyNode, nil
	}
	return 0, fmt.Errorf("unknown set policy %q", c.Faces.SetPolicy)
}

// Strategy parses Partition.Strategy
func (c *Config) Strategy() (partitions.PartitionStrategy, error) {
	return partitions.ParseStrategy(c.Partition.Strategy)
}
