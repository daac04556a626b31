package config

import (
	"fmt"
	"os"

	"github.com/githubnext/ifcheck/pkg/balance"
	"github.com/goccy/go-yaml"
)

// Config is the optional YAML configuration passed with --config
type Config struct {
	Open           string   `yaml:"open"`
	Close          string   `yaml:"close"`
	Branches       []string `yaml:"branches"`
	StrictBranches bool     `yaml:"strict-branches"`
	CommentOrder   string   `yaml:"comment-order"`
}

// Load reads, schema-validates and decodes the config file at path
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(content, path)
}

// Parse validates and decodes config content. filePath is only used for
// error locations.
func Parse(content []byte, filePath string) (*Config, error) {
	var document any
	if err := yaml.Unmarshal(content, &document); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %s", filePath, yaml.FormatError(err, false, true))
	}

	if err := validateWithSchema(document, content, filePath); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", filePath, err)
	}

	if _, err := cfg.Options(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}
	return cfg, nil
}

// Options converts the config into checker options
func (c *Config) Options() (balance.Options, error) {
	order, ok := balance.ParseCommentOrder(c.CommentOrder)
	if !ok {
		return balance.Options{}, fmt.Errorf("unknown comment-order '%s'", c.CommentOrder)
	}

	opts := balance.Options{
		Open:           c.Open,
		Close:          c.Close,
		Branches:       c.Branches,
		StrictBranches: c.StrictBranches,
		Order:          order,
	}
	if err := opts.Validate(); err != nil {
		return balance.Options{}, err
	}
	return opts, nil
}
