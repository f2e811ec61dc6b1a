// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"dario.cat/mergo"
)

// configBuilder accumulates configuration from multiple sources and merges
// them in priority order. Each with* method loads one source; errors are
// recorded and reported once by build().
type configBuilder struct {
	envConfig   *StructuredConfig
	flagsConfig *StructuredConfig
	jsonConfig  *StructuredConfig

	err error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		envConfig:   &StructuredConfig{},
		flagsConfig: &StructuredConfig{},
		jsonConfig:  &StructuredConfig{},
	}
}

// withEnv loads configuration from environment variables.
func (b *configBuilder) withEnv() *configBuilder {
	if b.err != nil {
		return b
	}

	cfg, err := getEnvConfig()
	if err != nil {
		b.err = fmt.Errorf("error loading config from environment: %w", err)
		return b
	}
	b.envConfig = cfg

	return b
}

// withFlags loads configuration from command-line flags.
func (b *configBuilder) withFlags() *configBuilder {
	if b.err != nil {
		return b
	}

	cfg, err := getFlagsConfig()
	if err != nil {
		b.err = fmt.Errorf("error loading config from flags: %w", err)
		return b
	}
	b.flagsConfig = cfg

	return b
}

// withJSON loads configuration from the JSON file whose path was provided
// by a higher-priority source (env or flags). When no path was provided the
// step is a no-op.
func (b *configBuilder) withJSON() *configBuilder {
	if b.err != nil {
		return b
	}

	jsonFilePath := b.envConfig.JSONFilePath
	if jsonFilePath == "" {
		jsonFilePath = b.flagsConfig.JSONFilePath
	}
	if jsonFilePath == "" {
		return b
	}

	cfg, err := getJSONConfig(jsonFilePath)
	if err != nil {
		b.err = fmt.Errorf("error loading config from JSON file: %w", err)
		return b
	}
	b.jsonConfig = cfg

	return b
}

// build merges all loaded sources (env over flags over JSON), validates the
// result, and returns the final configuration.
func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, b.err
	}

	merged := &StructuredConfig{}
	for _, src := range []*StructuredConfig{b.envConfig, b.flagsConfig, b.jsonConfig} {
		if err := mergo.Merge(merged, src); err != nil {
			return nil, fmt.Errorf("error merging config sources: %w", err)
		}
	}

	if err := validateConfig(merged); err != nil {
		return nil, err
	}

	return merged, nil
}
