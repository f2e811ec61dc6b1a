// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// getEnvConfig parses the process environment into a StructuredConfig using
// the env struct tags. Missing variables leave fields at their zero value.
func getEnvConfig() (*StructuredConfig, error) {
	cfg := &StructuredConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment variables: %w", err)
	}

	return cfg, nil
}
