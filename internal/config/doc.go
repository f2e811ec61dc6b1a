// SPDX-License-Identifier: Apache-2.0

// Package config loads the application configuration from environment
// variables, command-line flags, and an optional JSON file, merges the
// sources in that priority order, and validates the result before the
// server is allowed to start.
package config
