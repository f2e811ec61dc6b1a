// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration wraps time.Duration so JSON config files can spell durations as
// strings ("30s", "15m") instead of raw nanosecond counts.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("error unmarshaling duration: %w", err)
	}

	switch value := raw.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("error parsing duration %q: %w", value, err)
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration value: %v", raw)
	}

	return nil
}

// structuredJSONConfig mirrors StructuredConfig with JSON tags and
// string-friendly durations. It exists only as a decoding target for the
// config file.
type structuredJSONConfig struct {
	App struct {
		PasswordHashKey string   `json:"password_hash_key"`
		TokenSignKey    string   `json:"token_sign_key"`
		TokenIssuer     string   `json:"token_issuer"`
		TokenDuration   Duration `json:"token_duration"`
		EncryptionKey   string   `json:"encryption_key"`
	} `json:"app"`
	Storage struct {
		DB struct {
			Driver string `json:"driver"`
			DSN    string `json:"database_uri"`
		} `json:"db"`
		Files struct {
			VaultDir  string `json:"vault_dir"`
			PublicDir string `json:"public_dir"`
		} `json:"files"`
	} `json:"storage"`
	Server struct {
		HTTPAddress    string   `json:"address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server"`
	Workers struct {
		CleanupInterval Duration `json:"cleanup_interval"`
		Retention       Duration `json:"retention"`
	} `json:"workers"`
}

// getJSONConfig reads and decodes the JSON config file at the given path.
func getJSONConfig(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	jsonCfg := &structuredJSONConfig{}
	if err := json.Unmarshal(data, jsonCfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config file %s: %w", path, err)
	}

	cfg := &StructuredConfig{
		App: App{
			PasswordHashKey: jsonCfg.App.PasswordHashKey,
			TokenSignKey:    jsonCfg.App.TokenSignKey,
			TokenIssuer:     jsonCfg.App.TokenIssuer,
			TokenDuration:   jsonCfg.App.TokenDuration.Duration,
			EncryptionKey:   jsonCfg.App.EncryptionKey,
		},
		Storage: Storage{
			DB: DB{
				Driver: jsonCfg.Storage.DB.Driver,
				DSN:    jsonCfg.Storage.DB.DSN,
			},
			Files: Files{
				VaultDir:  jsonCfg.Storage.Files.VaultDir,
				PublicDir: jsonCfg.Storage.Files.PublicDir,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: jsonCfg.Server.RequestTimeout.Duration,
		},
		Workers: Workers{
			CleanupInterval: jsonCfg.Workers.CleanupInterval.Duration,
			Retention:       jsonCfg.Workers.Retention.Duration,
		},
		JSONFilePath: path,
	}

	return cfg, nil
}
