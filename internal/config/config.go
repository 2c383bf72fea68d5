// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "fundledger.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DatabasePath     string `yaml:"databasePath"                             split_words:"true"`
	BindAddr         string `yaml:"bindAddr"                                 split_words:"true"`
	ShutdownTimeout  string `yaml:"shutdownTimeout"                          split_words:"true"`
	Authority        string `yaml:"authority"`
	SystemPrincipal  string `yaml:"systemPrincipal"                          split_words:"true"`
	BlockTime        string `yaml:"blockTime"                                split_words:"true"`
	MaxFunds         uint64 `yaml:"maxFunds"                                 split_words:"true"`
	RegistryMaxFunds uint64 `yaml:"registryMaxFunds"                         split_words:"true"`
	MaxLogs          uint64 `yaml:"maxLogs"                                  split_words:"true"`
	CreationFee      uint64 `yaml:"creationFee"                              split_words:"true"`
	ApiPort          uint   `yaml:"apiPort"         envconfig:"port"`
	MetricsPort      uint   `yaml:"metricsPort"                              split_words:"true"`
}

var globalConfig = &Config{
	DatabasePath:     ".fundledger",
	BindAddr:         "0.0.0.0",
	ShutdownTimeout:  DefaultShutdownTimeout,
	Authority:        "",
	SystemPrincipal:  "system",
	BlockTime:        "1s",
	MaxFunds:         500,
	RegistryMaxFunds: 1000,
	MaxLogs:          10000,
	CreationFee:      500,
	ApiPort:          3000,
	MetricsPort:      12798,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.fundledger/fundledger.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(
				homeDir,
				".fundledger",
				"fundledger.yaml",
			)
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/fundledger/fundledger.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/fundledger/fundledger.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Overlay config values onto existing defaults
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Process environment variables
	err := envconfig.Process("fundledger", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
