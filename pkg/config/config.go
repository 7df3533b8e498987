/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config pkg/config/config.go
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	keyToken = "token"
	keyRealm = "realm"

	envPrefix    = "sf" // SF_TOKEN, SF_REALM
	defaultRealm = "us1"
)

// Validator interface for configurations that need validation.
type Validator interface {
	Validate() error
}

// Config carries the credentials the commands forward to the API clients.
// The query/parse/aggregate core never reads the environment itself.
type Config struct {
	Token string `mapstructure:"token"`
	Realm string `mapstructure:"realm"`
}

// Load resolves configuration with the usual precedence: environment
// variables (SF_TOKEN, SF_REALM) over an optional config file over defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault(keyRealm, defaultRealm)

	if configPath != "" {
		v.SetConfigFile(configPath)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		}
	}

	// resolve keys by name; AutomaticEnv does not surface env-only keys
	// through Unmarshal
	return &Config{
		Token: v.GetString(keyToken),
		Realm: v.GetString(keyRealm),
	}, nil
}

// Validate implements Validator.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrTokenRequired
	}

	if c.Realm == "" {
		return ErrRealmRequired
	}

	return nil
}

// LoadAndValidate loads the configuration and validates it.
func LoadAndValidate(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
