// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads and saves the makcuflash TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	// AppName names the per-user configuration directory
	AppName = "makcuflash"
	// CfgFile is the configuration file name
	CfgFile = "config.toml"
)

// Serial holds local serial port settings
type Serial struct {
	Port string `toml:"port" comment:"default port preselected in interactive mode"`
}

// Firmware holds firmware discovery settings
type Firmware struct {
	SearchPaths []string `toml:"search_paths" validate:"dive,required"`
}

// Logging holds log output settings
type Logging struct {
	Level string `toml:"level" validate:"oneof=trace debug info warn error" comment:"trace|debug|info|warn|error"`
	File  string `toml:"file" comment:"empty: no file log"`
}

// Bridge holds WebSocket serial bridge settings
type Bridge struct {
	URL      string `toml:"url" validate:"omitempty,url,startswith=ws"`
	Username string `toml:"username"`
}

// Values is the whole configuration file
type Values struct {
	Serial   Serial   `toml:"serial"`
	Firmware Firmware `toml:"firmware"`
	Logging  Logging  `toml:"logging"`
	Bridge   Bridge   `toml:"bridge"`
}

// Defaults returns the configuration used when no file exists
func Defaults() Values {
	return Values{
		Firmware: Firmware{
			SearchPaths: []string{"firmware", "../firmware", "."},
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field values
func (v *Values) Validate() error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultPath returns the per-user configuration file path
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to find user config dir: %w", err)
	}
	return filepath.Join(dir, AppName, CfgFile), nil
}

// Load reads the configuration at path. A missing file yields the defaults
// and is not created.
func Load(fs afero.Fs, path string) (Values, error) {
	vals := Defaults()

	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", path).Msg("no config file, using defaults")
		return vals, nil
	}
	if err != nil {
		return vals, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top
	if err := toml.Unmarshal(data, &vals); err != nil {
		return Defaults(), fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := vals.Validate(); err != nil {
		return Defaults(), err
	}

	log.Debug().Str("path", path).Msg("loaded config")
	return vals, nil
}

// Save writes vals to path, creating the parent directory
func Save(fs afero.Fs, path string, vals Values) error {
	if err := vals.Validate(); err != nil {
		return err
	}

	data, err := toml.Marshal(&vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
