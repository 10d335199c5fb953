/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration of the snapline tools. The file
// is YAML by default; a path ending in .toml is read as TOML. Environment
// variables override file values at runtime and are never written back.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type SnapConfig struct {
	// Distance is the snapping threshold in pixels.
	Distance int `yaml:"distance" toml:"distance"`
	// Axes is "both", "x" or "y".
	Axes string `yaml:"axes" toml:"axes"`
}

// RenderConfig holds the export colors as #rrggbb strings.
type RenderConfig struct {
	Standard   string `yaml:"standard" toml:"standard"`
	Margin     string `yaml:"margin" toml:"margin"`
	Padding    string `yaml:"padding" toml:"padding"`
	Baseline   string `yaml:"baseline" toml:"baseline"`
	Shape      string `yaml:"shape" toml:"shape"`
	Drag       string `yaml:"drag" toml:"drag"`
	Background string `yaml:"background" toml:"background"`
	// Scale multiplies PNG output size.
	Scale  int  `yaml:"scale" toml:"scale"`
	Labels bool `yaml:"labels" toml:"labels"`
}

// HistoryConfig bounds the move history saved with a scene.
type HistoryConfig struct {
	// Depth is the undo depth per shape.
	Depth int `yaml:"depth" toml:"depth"`
	// CoalesceMS folds moves of one shape made within this many milliseconds
	// into one undo step.
	CoalesceMS int `yaml:"coalesce_ms" toml:"coalesce_ms"`
}

type JournalConfig struct {
	// DSN is a SQLite file path or a postgres:// URL; empty disables journaling.
	DSN string `yaml:"dsn" toml:"dsn"`
	// The password is not stored here; it lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	Source bool   `yaml:"source" toml:"source"`
	File   string `yaml:"file" toml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version" toml:"config_version"`
	Snap          SnapConfig    `yaml:"snap" toml:"snap"`
	Render        RenderConfig  `yaml:"render" toml:"render"`
	History       HistoryConfig `yaml:"history" toml:"history"`
	Journal       JournalConfig `yaml:"journal" toml:"journal"`
	Logging       LoggingConfig `yaml:"logging" toml:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Snap:          SnapConfig{Distance: 8, Axes: "both"},
		Render: RenderConfig{
			Standard:   "#0078d7",
			Margin:     "#e3008c",
			Padding:    "#8764b8",
			Baseline:   "#107c10",
			Shape:      "#5a5a5a",
			Drag:       "#ff8c00",
			Background: "#ffffff",
			Scale:      1,
			Labels:     true,
		},
		History: HistoryConfig{Depth: 50, CoalesceMS: 250},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvSnapDistance = "SNL_SNAP_DISTANCE"
	EnvSnapAxes     = "SNL_SNAP_AXES"
	EnvJournalDSN   = "SNL_JOURNAL_DSN"
	EnvLogLevel     = "SNL_LOG_LEVEL"
	EnvLogFormat    = "SNL_LOG_FORMAT"
	EnvLogSource    = "SNL_LOG_SOURCE"
	EnvLogFile      = "SNL_LOG_FILE"
)

var envKeys = map[string]string{
	"snap.distance":  EnvSnapDistance,
	"snap.axes":      EnvSnapAxes,
	"journal.dsn":    EnvJournalDSN,
	"logging.level":  EnvLogLevel,
	"logging.format": EnvLogFormat,
	"logging.source": EnvLogSource,
	"logging.file":   EnvLogFile,
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Snapline")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Snapline")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "snapline")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "snapline")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

func isTOML(path string) bool { return strings.EqualFold(filepath.Ext(path), ".toml") }

// LoadFile reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	case isTOML(path):
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Defaults(), fmt.Errorf("config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), fmt.Errorf("config %s: %w", path, err)
		}
	}
	normalize(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Load reads the config at path (the per-user path when empty) and fetches the
// journal password from the keychain. A missing keychain entry yields "".
func Load(path string) (AppConfig, string, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return Defaults(), "", err
		}
		path = p
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, "", err
	}
	pw, _ := secrets.Get(keyringService, keyringJournalPassword)
	return cfg, pw, nil
}

// Save writes cfg to path in the format its extension selects and stores a
// non-empty password in the keychain.
func Save(path string, cfg AppConfig, password string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		return secrets.Set(keyringService, keyringJournalPassword, password)
	}
	return nil
}

func normalize(cfg *AppConfig) {
	d := Defaults()
	if cfg.Snap.Distance <= 0 {
		cfg.Snap.Distance = d.Snap.Distance
	}
	cfg.Snap.Axes = strings.ToLower(strings.TrimSpace(cfg.Snap.Axes))
	switch cfg.Snap.Axes {
	case "both", "x", "y":
	default:
		cfg.Snap.Axes = d.Snap.Axes
	}
	if cfg.Render.Scale <= 0 {
		cfg.Render.Scale = 1
	}
	if cfg.History.Depth <= 0 {
		cfg.History.Depth = d.History.Depth
	}
	if cfg.History.CoalesceMS < 0 {
		cfg.History.CoalesceMS = d.History.CoalesceMS
	}
	cfg.Journal.DSN = strings.TrimSpace(cfg.Journal.DSN)
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvSnapDistance)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Snap.Distance = n
		}
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvSnapAxes))); v == "both" || v == "x" || v == "y" {
		cfg.Snap.Axes = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalDSN)); v != "" {
		cfg.Journal.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var that currently overrides the dotted key.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
