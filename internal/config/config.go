/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in
// the user scope. Environment variables are treated as read-only overrides
// at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	TelemetryOptIn  bool   `yaml:"telemetry_opt_in"`
	Theme           string `yaml:"theme"` // "system" | "light" | "dark"
	DefaultLanguage string `yaml:"default_language"`
}

type EditorConfig struct {
	NudgeStep      float64 `yaml:"nudge_step"`       // percent per arrow key
	NudgeStepLarge float64 `yaml:"nudge_step_large"` // percent per shift+arrow
	ToolbarGap     int     `yaml:"toolbar_gap"`      // px between toolbar and item
	AutosaveSec    int     `yaml:"autosave_sec"`     // 0 disables autosave
}

type PlaybackConfig struct {
	EmptySpreadDelayMs int  `yaml:"empty_spread_delay_ms"`
	ReducedMotion      bool `yaml:"reduced_motion"`
	Volume             int  `yaml:"volume"` // 0..100
	Muted              bool `yaml:"muted"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	General       GeneralConfig  `yaml:"general"`
	Editor        EditorConfig   `yaml:"editor"`
	Playback      PlaybackConfig `yaml:"playback"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system", DefaultLanguage: "en"},
		Editor:        EditorConfig{NudgeStep: 1, NudgeStepLarge: 5, ToolbarGap: 8, AutosaveSec: 30},
		Playback:      PlaybackConfig{EmptySpreadDelayMs: 1500, ReducedMotion: false, Volume: 100, Muted: false},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvTelemetryOptIn  = "GPB_TELEMETRY_OPT_IN"
	EnvDefaultLanguage = "GPB_DEFAULT_LANGUAGE"
	EnvReducedMotion   = "GPB_REDUCED_MOTION"
	EnvAutosaveSec     = "GPB_AUTOSAVE_SEC"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GPB_LOG_LEVEL"
	EnvLogFormat = "GPB_LOG_FORMAT"
	EnvLogSource = "GPB_LOG_SOURCE"
	EnvLogFile   = "GPB_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Dir returns the per-user application directory, also used for view
// preferences and crash reports.
func Dir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoPictureBook")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoPictureBook")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "gopicturebook")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	if src.General.DefaultLanguage != "" {
		dst.General.DefaultLanguage = src.General.DefaultLanguage
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Editor.NudgeStep > 0 {
		dst.Editor.NudgeStep = src.Editor.NudgeStep
	}
	if src.Editor.NudgeStepLarge > 0 {
		dst.Editor.NudgeStepLarge = src.Editor.NudgeStepLarge
	}
	if src.Editor.ToolbarGap > 0 {
		dst.Editor.ToolbarGap = src.Editor.ToolbarGap
	}
	if src.Editor.AutosaveSec != 0 {
		dst.Editor.AutosaveSec = src.Editor.AutosaveSec
	}
	if src.Playback.EmptySpreadDelayMs > 0 {
		dst.Playback.EmptySpreadDelayMs = src.Playback.EmptySpreadDelayMs
	}
	dst.Playback.ReducedMotion = src.Playback.ReducedMotion
	dst.Playback.Muted = src.Playback.Muted
	if src.Playback.Volume > 0 {
		dst.Playback.Volume = src.Playback.Volume
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDefaultLanguage)); v != "" {
		cfg.General.DefaultLanguage = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvReducedMotion)); v != "" {
		cfg.Playback.ReducedMotion = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutosaveSec)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Editor.AutosaveSec = n
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func isTruthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	switch key {
	case "general.telemetry_opt_in":
		if os.Getenv(EnvTelemetryOptIn) != "" {
			return EnvTelemetryOptIn, true
		}
	case "general.default_language":
		if os.Getenv(EnvDefaultLanguage) != "" {
			return EnvDefaultLanguage, true
		}
	case "playback.reduced_motion":
		if os.Getenv(EnvReducedMotion) != "" {
			return EnvReducedMotion, true
		}
	case "editor.autosave_sec":
		if os.Getenv(EnvAutosaveSec) != "" {
			return EnvAutosaveSec, true
		}
	case "logging.level":
		if os.Getenv(EnvLogLevel) != "" {
			return EnvLogLevel, true
		}
	case "logging.format":
		if os.Getenv(EnvLogFormat) != "" {
			return EnvLogFormat, true
		}
	case "logging.source":
		if os.Getenv(EnvLogSource) != "" {
			return EnvLogSource, true
		}
	case "logging.file":
		if os.Getenv(EnvLogFile) != "" {
			return EnvLogFile, true
		}
	}
	return "", false
}
