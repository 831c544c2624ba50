/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Editor.NudgeStep != 1 || cfg.Editor.NudgeStepLarge != 5 {
		t.Fatalf("nudge defaults: %#v", cfg.Editor)
	}
	if cfg.Editor.ToolbarGap != 8 {
		t.Fatalf("ToolbarGap = %d, want 8", cfg.Editor.ToolbarGap)
	}
	if cfg.Playback.EmptySpreadDelayMs != 1500 {
		t.Fatalf("EmptySpreadDelayMs = %d, want 1500", cfg.Playback.EmptySpreadDelayMs)
	}
	if cfg.General.TelemetryOptIn {
		t.Fatalf("telemetry must default to opt-out")
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	old := os.Getenv(EnvTelemetryOptIn)
	_ = os.Setenv(EnvTelemetryOptIn, "true")
	t.Cleanup(func() { _ = os.Setenv(EnvTelemetryOptIn, old) })
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestEnvOverridesReducedMotion(t *testing.T) {
	old := os.Getenv(EnvReducedMotion)
	_ = os.Setenv(EnvReducedMotion, "1")
	t.Cleanup(func() { _ = os.Setenv(EnvReducedMotion, old) })
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Playback.ReducedMotion {
		t.Fatalf("Playback.ReducedMotion expected true from env override")
	}
	if name, ok := EnvOverrideFor("playback.reduced_motion"); !ok || name != EnvReducedMotion {
		t.Fatalf("EnvOverrideFor = %q, %v", name, ok)
	}
}

func TestMergeIncludesEditor(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Editor.NudgeStep = 0.5
	src.Editor.NudgeStepLarge = 10
	src.Editor.ToolbarGap = 12
	mergeInto(&dst, &src)
	if dst.Editor.NudgeStep != 0.5 || dst.Editor.NudgeStepLarge != 10 || dst.Editor.ToolbarGap != 12 {
		t.Fatalf("editor fields not merged correctly: %#v", dst.Editor)
	}
}

func TestMergeIgnoresZeroEditorValues(t *testing.T) {
	dst := Defaults()
	src := AppConfig{} // empty file
	mergeInto(&dst, &src)
	if dst.Editor.NudgeStep != 1 || dst.Playback.EmptySpreadDelayMs != 1500 {
		t.Fatalf("zero values must not clobber defaults: %#v", dst)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "DEBUG"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/gpb.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/gpb.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	oldLevel := os.Getenv(EnvLogLevel)
	oldFmt := os.Getenv(EnvLogFormat)
	oldSrc := os.Getenv(EnvLogSource)
	oldFile := os.Getenv(EnvLogFile)
	_ = os.Setenv(EnvLogLevel, "error")
	_ = os.Setenv(EnvLogFormat, "json")
	_ = os.Setenv(EnvLogSource, "1")
	_ = os.Setenv(EnvLogFile, "/tmp/gpb-env.log")
	t.Cleanup(func() {
		_ = os.Setenv(EnvLogLevel, oldLevel)
		_ = os.Setenv(EnvLogFormat, oldFmt)
		_ = os.Setenv(EnvLogSource, oldSrc)
		_ = os.Setenv(EnvLogFile, oldFile)
	})
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/tmp/gpb-env.log" {
		t.Fatalf("logging env overrides not applied: %#v", cfg.Logging)
	}
}
