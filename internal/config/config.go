/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the per-user YAML configuration. Values from the file
// are merged over defaults; DRAW_* environment variables override both.
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

// config_version: bump when the structure changes in a backward-incompatible way.

type CanvasConfig struct {
	// Density scales brush sizes to pixels; 0 lets the UI use the display scale.
	Density      float32   `yaml:"density"`
	DefaultColor string    `yaml:"default_color"`
	Palette      []string  `yaml:"palette"`
	BrushSizes   []float32 `yaml:"brush_sizes"`
	DefaultBrush float32   `yaml:"default_brush"`
	MaxHistory   int       `yaml:"max_history"` // 0 = unlimited
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
	// Background is the opaque base color exports are composed over.
	Background string `yaml:"background"`
	// Catalog is the SQLite file recording exports; "off" disables it.
	Catalog string `yaml:"catalog"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas: CanvasConfig{
			DefaultColor: "#FF000000",
			Palette: []string{
				"#FFFFFF", "#000000", "#FF0000", "#FF9800", "#FFEB3B",
				"#4CAF50", "#2196F3", "#3F51B5", "#9C27B0", "#795548",
			},
			BrushSizes:   []float32{5, 10, 15, 20},
			DefaultBrush: 5,
		},
		Export: ExportConfig{
			Dir:        DefaultExportDir(),
			Background: "#FFFFFF",
			Catalog:    DefaultCatalogPath(),
		},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvDensity          = "DRAW_DENSITY"
	EnvDefaultColor     = "DRAW_DEFAULT_COLOR"
	EnvBrushSize        = "DRAW_BRUSH_SIZE"
	EnvExportDir        = "DRAW_EXPORT_DIR"
	EnvExportBackground = "DRAW_EXPORT_BACKGROUND"
	EnvCatalog          = "DRAW_CATALOG"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "DRAW_LOG_LEVEL"
	EnvLogFormat = "DRAW_LOG_FORMAT"
	EnvLogSource = "DRAW_LOG_SOURCE"
	EnvLogFile   = "DRAW_LOG_FILE"
)

// CatalogOff disables the export catalog when used as export.catalog.
const CatalogOff = "off"

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "DrawingApp")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "DrawingApp")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "drawingapp")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "drawingapp")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

func cacheBase() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "drawingapp")
	}
	return filepath.Join(os.TempDir(), "drawingapp")
}

// DefaultExportDir is where exported images land unless configured.
func DefaultExportDir() string { return filepath.Join(cacheBase(), "exports") }

// DefaultCatalogPath is the export catalog location unless configured.
func DefaultCatalogPath() string { return filepath.Join(cacheBase(), "exports.sqlite") }

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. A malformed file is reported together with the
// defaults-plus-env config so callers can continue.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var perr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			perr = err
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, perr
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
	// canvas
	if src.Canvas.Density > 0 {
		dst.Canvas.Density = src.Canvas.Density
	}
	if v := strings.TrimSpace(src.Canvas.DefaultColor); v != "" {
		dst.Canvas.DefaultColor = v
	}
	if len(src.Canvas.Palette) > 0 {
		dst.Canvas.Palette = append([]string(nil), src.Canvas.Palette...)
	}
	if sizes := positive(src.Canvas.BrushSizes); len(sizes) > 0 {
		dst.Canvas.BrushSizes = sizes
	}
	if src.Canvas.DefaultBrush > 0 {
		dst.Canvas.DefaultBrush = src.Canvas.DefaultBrush
	}
	if src.Canvas.MaxHistory > 0 {
		dst.Canvas.MaxHistory = src.Canvas.MaxHistory
	}
	// export
	if v := strings.TrimSpace(src.Export.Dir); v != "" {
		dst.Export.Dir = v
	}
	if v := strings.TrimSpace(src.Export.Background); v != "" {
		dst.Export.Background = v
	}
	if v := strings.TrimSpace(src.Export.Catalog); v != "" {
		dst.Export.Catalog = v
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

func positive(in []float32) []float32 {
	var out []float32
	for _, v := range in {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDensity)); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 {
			cfg.Canvas.Density = float32(f)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDefaultColor)); v != "" {
		cfg.Canvas.DefaultColor = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBrushSize)); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 {
			cfg.Canvas.DefaultBrush = float32(f)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportBackground)); v != "" {
		cfg.Export.Background = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCatalog)); v != "" {
		cfg.Export.Catalog = v
	}
	// logging overrides
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

// envKeys maps dotted config keys to the variables that override them.
var envKeys = map[string]string{
	"canvas.density":       EnvDensity,
	"canvas.default_color": EnvDefaultColor,
	"canvas.default_brush": EnvBrushSize,
	"export.dir":           EnvExportDir,
	"export.background":    EnvExportBackground,
	"export.catalog":       EnvCatalog,
	"logging.level":        EnvLogLevel,
	"logging.format":       EnvLogFormat,
	"logging.source":       EnvLogSource,
	"logging.file":         EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// CatalogEnabled reports whether exports should be recorded.
func (e ExportConfig) CatalogEnabled() bool {
	v := strings.TrimSpace(e.Catalog)
	return v != "" && !strings.EqualFold(v, CatalogOff)
}
