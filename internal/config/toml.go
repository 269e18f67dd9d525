// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Form    FormConfig     `toml:"form"`
	Submit  SubmitConfig   `toml:"submit"`
	UI      UIConfig       `toml:"ui"`
	Log     LogConfig      `toml:"log"`
	Presets []PresetConfig `toml:"preset"`
}

// FormConfig maps initial field values.
type FormConfig struct {
	Institution *string `toml:"institution"`
	Exam        *string `toml:"exam"`
	Subjects    *string `toml:"subjects"`
	Questions   *int    `toml:"questions"`
	Options     *int    `toml:"options"`
}

// SubmitConfig maps generator settings.
type SubmitConfig struct {
	Endpoint  *string `toml:"endpoint"`
	TimeoutMs *int    `toml:"timeout-ms"`
	OutputDir *string `toml:"output-dir"`
}

// UIConfig maps viewport and timing settings.
type UIConfig struct {
	CellWidthPx *int  `toml:"cell-width-px"`
	Touch       *bool `toml:"touch"`
	NarrowWidth *int  `toml:"narrow-width"`
	DebounceMs  *int  `toml:"debounce-ms"`
	AlertMs     *int  `toml:"alert-ms"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level *string `toml:"level"`
	Path  *string `toml:"path"`
}

// PresetConfig declares an extra preset.
type PresetConfig struct {
	ID        string   `toml:"id"`
	Subjects  []string `toml:"subjects"`
	Questions int      `toml:"questions"`
	Options   int      `toml:"options"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
