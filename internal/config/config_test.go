package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if diff := cmp.Diff(FileConfig{}, cfg); diff != "" {
		t.Fatalf("expected empty config:\n%s", diff)
	}
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[form]
institution = "Springfield High"
questions = 30

[submit]
endpoint = "http://localhost:5000/generate"

[ui]
touch = true
debounce-ms = 250

[[preset]]
id = "CUET"
subjects = ["English", "GK"]
questions = 50
options = 4
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Form.Institution == nil || *cfg.Form.Institution != "Springfield High" {
		t.Fatalf("unexpected institution %+v", cfg.Form)
	}
	if cfg.Form.Questions == nil || *cfg.Form.Questions != 30 || cfg.Form.Options != nil {
		t.Fatalf("unexpected numbers %+v", cfg.Form)
	}
	if cfg.Submit.Endpoint == nil || cfg.UI.Touch == nil || !*cfg.UI.Touch {
		t.Fatalf("unexpected submit/ui %+v %+v", cfg.Submit, cfg.UI)
	}
	want := []PresetConfig{{ID: "CUET", Subjects: []string{"English", "GK"}, Questions: 50, Options: 4}}
	if diff := cmp.Diff(want, cfg.Presets); diff != "" {
		t.Fatalf("presets mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[form]\ninstitutoin = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "omrsheet", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "omrsheet", "omrsheet.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
