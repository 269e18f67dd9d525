package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/omrsheet/internal/config"
	"github.com/verte-zerg/omrsheet/internal/model"
	"github.com/verte-zerg/omrsheet/internal/preview"
)

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	var institution, exam string
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&institution, "institution", "", "")
	cmd.Flags().StringVar(&exam, "exam", "", "")
	if err := cmd.Flags().Set("institution", "Flag School"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	fromFile := "File School"
	examFromFile := "Midterm"
	applyConfig(cmd, "institution", &institution, &fromFile)
	applyConfig(cmd, "exam", &exam, &examFromFile)
	applyConfig[string](cmd, "exam", &exam, nil)

	if institution != "Flag School" {
		t.Fatalf("expected flag value to win, got %q", institution)
	}
	if exam != "Midterm" {
		t.Fatalf("expected config value, got %q", exam)
	}
}

func TestValidateSettings(t *testing.T) {
	base := settings{cellWidth: 8, narrowWidth: 768, debounceMs: 300, alertMs: 5000, timeoutMs: 1000}
	if err := validateSettings(base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := base
	bad.cellWidth = 0
	if err := validateSettings(bad); err == nil {
		t.Fatalf("expected error for zero cell width")
	}
	bad = base
	bad.debounceMs = -1
	if err := validateSettings(bad); err == nil {
		t.Fatalf("expected error for negative debounce")
	}
}

func TestBuildPresetsAddsConfigPresets(t *testing.T) {
	presets, err := buildPresets([]config.PresetConfig{{
		ID:        "cuet",
		Subjects:  []string{"English", "General Test"},
		Questions: 50,
		Options:   4,
	}})
	if err != nil {
		t.Fatalf("build presets: %v", err)
	}
	p, ok := presets.Lookup("CUET")
	if !ok {
		t.Fatalf("expected CUET preset")
	}
	if p.QuestionsPerSubject != 50 {
		t.Fatalf("expected 50 questions, got %d", p.QuestionsPerSubject)
	}
	if _, ok := presets.Lookup("JEE"); !ok {
		t.Fatalf("expected built-in presets to remain")
	}

	if _, err := buildPresets([]config.PresetConfig{{ID: "EMPTY"}}); err == nil {
		t.Fatalf("expected error for preset without subjects")
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("template should decode: %v", err)
	}
}

func TestWritePreview(t *testing.T) {
	var buf bytes.Buffer
	if err := writePreview(&buf, nil, false); err != nil {
		t.Fatalf("write preview: %v", err)
	}
	if !strings.Contains(buf.String(), "nothing entered") {
		t.Fatalf("expected hidden preview note, got %q", buf.String())
	}

	p := preview.Render(model.DraftConfig{
		Institution:         "Springfield High",
		ExamName:            "Finals",
		SubjectsRaw:         "Math, Physics",
		Subjects:            []string{"Math", "Physics"},
		QuestionsRaw:        "20",
		QuestionsPerSubject: 20,
		QuestionsValid:      true,
		OptionsRaw:          "4",
		NumOptions:          4,
		OptionsValid:        true,
	})
	buf.Reset()
	if err := writePreview(&buf, p, false); err != nil {
		t.Fatalf("write preview: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Springfield High", "Subjects (2): Math, Physics", "A, B, C, D", "Progress: 3/3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
