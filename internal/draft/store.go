// Package draft owns the in-memory form draft.
package draft

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/omrsheet/internal/model"
)

// Listener is called with a fresh snapshot after every mutation.
type Listener func(model.DraftConfig)

// Defaults seeds a new Store.
type Defaults struct {
	Institution string
	ExamName    string
	Subjects    string
	Questions   string
	Options     string
}

// Store is the single owner of the draft. It is not safe for concurrent use;
// all calls are expected on the UI goroutine.
type Store struct {
	values    map[model.Field]string
	logo      *model.Logo
	presets   *Presets
	listeners []Listener
	batching  bool
}

// NewStore returns a Store seeded with defaults. A nil presets registry falls
// back to the built-in presets.
func NewStore(defaults Defaults, presets *Presets) *Store {
	if presets == nil {
		presets = NewPresets()
	}
	return &Store{
		values: map[model.Field]string{
			model.FieldInstitution: defaults.Institution,
			model.FieldExamName:    defaults.ExamName,
			model.FieldSubjects:    defaults.Subjects,
			model.FieldQuestions:   defaults.Questions,
			model.FieldOptions:     defaults.Options,
		},
		presets: presets,
	}
}

// Subscribe registers a change listener.
func (s *Store) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	s.listeners = append(s.listeners, fn)
}

// Presets returns the registry used by ApplyPreset.
func (s *Store) Presets() *Presets {
	return s.presets
}

// Raw returns the raw text of a field.
func (s *Store) Raw(name model.Field) string {
	return s.values[name]
}

// SetField stores raw text for a field and notifies listeners.
func (s *Store) SetField(name model.Field, raw string) error {
	if _, ok := s.values[name]; !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	s.values[name] = raw
	s.changed()
	return nil
}

// ApplyPreset overwrites subjects, questions and options in one batch and
// notifies listeners once.
func (s *Store) ApplyPreset(id string) (model.Preset, error) {
	preset, ok := s.presets.Lookup(id)
	if !ok {
		return model.Preset{}, fmt.Errorf("unknown preset %q", id)
	}
	s.batching = true
	s.values[model.FieldSubjects] = strings.Join(preset.Subjects, ", ")
	s.values[model.FieldQuestions] = strconv.Itoa(preset.QuestionsPerSubject)
	s.values[model.FieldOptions] = strconv.Itoa(preset.NumOptions)
	s.batching = false
	s.changed()
	return preset, nil
}

// NormalizeSubjects rewrites the subjects text into its canonical
// "A, B, C" form.
func (s *Store) NormalizeSubjects() {
	s.values[model.FieldSubjects] = strings.Join(ParseSubjects(s.values[model.FieldSubjects]), ", ")
	s.changed()
}

// SetLogo records a selected logo file.
func (s *Store) SetLogo(logo model.Logo) {
	l := logo
	s.logo = &l
	s.changed()
}

// ClearLogo removes the logo.
func (s *Store) ClearLogo() {
	if s.logo == nil {
		return
	}
	s.logo = nil
	s.changed()
}

// Snapshot returns a copy of the draft with derived fields computed.
func (s *Store) Snapshot() model.DraftConfig {
	cfg := model.DraftConfig{
		Institution:  s.values[model.FieldInstitution],
		ExamName:     s.values[model.FieldExamName],
		SubjectsRaw:  s.values[model.FieldSubjects],
		Subjects:     ParseSubjects(s.values[model.FieldSubjects]),
		QuestionsRaw: s.values[model.FieldQuestions],
		OptionsRaw:   s.values[model.FieldOptions],
	}
	cfg.QuestionsPerSubject, cfg.QuestionsValid = parseInt(cfg.QuestionsRaw)
	cfg.NumOptions, cfg.OptionsValid = parseInt(cfg.OptionsRaw)
	if s.logo != nil {
		l := *s.logo
		cfg.Logo = &l
	}
	return cfg
}

func (s *Store) changed() {
	if s.batching {
		return
	}
	if len(s.listeners) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.listeners {
		fn(snap)
	}
}

// ParseSubjects splits comma-separated text, trims entries and drops empty
// ones. Order and duplicates are kept.
func ParseSubjects(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func parseInt(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
