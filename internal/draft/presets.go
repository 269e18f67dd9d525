package draft

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/omrsheet/internal/model"
)

// Built-in preset identifiers.
const (
	PresetJEE  = "JEE"
	PresetNEET = "NEET"
)

// Presets is a registry of named presets keyed case-insensitively.
type Presets struct {
	byKey map[string]model.Preset
}

// NewPresets returns a registry holding the built-in presets.
func NewPresets() *Presets {
	p := &Presets{byKey: map[string]model.Preset{}}
	p.mustRegister(model.Preset{
		ID:                  PresetJEE,
		Subjects:            []string{"Physics", "Chemistry", "Mathematics"},
		QuestionsPerSubject: 25,
		NumOptions:          4,
	})
	p.mustRegister(model.Preset{
		ID:                  PresetNEET,
		Subjects:            []string{"Physics", "Chemistry", "Botany", "Zoology"},
		QuestionsPerSubject: 45,
		NumOptions:          4,
	})
	return p
}

// Register adds or replaces a preset.
func (p *Presets) Register(preset model.Preset) error {
	id := strings.TrimSpace(preset.ID)
	if id == "" {
		return fmt.Errorf("preset id is empty")
	}
	subjects := make([]string, 0, len(preset.Subjects))
	for _, s := range preset.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			subjects = append(subjects, s)
		}
	}
	if len(subjects) == 0 {
		return fmt.Errorf("preset %q has no subjects", id)
	}
	if preset.QuestionsPerSubject <= 0 {
		return fmt.Errorf("preset %q: questions must be > 0", id)
	}
	if preset.NumOptions <= 0 {
		return fmt.Errorf("preset %q: options must be > 0", id)
	}
	preset.ID = id
	preset.Subjects = subjects
	p.byKey[strings.ToUpper(id)] = preset
	return nil
}

func (p *Presets) mustRegister(preset model.Preset) {
	if err := p.Register(preset); err != nil {
		panic(err)
	}
}

// Lookup finds a preset by id, ignoring case.
func (p *Presets) Lookup(id string) (model.Preset, bool) {
	preset, ok := p.byKey[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return model.Preset{}, false
	}
	preset.Subjects = append([]string(nil), preset.Subjects...)
	return preset, true
}

// List returns all presets sorted by id.
func (p *Presets) List() []model.Preset {
	out := make([]model.Preset, 0, len(p.byKey))
	for _, preset := range p.byKey {
		preset.Subjects = append([]string(nil), preset.Subjects...)
		out = append(out, preset)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AppliedMessage is the success notice shown after a preset is applied.
func AppliedMessage(preset model.Preset) string {
	return fmt.Sprintf("%s template applied! %s with %d questions each.",
		preset.ID, strings.Join(preset.Subjects, ", "), preset.QuestionsPerSubject)
}
