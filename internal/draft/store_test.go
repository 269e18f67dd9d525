package draft

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/omrsheet/internal/model"
)

func newTestStore() *Store {
	return NewStore(Defaults{Questions: "25", Options: "4"}, nil)
}

func TestNormalizeSubjectsDropsEmptySegments(t *testing.T) {
	s := newTestStore()
	if err := s.SetField(model.FieldSubjects, "  Math ,Phy,, Chem  "); err != nil {
		t.Fatalf("set subjects: %v", err)
	}
	s.NormalizeSubjects()
	if got := s.Raw(model.FieldSubjects); got != "Math, Phy, Chem" {
		t.Fatalf("unexpected normalized subjects %q", got)
	}
}

func TestNormalizeSubjectsKeepsDuplicates(t *testing.T) {
	s := newTestStore()
	_ = s.SetField(model.FieldSubjects, "Math,Math , ,Bio")
	s.NormalizeSubjects()
	if got := s.Raw(model.FieldSubjects); got != "Math, Math, Bio" {
		t.Fatalf("unexpected normalized subjects %q", got)
	}
}

func TestParseSubjects(t *testing.T) {
	cases := map[string][]string{
		"":                 {},
		" , ,":             {},
		"Physics":          {"Physics"},
		"a, b ,c":          {"a", "b", "c"},
		"Bio,,Bio, Chem  ": {"Bio", "Bio", "Chem"},
	}
	for raw, want := range cases {
		if diff := cmp.Diff(want, ParseSubjects(raw)); diff != "" {
			t.Fatalf("ParseSubjects(%q) mismatch (-want +got):\n%s", raw, diff)
		}
	}
}

func TestSetFieldRejectsUnknownField(t *testing.T) {
	s := newTestStore()
	if err := s.SetField(model.Field("colour"), "red"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestSnapshotIsIdempotent(t *testing.T) {
	s := newTestStore()
	_ = s.SetField(model.FieldInstitution, "Springfield High")
	_ = s.SetField(model.FieldSubjects, "Math, Bio")
	s.SetLogo(model.Logo{Name: "logo.png", MimeType: "image/png", SizeBytes: 10})

	first := s.Snapshot()
	second := s.Snapshot()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("snapshots differ (-first +second):\n%s", diff)
	}

	first.Subjects[0] = "changed"
	first.Logo.SizeBytes = 99
	third := s.Snapshot()
	if third.Subjects[0] != "Math" || third.Logo.SizeBytes != 10 {
		t.Fatalf("snapshot mutation leaked into store: %+v", third)
	}
}

func TestSnapshotParsesNumbers(t *testing.T) {
	s := newTestStore()
	snap := s.Snapshot()
	if !snap.QuestionsValid || snap.QuestionsPerSubject != 25 {
		t.Fatalf("unexpected questions %+v", snap)
	}
	_ = s.SetField(model.FieldOptions, "four")
	snap = s.Snapshot()
	if snap.OptionsValid || snap.NumOptions != 0 || snap.OptionsRaw != "four" {
		t.Fatalf("expected unparseable options to be kept raw: %+v", snap)
	}
}

func TestApplyPresetJEE(t *testing.T) {
	s := newTestStore()
	_ = s.SetField(model.FieldInstitution, "Springfield High")
	_ = s.SetField(model.FieldExamName, "Mock 1")
	s.SetLogo(model.Logo{Name: "logo.gif", MimeType: "image/gif"})

	var notified []model.DraftConfig
	s.Subscribe(func(cfg model.DraftConfig) { notified = append(notified, cfg) })

	preset, err := s.ApplyPreset("jee")
	if err != nil {
		t.Fatalf("apply preset: %v", err)
	}
	if preset.ID != PresetJEE {
		t.Fatalf("unexpected preset %q", preset.ID)
	}
	if len(notified) != 1 {
		t.Fatalf("expected exactly one change notification, got %d", len(notified))
	}

	snap := s.Snapshot()
	if diff := cmp.Diff([]string{"Physics", "Chemistry", "Mathematics"}, snap.Subjects); diff != "" {
		t.Fatalf("subjects mismatch (-want +got):\n%s", diff)
	}
	if snap.QuestionsPerSubject != 25 || snap.NumOptions != 4 {
		t.Fatalf("unexpected numbers %+v", snap)
	}
	if snap.Institution != "Springfield High" || snap.ExamName != "Mock 1" || snap.Logo == nil {
		t.Fatalf("preset touched unrelated fields: %+v", snap)
	}
	if diff := cmp.Diff(snap, notified[0]); diff != "" {
		t.Fatalf("listener saw a different state (-final +notified):\n%s", diff)
	}
}

func TestApplyPresetNEET(t *testing.T) {
	s := newTestStore()
	if _, err := s.ApplyPreset(PresetNEET); err != nil {
		t.Fatalf("apply preset: %v", err)
	}
	snap := s.Snapshot()
	if snap.SubjectsRaw != "Physics, Chemistry, Botany, Zoology" || snap.QuestionsPerSubject != 45 || snap.NumOptions != 4 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestApplyUnknownPresetLeavesDraft(t *testing.T) {
	s := newTestStore()
	calls := 0
	s.Subscribe(func(model.DraftConfig) { calls++ })
	if _, err := s.ApplyPreset("SAT"); err == nil {
		t.Fatalf("expected unknown preset error")
	}
	if calls != 0 {
		t.Fatalf("expected no notification, got %d", calls)
	}
}

func TestEveryMutationNotifiesOnce(t *testing.T) {
	s := newTestStore()
	calls := 0
	s.Subscribe(func(model.DraftConfig) { calls++ })
	_ = s.SetField(model.FieldExamName, "Final")
	s.NormalizeSubjects()
	s.SetLogo(model.Logo{Name: "a.png"})
	s.ClearLogo()
	s.ClearLogo()
	if calls != 4 {
		t.Fatalf("expected 4 notifications, got %d", calls)
	}
}

func TestAppliedMessage(t *testing.T) {
	preset, _ := NewPresets().Lookup(PresetJEE)
	want := "JEE template applied! Physics, Chemistry, Mathematics with 25 questions each."
	if got := AppliedMessage(preset); got != want {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRegisterPresetValidates(t *testing.T) {
	p := NewPresets()
	if err := p.Register(model.Preset{ID: " ", Subjects: []string{"a"}, QuestionsPerSubject: 1, NumOptions: 1}); err == nil {
		t.Fatalf("expected empty id error")
	}
	if err := p.Register(model.Preset{ID: "CUET", Subjects: []string{" ", ""}, QuestionsPerSubject: 1, NumOptions: 1}); err == nil {
		t.Fatalf("expected empty subjects error")
	}
	if err := p.Register(model.Preset{ID: "CUET", Subjects: []string{"English ", "GK"}, QuestionsPerSubject: 50, NumOptions: 4}); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, ok := p.Lookup("cuet")
	if !ok || got.Subjects[0] != "English" {
		t.Fatalf("unexpected lookup %+v %v", got, ok)
	}
	if n := len(p.List()); n != 3 {
		t.Fatalf("expected 3 presets, got %d", n)
	}
}
