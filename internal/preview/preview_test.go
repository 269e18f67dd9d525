package preview

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/omrsheet/internal/draft"
	"github.com/verte-zerg/omrsheet/internal/model"
)

func draftWith(institution, exam, subjects string) model.DraftConfig {
	return model.DraftConfig{
		Institution:  institution,
		ExamName:     exam,
		SubjectsRaw:  subjects,
		Subjects:     draft.ParseSubjects(subjects),
		QuestionsRaw: "25",
		NumOptions:   4,
	}
}

func TestRenderHiddenWhenAllBlank(t *testing.T) {
	if p := Render(draftWith(" ", "", "  ")); p != nil {
		t.Fatalf("expected hidden preview, got %+v", p)
	}
}

func TestRenderShownWhenAnyFieldFilled(t *testing.T) {
	for _, cfg := range []model.DraftConfig{
		draftWith("A", "", ""),
		draftWith("", "B", ""),
		draftWith("", "", "C"),
		draftWith("", "", " , "),
	} {
		if Render(cfg) == nil {
			t.Fatalf("expected preview for %+v", cfg)
		}
	}
}

func TestRenderOverLimitWarning(t *testing.T) {
	for n := 1; n <= 8; n++ {
		names := make([]string, n)
		for i := range names {
			names[i] = "S"
		}
		p := Render(draftWith("", "", strings.Join(names, ",")))
		if p.SubjectCount != n {
			t.Fatalf("n=%d: count %d", n, p.SubjectCount)
		}
		if p.OverLimit != (n > 5) {
			t.Fatalf("n=%d: over limit %v", n, p.OverLimit)
		}
	}
}

func TestRenderPassesQuestionsThrough(t *testing.T) {
	cfg := draftWith("A", "", "")
	cfg.QuestionsRaw = "abc"
	if p := Render(cfg); p.Questions != "abc" {
		t.Fatalf("expected raw questions, got %q", p.Questions)
	}
}

func TestLetters(t *testing.T) {
	four, _ := Letters(4)
	if got := strings.Join(four, ", "); got != "A, B, C, D" {
		t.Fatalf("unexpected letters %q", got)
	}
	one, _ := Letters(1)
	if got := strings.Join(one, ", "); got != "A" {
		t.Fatalf("unexpected letters %q", got)
	}
	none, overflow := Letters(0)
	if len(none) != 0 || overflow {
		t.Fatalf("expected no letters for zero")
	}
	capped, overflow := Letters(30)
	if len(capped) != 26 || capped[25] != "Z" || !overflow {
		t.Fatalf("expected capped letters, got %v %v", capped, overflow)
	}
}

func TestOptionsLabel(t *testing.T) {
	p := Render(draftWith("A", "", ""))
	if got := OptionsLabel(p); got != "4 (A, B, C, D)" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestProgress(t *testing.T) {
	want := model.Progress{Completed: 2, Total: 3, Percent: 66, Ready: false}
	if diff := cmp.Diff(want, Progress(draftWith("A", "B", " "))); diff != "" {
		t.Fatalf("progress mismatch (-want +got):\n%s", diff)
	}
	if !Progress(draftWith("A", "B", "C")).Ready {
		t.Fatalf("expected ready progress")
	}
}

func TestLinesStripsTerminalEscapes(t *testing.T) {
	p := Render(draftWith("\x1b[31mRed School\x1b[0m", "Exam\x07", "A,B,C,D,E,F"))
	lines := Lines(p)
	want := []Line{
		{Label: "Institution", Value: "Red School"},
		{Label: "Exam", Value: "Exam"},
		{Label: "Subjects (6)", Value: "A, B, C, D, E, F", Warning: OverLimitWarning},
		{Label: "Questions per Subject", Value: "25"},
		{Label: "Answer Options", Value: "4 (A, B, C, D)"},
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLEscapesUserText(t *testing.T) {
	p := Render(draftWith("Tom & Jerry <script>alert(1)</script>", "<b>Final</b>", "Math"))
	out := HTML(p)
	for _, bad := range []string{"<script", "<b>", "</b>"} {
		if strings.Contains(out, bad) {
			t.Fatalf("fragment contains %q: %s", bad, out)
		}
	}
	for _, good := range []string{
		"Tom &amp; Jerry &lt;script&gt;alert(1)&lt;/script&gt;",
		"&lt;b&gt;Final&lt;/b&gt;",
		"Subjects (1):",
		"4 (A, B, C, D)",
		`<div class="row">`,
		"<strong>Exam:</strong>",
	} {
		if !strings.Contains(out, good) {
			t.Fatalf("fragment missing %q: %s", good, out)
		}
	}
	if HTML(nil) != "" {
		t.Fatalf("expected empty fragment for hidden preview")
	}
}

func TestHTMLKeepsEveryCharacter(t *testing.T) {
	out := HTML(Render(draftWith("A<B Academy", "Mid > Final", "Math")))
	for _, want := range []string{"A&lt;B Academy", "Mid &gt; Final"} {
		if !strings.Contains(out, want) {
			t.Fatalf("fragment missing %q: %s", want, out)
		}
	}
}
