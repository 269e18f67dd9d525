// Package preview derives the live preview of a draft.
package preview

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/omrsheet/internal/model"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// OverLimitWarning is shown next to a subject list longer than the limit.
const OverLimitWarning = "Maximum 5 subjects allowed"

// maxSubjects mirrors the validation limit; the preview only warns.
const maxSubjects = 5

// Render returns the preview for cfg, or nil when institution, exam name and
// subjects are all blank.
func Render(cfg model.DraftConfig) *model.Preview {
	institution := strings.TrimSpace(cfg.Institution)
	exam := strings.TrimSpace(cfg.ExamName)
	subjectsRaw := strings.TrimSpace(cfg.SubjectsRaw)
	if institution == "" && exam == "" && subjectsRaw == "" {
		return nil
	}
	subjects := append([]string(nil), cfg.Subjects...)
	letters, overflow := Letters(cfg.NumOptions)
	return &model.Preview{
		Institution:     institution,
		ExamName:        exam,
		Subjects:        subjects,
		SubjectCount:    len(subjects),
		OverLimit:       len(subjects) > maxSubjects,
		Questions:       cfg.QuestionsRaw,
		NumOptions:      cfg.NumOptions,
		OptionLetters:   letters,
		OptionsOverflow: overflow,
		Progress:        Progress(cfg),
	}
}

// Letters returns the first n option letters starting at 'A'. Counts above 26
// are capped at 'Z' and reported as overflow.
func Letters(n int) ([]string, bool) {
	if n <= 0 {
		return nil, false
	}
	overflow := false
	if n > len(alphabet) {
		n = len(alphabet)
		overflow = true
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = alphabet[i : i+1]
	}
	return out, overflow
}

// OptionsLabel renders the answer options as "N (A, B, ...)".
func OptionsLabel(p *model.Preview) string {
	letters := strings.Join(p.OptionLetters, ", ")
	if p.OptionsOverflow {
		letters += ", ..."
	}
	return fmt.Sprintf("%d (%s)", p.NumOptions, letters)
}

// Progress counts the filled required text fields.
func Progress(cfg model.DraftConfig) model.Progress {
	fields := []string{cfg.Institution, cfg.ExamName, cfg.SubjectsRaw}
	done := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			done++
		}
	}
	return model.Progress{
		Completed: done,
		Total:     len(fields),
		Percent:   done * 100 / len(fields),
		Ready:     done == len(fields),
	}
}
