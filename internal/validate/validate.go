// Package validate implements the submit-time gate for a draft.
package validate

import (
	"errors"
	"strings"

	"github.com/verte-zerg/omrsheet/internal/model"
)

// Limits enforced on the draft.
const (
	MaxSubjects   = 5
	MaxLogoBytes  = 5 * 1024 * 1024
	MaxNumOptions = 26
)

// AllowedLogoTypes lists the accepted logo MIME types.
var AllowedLogoTypes = []string{"image/png", "image/jpeg", "image/jpg", "image/gif"}

// Kind sentinels usable with errors.Is.
var (
	ErrMissingField        = errors.New("missing field")
	ErrCountExceeded       = errors.New("count exceeded")
	ErrUnsupportedLogoType = errors.New("unsupported logo type")
	ErrLogoTooLarge        = errors.New("logo too large")
	ErrInvalidNumber       = errors.New("invalid number")
	ErrOptionsOutOfRange   = errors.New("options out of range")
)

// Error is a user-facing validation failure.
type Error struct {
	Kind    error
	Field   model.Field
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

type rule func(model.DraftConfig) *Error

var rules = []rule{
	requireText(model.FieldInstitution, func(c model.DraftConfig) string { return c.Institution }, "School/Institution name is required."),
	requireText(model.FieldExamName, func(c model.DraftConfig) string { return c.ExamName }, "Exam name is required."),
	requireSubjects,
	limitSubjects,
	logoType,
	logoSize,
	questionsNumber,
	optionsRange,
}

// Validate returns nil when the draft may be submitted, or the first failing
// rule as an *Error.
func Validate(cfg model.DraftConfig) error {
	for _, r := range rules {
		if err := r(cfg); err != nil {
			return err
		}
	}
	return nil
}

func requireText(field model.Field, get func(model.DraftConfig) string, msg string) rule {
	return func(c model.DraftConfig) *Error {
		if strings.TrimSpace(get(c)) == "" {
			return &Error{Kind: ErrMissingField, Field: field, Message: msg}
		}
		return nil
	}
}

func requireSubjects(c model.DraftConfig) *Error {
	if len(c.Subjects) == 0 {
		return &Error{Kind: ErrMissingField, Field: model.FieldSubjects, Message: "At least one subject is required."}
	}
	return nil
}

func limitSubjects(c model.DraftConfig) *Error {
	if len(c.Subjects) > MaxSubjects {
		return &Error{Kind: ErrCountExceeded, Field: model.FieldSubjects, Message: "Maximum 5 subjects are allowed."}
	}
	return nil
}

func logoType(c model.DraftConfig) *Error {
	if c.Logo == nil || AllowedLogoType(c.Logo.MimeType) {
		return nil
	}
	return &Error{Kind: ErrUnsupportedLogoType, Message: "Logo must be a PNG, JPG, JPEG, or GIF file."}
}

func logoSize(c model.DraftConfig) *Error {
	if c.Logo == nil || c.Logo.SizeBytes <= MaxLogoBytes {
		return nil
	}
	return &Error{Kind: ErrLogoTooLarge, Message: "Logo file size must be less than 5MB."}
}

func questionsNumber(c model.DraftConfig) *Error {
	if c.QuestionsValid {
		return nil
	}
	return &Error{Kind: ErrInvalidNumber, Field: model.FieldQuestions, Message: "Questions per subject must be a whole number."}
}

func optionsRange(c model.DraftConfig) *Error {
	if c.OptionsValid && c.NumOptions >= 1 && c.NumOptions <= MaxNumOptions {
		return nil
	}
	return &Error{Kind: ErrOptionsOutOfRange, Field: model.FieldOptions, Message: "Number of options must be between 1 and 26."}
}

// AllowedLogoType reports whether mime is an accepted logo type.
func AllowedLogoType(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	for _, allowed := range AllowedLogoTypes {
		if mime == allowed {
			return true
		}
	}
	return false
}
