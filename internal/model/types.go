// Package model defines shared data structures.
package model

import "time"

// Field names an editable form field.
type Field string

// Editable fields. The string values match the submission form names.
const (
	FieldInstitution Field = "school_name"
	FieldExamName    Field = "exam_name"
	FieldSubjects    Field = "subjects"
	FieldQuestions   Field = "questions_per_subject"
	FieldOptions     Field = "num_options"
)

// Fields lists the editable text fields in form order.
var Fields = []Field{FieldInstitution, FieldExamName, FieldSubjects, FieldQuestions, FieldOptions}

// Logo describes a selected logo file. Only metadata is kept in the draft.
type Logo struct {
	Name      string
	Path      string
	MimeType  string
	SizeBytes int64
}

// DraftConfig is a snapshot of the not-yet-submitted form.
type DraftConfig struct {
	Institution string
	ExamName    string
	SubjectsRaw string
	Subjects    []string

	QuestionsRaw        string
	QuestionsPerSubject int
	QuestionsValid      bool

	OptionsRaw   string
	NumOptions   int
	OptionsValid bool

	Logo *Logo
}

// Preset is a named bundle of subjects, questions and options.
type Preset struct {
	ID                  string
	Subjects            []string
	QuestionsPerSubject int
	NumOptions          int
}

// Severity classifies an alert.
type Severity string

// Alert severities.
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeverityError   Severity = "error"
)

// SwipeDirection reports which way a swiped alert left the screen.
type SwipeDirection int

// Swipe directions.
const (
	SwipeNone SwipeDirection = iota
	SwipeLeft
	SwipeRight
)

// Alert is a transient notification.
type Alert struct {
	ID        string
	Text      string
	Severity  Severity
	CreatedAt time.Time
	Duration  time.Duration
	// Remaining counts whole seconds until auto-dismiss.
	Remaining int

	// Offset and Opacity carry the swipe preview while a gesture is active.
	Offset  int
	Opacity float64
}

// Preview is the structured live preview of a draft.
type Preview struct {
	Institution     string
	ExamName        string
	Subjects        []string
	SubjectCount    int
	OverLimit       bool
	Questions       string
	NumOptions      int
	OptionLetters   []string
	OptionsOverflow bool
	Progress        Progress
}

// Progress tracks how many required text fields are filled.
type Progress struct {
	Completed int
	Total     int
	Percent   int
	Ready     bool
}

// Viewport is the environment signal used to pick input behaviour.
type Viewport struct {
	// Width is in logical pixels.
	Width int
	Touch bool
}
