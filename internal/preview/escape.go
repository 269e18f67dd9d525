package preview

import (
	"fmt"
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/microcosm-cc/bluemonday"

	"github.com/verte-zerg/omrsheet/internal/model"
)

var (
	htmlPolicyOnce sync.Once
	htmlPolicy     *bluemonday.Policy
)

// Line is one labelled row of a preview, already made safe for the terminal.
type Line struct {
	Label   string
	Value   string
	Warning string
}

// Lines lays out the preview for terminal display.
func Lines(p *model.Preview) []Line {
	if p == nil {
		return nil
	}
	var out []Line
	if p.Institution != "" {
		out = append(out, Line{Label: "Institution", Value: Text(p.Institution)})
	}
	if p.ExamName != "" {
		out = append(out, Line{Label: "Exam", Value: Text(p.ExamName)})
	}
	if p.SubjectCount > 0 {
		line := Line{
			Label: fmt.Sprintf("Subjects (%d)", p.SubjectCount),
			Value: Text(strings.Join(p.Subjects, ", ")),
		}
		if p.OverLimit {
			line.Warning = OverLimitWarning
		}
		out = append(out, line)
	}
	out = append(out,
		Line{Label: "Questions per Subject", Value: Text(p.Questions)},
		Line{Label: "Answer Options", Value: OptionsLabel(p)},
	)
	return out
}

// Text strips terminal escape sequences and control characters from
// untrusted input.
func Text(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// HTML renders the preview as an HTML fragment. User values are escaped, so
// every character the user typed is shown literally, and the assembled
// fragment is filtered down to the layout elements it is built from.
func HTML(p *model.Preview) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="row">`)
	if p.Institution != "" {
		writeItem(&b, "col-md-6", "Institution:", escapeHTML(p.Institution), "")
	}
	if p.ExamName != "" {
		writeItem(&b, "col-md-6", "Exam:", escapeHTML(p.ExamName), "")
	}
	if p.SubjectCount > 0 {
		names := make([]string, len(p.Subjects))
		for i, s := range p.Subjects {
			names[i] = escapeHTML(s)
		}
		warn := ""
		if p.OverLimit {
			warn = OverLimitWarning
		}
		writeItem(&b, "col-md-12", fmt.Sprintf("Subjects (%d):", p.SubjectCount), strings.Join(names, ", "), warn)
	}
	writeItem(&b, "col-md-6", "Questions per Subject:", escapeHTML(p.Questions), "")
	writeItem(&b, "col-md-6", "Answer Options:", escapeHTML(OptionsLabel(p)), "")
	b.WriteString(`</div>`)
	return fragmentSanitizer().Sanitize(b.String())
}

func writeItem(b *strings.Builder, col, label, value, warning string) {
	fmt.Fprintf(b, `<div class="%s mb-2"><div class="preview-item"><strong>%s</strong> %s`, col, label, value)
	if warning != "" {
		fmt.Fprintf(b, `<br><small class="text-warning">%s</small>`, warning)
	}
	b.WriteString(`</div></div>`)
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}

func fragmentSanitizer() *bluemonday.Policy {
	htmlPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("div", "strong", "small", "br")
		policy.AllowAttrs("class").OnElements("div", "small")
		htmlPolicy = policy
	})
	return htmlPolicy
}
