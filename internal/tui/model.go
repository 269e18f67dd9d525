package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/omrsheet/internal/engine"
	"github.com/verte-zerg/omrsheet/internal/model"
	"github.com/verte-zerg/omrsheet/internal/submit"
)

const defaultCellWidth = 8

var errNoEndpoint = errors.New("no generator endpoint configured")

// Submitter sends a validated draft to the generator.
type Submitter interface {
	Submit(ctx context.Context, cfg model.DraftConfig) (submit.Result, error)
}

// Options configures the form UI.
type Options struct {
	Client    Submitter
	OutputDir string
	// CellWidth converts terminal columns to logical pixels.
	CellWidth int
	Touch     bool
	Logger    *zap.Logger
	Now       func() time.Time
}

type tickMsg struct {
	due time.Time
	at  time.Time
}

type submitDoneMsg struct {
	id     uint64
	result submit.Result
	err    error
}

type logoLoadedMsg engine.LogoLoaded

type formField struct {
	field model.Field
	label string
	logo  bool
}

var formFields = []formField{
	{field: model.FieldInstitution, label: "School/Institution"},
	{field: model.FieldExamName, label: "Exam Name"},
	{field: model.FieldSubjects, label: "Subjects (comma separated, max 5)"},
	{field: model.FieldQuestions, label: "Questions per Subject"},
	{field: model.FieldOptions, label: "Answer Options"},
	{label: "Logo (PNG/JPG/GIF, max 5MB)", logo: true},
}

// Model implements the Bubble Tea form UI. All engine calls happen inside
// Update, so the engine stays on a single goroutine.
type Model struct {
	engine    *engine.Engine
	client    Submitter
	outputDir string
	cellWidth int
	touch     bool
	log       *zap.Logger
	now       func() time.Time

	inputs  []textinput.Model
	focus   int
	spinner spinner.Model

	width  int
	height int

	tickDue time.Time
}

// NewModel constructs the form UI around e.
func NewModel(e *engine.Engine, opts Options) *Model {
	m := &Model{
		engine:    e,
		client:    opts.Client,
		outputDir: opts.OutputDir,
		cellWidth: opts.CellWidth,
		touch:     opts.Touch,
		log:       opts.Logger,
		now:       opts.Now,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
	if m.cellWidth <= 0 {
		m.cellWidth = defaultCellWidth
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.initInputs()
	return m
}

func (m *Model) initInputs() {
	m.inputs = make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		input := textinput.New()
		input.Prompt = "> "
		input.CharLimit = 256
		if !f.logo {
			input.SetValue(m.engine.Raw(f.field))
		}
		m.inputs[i] = input
	}
	m.inputs[m.focus].Focus()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.scheduleTick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.engine.Scheduler().AdvanceTo(m.now())
	cmd := m.update(msg)
	return m, tea.Batch(cmd, m.scheduleTick())
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dispatch(engine.Event{Kind: engine.EventViewport, Viewport: model.Viewport{
			Width: msg.Width * m.cellWidth,
			Touch: m.touch,
		}})
		return nil
	case tickMsg:
		if msg.due.Equal(m.tickDue) {
			m.tickDue = time.Time{}
		}
		return nil
	case submitDoneMsg:
		return m.handleSubmitDone(msg)
	case logoLoadedMsg:
		m.engine.LogoLoaded(engine.LogoLoaded(msg))
		return nil
	case spinner.TickMsg:
		if !m.engine.Submitting() {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	case tea.MouseMsg:
		m.handleMouse(msg)
		return nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return cmd
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "tab", "down":
		return m.moveFocus(1)
	case "shift+tab", "up":
		return m.moveFocus(-1)
	case "esc":
		m.dispatch(engine.Event{Kind: engine.EventDismiss})
		return nil
	case "enter":
		return m.submit()
	}
	if msg.Alt && msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if cmd, ok := m.presetShortcut(msg.Runes[0]); ok {
			return cmd
		}
	}
	return m.editFocused(msg)
}

func (m *Model) editFocused(msg tea.KeyMsg) tea.Cmd {
	prev := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	value := m.inputs[m.focus].Value()
	if value == prev {
		return cmd
	}
	if f := formFields[m.focus]; !f.logo {
		m.dispatch(engine.Event{Kind: engine.EventInput, Field: f.field, Value: value})
	}
	return cmd
}

func (m *Model) presetShortcut(r rune) (tea.Cmd, bool) {
	presets := m.engine.Presets()
	idx := int(r - '1')
	if idx < 0 || idx >= len(presets) {
		return nil, false
	}
	m.dispatch(engine.Event{Kind: engine.EventPreset, Value: presets[idx].ID})
	m.syncInputs()
	return nil, true
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	cmd := m.blurFocused()
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return tea.Batch(cmd, m.inputs[m.focus].Focus())
}

// blurFocused delivers the blur event for the focused field. Leaving the logo
// field selects the file and starts reading it.
func (m *Model) blurFocused() tea.Cmd {
	f := formFields[m.focus]
	if !f.logo {
		m.dispatch(engine.Event{Kind: engine.EventBlur, Field: f.field})
		m.syncInputs()
		return nil
	}
	value := m.inputs[m.focus].Value()
	before := m.engine.Snapshot().Logo
	if before != nil && before.Path == value {
		return nil
	}
	m.dispatch(engine.Event{Kind: engine.EventLogo, Value: value})
	logo := m.engine.Snapshot().Logo
	if logo == nil {
		return nil
	}
	selected := *logo
	return func() tea.Msg {
		return logoLoadedMsg(engine.LoadLogo(selected))
	}
}

func (m *Model) syncInputs() {
	for i, f := range formFields {
		if f.logo {
			continue
		}
		if raw := m.engine.Raw(f.field); m.inputs[i].Value() != raw {
			m.inputs[i].SetValue(raw)
		}
	}
}

func (m *Model) submit() tea.Cmd {
	if m.engine.Submitting() {
		return nil
	}
	blurCmd := m.blurFocused()
	sub, err := m.engine.Submit()
	if err != nil {
		return blurCmd
	}
	client := m.client
	return tea.Batch(blurCmd, m.spinner.Tick, func() tea.Msg {
		if client == nil {
			return submitDoneMsg{id: sub.ID, err: errNoEndpoint}
		}
		res, err := client.Submit(context.Background(), sub.Draft)
		return submitDoneMsg{id: sub.ID, result: res, err: err}
	})
}

func (m *Model) handleSubmitDone(msg submitDoneMsg) tea.Cmd {
	if msg.err != nil {
		m.engine.SubmitFailed(msg.id, msg.err)
		return nil
	}
	path, err := submit.Save(m.outputDir, msg.result)
	if err != nil {
		m.engine.SubmitFailed(msg.id, err)
		return nil
	}
	m.log.Info("sheet saved", zap.String("path", path), zap.Int("bytes", len(msg.result.Body)))
	m.engine.SubmitSucceeded(msg.id, fmt.Sprintf("OMR sheet saved to %s", path))
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if !m.touch {
		return
	}
	x := msg.X * m.cellWidth
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.dispatch(engine.Event{Kind: engine.EventTouchStart, X: x})
		}
	case tea.MouseActionMotion:
		m.dispatch(engine.Event{Kind: engine.EventTouchMove, X: x})
	case tea.MouseActionRelease:
		m.dispatch(engine.Event{Kind: engine.EventTouchEnd, X: x})
	}
}

func (m *Model) dispatch(ev engine.Event) {
	if err := m.engine.Dispatch(ev); err != nil {
		m.log.Debug("event rejected", zap.String("event", string(ev.Kind)), zap.Error(err))
	}
}

// scheduleTick asks Bubble Tea to wake the model when the next engine task is
// due. Only the earliest outstanding deadline gets a timer.
func (m *Model) scheduleTick() tea.Cmd {
	next, ok := m.engine.Scheduler().Next()
	if !ok {
		return nil
	}
	if !m.tickDue.IsZero() && !next.Before(m.tickDue) {
		return nil
	}
	m.tickDue = next
	delay := next.Sub(m.now())
	if delay < 0 {
		delay = 0
	}
	return tea.Tick(delay, func(at time.Time) tea.Msg {
		return tickMsg{due: next, at: at}
	})
}
