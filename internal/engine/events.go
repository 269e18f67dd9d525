package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/verte-zerg/omrsheet/internal/draft"
	"github.com/verte-zerg/omrsheet/internal/model"
)

// EventKind names a UI event.
type EventKind string

// UI events understood by Dispatch.
const (
	EventInput      EventKind = "input"
	EventChange     EventKind = "change"
	EventBlur       EventKind = "blur"
	EventPreset     EventKind = "preset"
	EventLogo       EventKind = "logo"
	EventSubmit     EventKind = "submit"
	EventDismiss    EventKind = "dismiss"
	EventTouchStart EventKind = "touchstart"
	EventTouchMove  EventKind = "touchmove"
	EventTouchEnd   EventKind = "touchend"
	EventViewport   EventKind = "viewport"
)

// Event is one UI event. Only the fields relevant to Kind are read.
type Event struct {
	Kind     EventKind
	Field    model.Field
	Value    string
	AlertID  string
	X        int
	Viewport model.Viewport
}

type transition func(*Engine, Event) error

// transitions maps each event to the single state transition it triggers.
var transitions = map[EventKind]transition{
	EventInput:      (*Engine).onInput,
	EventChange:     (*Engine).onChange,
	EventBlur:       (*Engine).onBlur,
	EventPreset:     (*Engine).onPreset,
	EventLogo:       (*Engine).onLogo,
	EventSubmit:     (*Engine).onSubmit,
	EventDismiss:    (*Engine).onDismiss,
	EventTouchStart: (*Engine).onTouchStart,
	EventTouchMove:  (*Engine).onTouchMove,
	EventTouchEnd:   (*Engine).onTouchEnd,
	EventViewport:   (*Engine).onViewport,
}

// Dispatch runs the transition registered for ev.Kind.
func (e *Engine) Dispatch(ev Event) error {
	t, ok := transitions[ev.Kind]
	if !ok {
		return fmt.Errorf("unknown event %q", ev.Kind)
	}
	return t(e, ev)
}

func (e *Engine) onInput(ev Event) error {
	if err := e.store.SetField(ev.Field, ev.Value); err != nil {
		return err
	}
	e.refresh(true)
	return nil
}

func (e *Engine) onChange(ev Event) error {
	if err := e.store.SetField(ev.Field, ev.Value); err != nil {
		return err
	}
	e.refresh(false)
	return nil
}

func (e *Engine) onBlur(ev Event) error {
	if ev.Field != model.FieldSubjects {
		return nil
	}
	e.store.NormalizeSubjects()
	e.refresh(false)
	return nil
}

// ApplyPreset overwrites subjects, questions and options, recomputes once and
// announces the preset.
func (e *Engine) ApplyPreset(id string) (model.Preset, error) {
	preset, err := e.store.ApplyPreset(id)
	if err != nil {
		e.Notify(fmt.Sprintf("Unknown template %q.", id), model.SeverityDanger)
		return model.Preset{}, err
	}
	e.refresh(false)
	e.Notify(draft.AppliedMessage(preset), model.SeveritySuccess)
	e.log.Info("preset applied", zap.String("preset", preset.ID))
	return preset, nil
}

func (e *Engine) onPreset(ev Event) error {
	_, err := e.ApplyPreset(ev.Value)
	return err
}

func (e *Engine) onLogo(ev Event) error {
	_, err := e.SelectLogo(ev.Value)
	return err
}

func (e *Engine) onSubmit(Event) error {
	_, err := e.Submit()
	return err
}

func (e *Engine) onDismiss(ev Event) error {
	id := ev.AlertID
	if id == "" {
		alert, ok := e.alerts.Current()
		if !ok {
			return nil
		}
		id = alert.ID
	}
	e.alerts.Dismiss(id)
	return nil
}

func (e *Engine) onTouchStart(ev Event) error {
	e.alerts.TouchStart(ev.X)
	return nil
}

func (e *Engine) onTouchMove(ev Event) error {
	e.alerts.TouchMove(ev.X)
	return nil
}

func (e *Engine) onTouchEnd(ev Event) error {
	if dir := e.alerts.TouchEnd(ev.X); dir != model.SwipeNone {
		e.log.Debug("alert swiped away", zap.Int("direction", int(dir)))
	}
	return nil
}

func (e *Engine) onViewport(ev Event) error {
	e.setViewport(ev.Viewport)
	return nil
}
