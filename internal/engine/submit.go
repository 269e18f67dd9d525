package engine

import (
	"errors"

	"go.uber.org/zap"

	"github.com/verte-zerg/omrsheet/internal/model"
	"github.com/verte-zerg/omrsheet/internal/validate"
)

// ErrSubmitInProgress is returned while a previous submission is pending.
var ErrSubmitInProgress = errors.New("submission already in progress")

// GenericSubmitError is shown when the generator fails.
const GenericSubmitError = "An error occurred while generating the OMR sheet. Please try again."

// Submission is a draft accepted for sending. ID ties the generator's
// response back to the lock it should release.
type Submission struct {
	ID    uint64
	Draft model.DraftConfig
}

// Submit validates the draft and, when it passes, locks further submissions
// and returns the snapshot to send. A validation failure shows exactly one
// danger alert and returns the *validate.Error.
func (e *Engine) Submit() (Submission, error) {
	if e.submitting {
		return Submission{}, ErrSubmitInProgress
	}
	e.refresh(false)
	snap := e.store.Snapshot()
	if err := validate.Validate(snap); err != nil {
		e.Notify(err.Error(), model.SeverityDanger)
		e.log.Info("submission blocked", zap.Error(err))
		return Submission{}, err
	}
	e.submitSeq++
	e.submitting = true
	e.resetTask = e.sched.After(e.submitReset, e.unlockSubmit)
	e.log.Info("submission started",
		zap.Uint64("submission", e.submitSeq),
		zap.String("institution", snap.Institution),
		zap.Strings("subjects", snap.Subjects),
		zap.Int("questions", snap.QuestionsPerSubject),
		zap.Int("options", snap.NumOptions),
		zap.Bool("logo", snap.Logo != nil))
	return Submission{ID: e.submitSeq, Draft: snap}, nil
}

// SubmitSucceeded announces the result of submission id and re-enables
// submission if id is the one in flight.
func (e *Engine) SubmitSucceeded(id uint64, message string) {
	e.finishSubmit(id)
	e.Notify(message, model.SeveritySuccess)
}

// SubmitFailed reports a generic failure for submission id. The underlying
// error is only logged.
func (e *Engine) SubmitFailed(id uint64, err error) {
	e.finishSubmit(id)
	e.log.Error("submission failed", zap.Uint64("submission", id), zap.Error(err))
	e.Notify(GenericSubmitError, model.SeverityDanger)
}

// finishSubmit releases the lock only for the submission that holds it. A
// response arriving after the timeout reset belongs to an older request.
func (e *Engine) finishSubmit(id uint64) {
	if !e.submitting || id != e.submitSeq {
		e.log.Info("late submission response", zap.Uint64("submission", id), zap.Uint64("current", e.submitSeq))
		return
	}
	e.resetTask.Cancel()
	e.resetTask = nil
	e.submitting = false
}

func (e *Engine) unlockSubmit() {
	e.resetTask = nil
	if e.submitting {
		e.log.Warn("submission reset after timeout")
	}
	e.submitting = false
}
