// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lifecycle

import (
	"errors"
	"fmt"

	"github.com/ManuGH/locflow/internal/domain/workflow/model"
)

// Error classes returned by the transition rules.
var (
	ErrWrongStep         = errors.New("operation not allowed in current step")
	ErrNavigationDenied  = errors.New("step not reachable")
	ErrNoCountrySelected = errors.New("no target country selected")
	ErrNoVideo           = errors.New("no video provided")
	ErrNotComplete       = errors.New("localization not complete")
)

// Event is a user intent that moves the stepper forward.
type Event string

const (
	EvSubmit       Event = "submit"
	EvContinue     Event = "continue"
	EvConfirm      Event = "confirm_localization"
	EvGenerate     Event = "generate_campaigns"
	EvStartLocally Event = "start_localization"
)

// Transition describes the step an event is accepted in and where it leads.
type Transition struct {
	From model.Step
	To   model.Step
}

var transitions = map[Event]Transition{
	EvSubmit:       {From: model.StepUpload, To: model.StepAnalysis},
	EvContinue:     {From: model.StepAnalysis, To: model.StepLocalization},
	EvStartLocally: {From: model.StepLocalization, To: model.StepLocalization},
	EvConfirm:      {From: model.StepLocalization, To: model.StepMarketing},
	EvGenerate:     {From: model.StepMarketing, To: model.StepMarketing},
}

// TransitionFor returns the transition for ev when st is in the accepting step.
func TransitionFor(st *model.State, ev Event) (Transition, error) {
	tr, ok := transitions[ev]
	if !ok {
		return Transition{}, fmt.Errorf("unknown event %q", ev)
	}
	if st.CurrentStep != tr.From {
		return Transition{}, fmt.Errorf("%w: %s requires %s, current %s", ErrWrongStep, ev, tr.From, st.CurrentStep)
	}
	return tr, nil
}

// CanNavigate reports whether a direct jump to target is legal: only the
// current step and previously completed steps are reachable.
func CanNavigate(st *model.State, target model.Step) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown step %q", ErrNavigationDenied, target)
	}
	if target == st.CurrentStep || st.IsCompleted(target) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNavigationDenied, target)
}

// Advance applies tr to st, marking the source step completed.
func Advance(st *model.State, tr Transition) {
	if tr.From != tr.To {
		st.MarkCompleted(tr.From)
	}
	st.CurrentStep = tr.To
}
