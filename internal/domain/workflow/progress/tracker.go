// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package progress advances localization task progress. All functions are
// pure: they return a new aggregate and never mutate their input.
package progress

import (
	"math/rand/v2"
	"slices"

	"github.com/ManuGH/locflow/internal/domain/workflow/model"
)

// Lane identifies one kind of task.
type Lane string

const (
	LaneDubbing     Lane = "dubbing"
	LaneTranslation Lane = "translation"
	LaneAdaptation  Lane = "adaptation"
)

// Bounds is the inclusive increment range for a lane.
type Bounds struct {
	Min, Max int
}

// DefaultBounds makes dubbing the slowest lane and translation the fastest.
var DefaultBounds = map[Lane]Bounds{
	LaneDubbing:     {Min: 5, Max: 20},
	LaneTranslation: {Min: 8, Max: 28},
	LaneAdaptation:  {Min: 6, Max: 18},
}

// AdaptationChanges is filled in when the adaptation task completes.
var AdaptationChanges = []string{
	"Renk paleti hedef kültüre göre uyarlandı",
	"Müzik ve ses efektleri yerel tercihlere göre düzenlendi",
	"Görsel semboller ve jestler kültürel olarak kontrol edildi",
	"Metin ve altyazılar yerel ifadelere uyarlandı",
}

// Increment yields the step for lane given its bounds.
type Increment func(lane Lane, b Bounds) int

// RandomIncrement draws uniformly within the lane bounds.
func RandomIncrement(r *rand.Rand) Increment {
	return func(_ Lane, b Bounds) int {
		if b.Max <= b.Min {
			return b.Min
		}
		return b.Min + r.IntN(b.Max-b.Min+1)
	}
}

// MinIncrement always takes the lower bound.
func MinIncrement(_ Lane, b Bounds) int { return b.Min }

// FixedIncrement ignores the bounds and always returns n.
func FixedIncrement(n int) Increment {
	return func(Lane, Bounds) int { return n }
}

// Initialize returns existing unchanged when non-nil. Otherwise it creates a
// pending 0% dubbing and translation task per country plus one pending
// adaptation task.
func Initialize(existing *model.LocalizationProgress, countries []model.Country) *model.LocalizationProgress {
	if existing != nil {
		return existing
	}
	p := &model.LocalizationProgress{
		Dubbing:     make(map[string]model.TaskStatus, len(countries)),
		Translation: make(map[string]model.TaskStatus, len(countries)),
		Adaptation:  model.AdaptationStatus{Status: model.TaskPending, Changes: []string{}},
		Order:       make([]string, 0, len(countries)),
	}
	for _, c := range countries {
		task := model.TaskStatus{CountryCode: c.Code, Language: c.Language, Status: model.TaskPending}
		p.Dubbing[c.Code] = task
		p.Translation[c.Code] = task
		p.Order = append(p.Order, c.Code)
	}
	return p
}

// Seed returns a copy of p where every task is set to state. Completed
// tasks get progress 100; other states keep their current progress.
// Adaptation changes are filled when it is seeded completed.
func Seed(p *model.LocalizationProgress, state model.TaskState) *model.LocalizationProgress {
	out := p.Clone()
	if out == nil {
		return nil
	}
	seed := func(t model.TaskStatus) model.TaskStatus {
		t.Status = state
		if state == model.TaskCompleted {
			t.Progress = 100
		}
		return t
	}
	for k, t := range out.Dubbing {
		out.Dubbing[k] = seed(t)
	}
	for k, t := range out.Translation {
		out.Translation[k] = seed(t)
	}
	out.Adaptation.Status = state
	if state == model.TaskCompleted {
		out.Adaptation.Progress = 100
		out.Adaptation.Changes = slices.Clone(AdaptationChanges)
	}
	return out
}

// CompleteAdaptation returns a copy of p with the adaptation task completed.
func CompleteAdaptation(p *model.LocalizationProgress) *model.LocalizationProgress {
	out := p.Clone()
	if out == nil {
		return nil
	}
	out.Adaptation = model.AdaptationStatus{
		Status:   model.TaskCompleted,
		Progress: 100,
		Changes:  slices.Clone(AdaptationChanges),
	}
	return out
}

// Fail returns a copy of p where every unfinished dubbing and translation
// task is marked failed. Progress values are kept.
func Fail(p *model.LocalizationProgress) *model.LocalizationProgress {
	out := p.Clone()
	if out == nil {
		return nil
	}
	for k, t := range out.Dubbing {
		if !t.Status.IsTerminal() {
			t.Status = model.TaskFailed
			out.Dubbing[k] = t
		}
	}
	for k, t := range out.Translation {
		if !t.Status.IsTerminal() {
			t.Status = model.TaskFailed
			out.Translation[k] = t
		}
	}
	return out
}

// Promote moves every pending task to processing and leaves the rest alone.
func Promote(p *model.LocalizationProgress) *model.LocalizationProgress {
	out := p.Clone()
	if out == nil {
		return nil
	}
	for k, t := range out.Dubbing {
		if t.Status == model.TaskPending {
			t.Status = model.TaskProcessing
			out.Dubbing[k] = t
		}
	}
	for k, t := range out.Translation {
		if t.Status == model.TaskPending {
			t.Status = model.TaskProcessing
			out.Translation[k] = t
		}
	}
	if out.Adaptation.Status == model.TaskPending {
		out.Adaptation.Status = model.TaskProcessing
	}
	return out
}

// Tick advances every processing task by one increment, clamping at 100.
// Non-processing tasks are untouched. A nil inc uses MinIncrement.
func Tick(p *model.LocalizationProgress, inc Increment) *model.LocalizationProgress {
	return TickUntil(p, inc, 100)
}

// TickUntil is Tick with a ceiling below which dubbing and translation
// tasks are held while a remote job is still running. A ceiling of 100
// lets tasks complete.
func TickUntil(p *model.LocalizationProgress, inc Increment, ceiling int) *model.LocalizationProgress {
	if p == nil {
		return nil
	}
	if inc == nil {
		inc = MinIncrement
	}
	if ceiling <= 0 || ceiling > 100 {
		ceiling = 100
	}
	out := p.Clone()
	for k, t := range out.Dubbing {
		out.Dubbing[k] = advance(t, inc(LaneDubbing, DefaultBounds[LaneDubbing]), ceiling)
	}
	for k, t := range out.Translation {
		out.Translation[k] = advance(t, inc(LaneTranslation, DefaultBounds[LaneTranslation]), ceiling)
	}
	if out.Adaptation.Status == model.TaskProcessing {
		next, done := step(out.Adaptation.Progress, inc(LaneAdaptation, DefaultBounds[LaneAdaptation]), 100)
		out.Adaptation.Progress = next
		if done {
			out.Adaptation.Status = model.TaskCompleted
			out.Adaptation.Changes = slices.Clone(AdaptationChanges)
		}
	}
	return out
}

// IsComplete reports whether every task reached completed.
func IsComplete(p *model.LocalizationProgress) bool {
	return p.AllComplete()
}

// Active reports whether any task is still processing.
func Active(p *model.LocalizationProgress) bool {
	if p == nil {
		return false
	}
	for _, t := range p.Dubbing {
		if t.Status == model.TaskProcessing {
			return true
		}
	}
	for _, t := range p.Translation {
		if t.Status == model.TaskProcessing {
			return true
		}
	}
	return p.Adaptation.Status == model.TaskProcessing
}

func advance(t model.TaskStatus, delta, ceiling int) model.TaskStatus {
	if t.Status != model.TaskProcessing {
		return t
	}
	next, done := step(t.Progress, delta, ceiling)
	t.Progress = next
	if done {
		t.Status = model.TaskCompleted
	}
	return t
}

// step never lowers progress. Completion happens only at 100; below a
// lower ceiling progress stops at ceiling-1.
func step(cur, delta, ceiling int) (int, bool) {
	if delta < 1 {
		delta = 1
	}
	next := cur + delta
	if ceiling < 100 {
		limit := max(cur, ceiling-1)
		return min(next, limit), false
	}
	if next >= 100 {
		return 100, true
	}
	return next, false
}
