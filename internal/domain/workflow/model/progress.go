// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import (
	"fmt"
	"maps"
	"slices"
)

// TaskState is the lifecycle of a single tracked localization task.
type TaskState string

const (
	TaskPending    TaskState = "pending"
	TaskProcessing TaskState = "processing"
	TaskCompleted  TaskState = "completed"
	TaskFailed     TaskState = "failed"
)

// IsTerminal returns true if the task will not change any more.
func (s TaskState) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// TaskStatus tracks one country's dubbing or translation task.
type TaskStatus struct {
	CountryCode string    `json:"countryCode"`
	Language    string    `json:"language"`
	Status      TaskState `json:"status"`
	Progress    int       `json:"progress"`
}

// AdaptationStatus is the single cross-country cultural adaptation task.
type AdaptationStatus struct {
	Status   TaskState `json:"status"`
	Progress int       `json:"progress"`
	Changes  []string  `json:"changes"`
}

// LocalizationProgress aggregates every tracked task of a session.
// Dubbing and Translation are keyed by country code; Order keeps the
// selection order for display only.
type LocalizationProgress struct {
	Dubbing     map[string]TaskStatus `json:"dubbing"`
	Translation map[string]TaskStatus `json:"translation"`
	Adaptation  AdaptationStatus      `json:"adaptation"`
	Order       []string              `json:"order"`
}

// Clone returns a deep copy so tick results never alias a published snapshot.
func (p *LocalizationProgress) Clone() *LocalizationProgress {
	if p == nil {
		return nil
	}
	return &LocalizationProgress{
		Dubbing:     maps.Clone(p.Dubbing),
		Translation: maps.Clone(p.Translation),
		Adaptation: AdaptationStatus{
			Status:   p.Adaptation.Status,
			Progress: p.Adaptation.Progress,
			Changes:  slices.Clone(p.Adaptation.Changes),
		},
		Order: slices.Clone(p.Order),
	}
}

// AllComplete reports whether every dubbing, translation and the adaptation
// task reached TaskCompleted.
func (p *LocalizationProgress) AllComplete() bool {
	if p == nil {
		return false
	}
	for _, t := range p.Dubbing {
		if t.Status != TaskCompleted {
			return false
		}
	}
	for _, t := range p.Translation {
		if t.Status != TaskCompleted {
			return false
		}
	}
	return p.Adaptation.Status == TaskCompleted
}

// CheckInvariants verifies that progress stays in 0..100 and that
// progress == 100 holds exactly for completed tasks.
func (p *LocalizationProgress) CheckInvariants() error {
	if p == nil {
		return nil
	}
	check := func(lane, key string, status TaskState, progress int) error {
		if progress < 0 || progress > 100 {
			return fmt.Errorf("%s[%s]: progress %d out of range", lane, key, progress)
		}
		if (progress == 100) != (status == TaskCompleted) {
			return fmt.Errorf("%s[%s]: status %s with progress %d", lane, key, status, progress)
		}
		return nil
	}
	for code, t := range p.Dubbing {
		if err := check("dubbing", code, t.Status, t.Progress); err != nil {
			return err
		}
	}
	for code, t := range p.Translation {
		if err := check("translation", code, t.Status, t.Progress); err != nil {
			return err
		}
	}
	for _, code := range p.Order {
		if _, ok := p.Dubbing[code]; !ok {
			return fmt.Errorf("dubbing: missing entry for %s", code)
		}
		if _, ok := p.Translation[code]; !ok {
			return fmt.Errorf("translation: missing entry for %s", code)
		}
	}
	return check("adaptation", "all", p.Adaptation.Status, p.Adaptation.Progress)
}
