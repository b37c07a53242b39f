// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import (
	"encoding/json"
	"slices"
)

// VideoHandle describes the uploaded file. The payload itself is only held
// while the upload is in flight.
type VideoHandle struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
	ID          string `json:"id,omitempty"`
	// FinalVideoURL is set once a localized artifact exists.
	FinalVideoURL string `json:"finalVideoUrl,omitempty"`
}

// State is the top-level session object owned by one controller.
type State struct {
	CurrentStep     Step                  `json:"currentStep"`
	CompletedSteps  []Step                `json:"completedSteps"`
	Video           *VideoHandle          `json:"video"`
	TargetCountries []Country             `json:"targetCountries"`
	Analysis        *AnalysisResult       `json:"analysis"`
	Progress        *LocalizationProgress `json:"localizationProgress"`
	Campaigns       []CampaignRecord      `json:"campaigns"`
	CampaignSource  CampaignSource        `json:"campaignSource,omitempty"`
	// RawCampaignResponse is kept for audit/debug display only.
	RawCampaignResponse json.RawMessage `json:"rawCampaignResponse,omitempty"`
	Loading             bool            `json:"isLoading"`
	Error               string          `json:"error,omitempty"`
	ErrorKind           ErrorKind       `json:"errorKind,omitempty"`
}

// NewState returns the session start state.
func NewState() State {
	return State{
		CurrentStep:     StepUpload,
		CompletedSteps:  []Step{},
		TargetCountries: []Country{},
		Campaigns:       []CampaignRecord{},
	}
}

// IsCompleted reports whether step was completed in this session.
func (s *State) IsCompleted(step Step) bool {
	return slices.Contains(s.CompletedSteps, step)
}

// MarkCompleted records step as completed, keeping pipeline order.
func (s *State) MarkCompleted(step Step) {
	if s.IsCompleted(step) {
		return
	}
	s.CompletedSteps = append(s.CompletedSteps, step)
	slices.SortFunc(s.CompletedSteps, func(a, b Step) int { return a.Index() - b.Index() })
}

// Clone returns a deep copy suitable for handing to the display layer.
func (s *State) Clone() State {
	out := *s
	out.CompletedSteps = slices.Clone(s.CompletedSteps)
	if s.Video != nil {
		v := *s.Video
		out.Video = &v
	}
	out.TargetCountries = slices.Clone(s.TargetCountries)
	out.Analysis = s.Analysis.Clone()
	out.Progress = s.Progress.Clone()
	out.Campaigns = make([]CampaignRecord, len(s.Campaigns))
	for i, c := range s.Campaigns {
		out.Campaigns[i] = c.Clone()
	}
	out.RawCampaignResponse = slices.Clone(s.RawCampaignResponse)
	return out
}

// SetError stores a classified failure on the state.
func (s *State) SetError(err *WorkflowError) {
	if err == nil {
		s.Error = ""
		s.ErrorKind = ErrorNone
		return
	}
	s.Error = err.Message
	s.ErrorKind = err.Kind
}
