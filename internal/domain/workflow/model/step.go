// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package model holds the workflow session types shared by every stage.
package model

import (
	"fmt"
	"strings"
)

// Step is one stage of the four-stage campaign localization pipeline.
type Step string

const (
	StepUpload       Step = "upload"
	StepAnalysis     Step = "analysis"
	StepLocalization Step = "localization"
	StepMarketing    Step = "marketing"
)

// Steps lists every stage in pipeline order.
var Steps = []Step{StepUpload, StepAnalysis, StepLocalization, StepMarketing}

// Index returns the position of s in the pipeline, or -1 for unknown steps.
func (s Step) Index() int {
	for i, st := range Steps {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage.
func (s Step) Valid() bool {
	return s.Index() >= 0
}

// Next returns the following stage. Marketing has no successor.
func (s Step) Next() (Step, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(Steps) {
		return s, false
	}
	return Steps[i+1], true
}

// Before reports whether s comes strictly before other.
func (s Step) Before(other Step) bool {
	return s.Index() < other.Index()
}

// ParseStep converts user input such as "Analysis" into a Step.
func ParseStep(raw string) (Step, error) {
	s := Step(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown workflow step %q", raw)
	}
	return s, nil
}
