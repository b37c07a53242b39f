// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package lifecycle holds the pure rules of the workflow: which countries
// may be selected and which step changes are legal.
package lifecycle

import (
	"slices"

	"github.com/ManuGH/locflow/internal/domain/workflow/model"
)

// MaxTargetCountries bounds the target selection. Raising it is the single
// change needed for multi-country runs; Toggle then appends instead of
// replacing once the limit allows it.
const MaxTargetCountries = 1

// Toggle applies a click on candidate to the current selection.
// A selected country is removed; any other candidate replaces the selection.
// The input slice is never modified.
func Toggle(current []model.Country, candidate model.Country) []model.Country {
	idx := slices.IndexFunc(current, func(c model.Country) bool { return c.Code == candidate.Code })
	if idx >= 0 {
		out := make([]model.Country, 0, len(current)-1)
		out = append(out, current[:idx]...)
		return append(out, current[idx+1:]...)
	}
	if MaxTargetCountries > 1 && len(current) < MaxTargetCountries {
		return append(slices.Clone(current), candidate)
	}
	return []model.Country{candidate}
}
