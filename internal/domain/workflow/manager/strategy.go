// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"fmt"
	"strings"
)

// Strategy selects how localization and campaign generation run.
type Strategy string

const (
	// StrategyLive calls the backend for every stage.
	StrategyLive Strategy = "live"
	// StrategySimulated uploads, transcribes and analyzes through the
	// backend, then simulates localization progress locally and serves
	// fallback campaigns.
	StrategySimulated Strategy = "simulated"
)

// ParseStrategy accepts "live" or "simulated", case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyLive, StrategySimulated:
		return st, nil
	case "":
		return StrategyLive, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (supported: live, simulated)", s)
	}
}
