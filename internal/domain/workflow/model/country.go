// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// Country is immutable reference data for a localization target.
// Code is an upper-case ISO-3166 alpha-2 region code and is the join key
// for catalog enrichment, progress tracking and campaign records.
type Country struct {
	Code     string `json:"code" yaml:"code"`
	Name     string `json:"name" yaml:"name"`
	Flag     string `json:"flag" yaml:"flag"`
	Language string `json:"language" yaml:"language"`
}

// AnalysisResult is the cultural-fit scoring produced once per upload.
type AnalysisResult struct {
	CulturalScore      int      `json:"culturalScore"`
	ContentSuitability int      `json:"contentSuitability"`
	MarketPotential    int      `json:"marketPotential"`
	Recommendations    []string `json:"recommendations"`
	RiskFactors        []string `json:"riskFactors"`
	TargetAudience     string   `json:"targetAudience"`
}

// ClampScore bounds a score to the 0..100 display range.
func ClampScore(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Clone returns a deep copy of the analysis result.
func (a *AnalysisResult) Clone() *AnalysisResult {
	if a == nil {
		return nil
	}
	out := *a
	out.Recommendations = append([]string(nil), a.Recommendations...)
	out.RiskFactors = append([]string(nil), a.RiskFactors...)
	return &out
}
