// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package ports declares the collaborators the workflow depends on.
package ports

import (
	"context"
	"encoding/json"
	"io"
)

// Backend is the video-processing service the workflow drives.
type Backend interface {
	UploadVideo(ctx context.Context, file VideoFile, description string) (UploadResult, error)
	TranscribeVideo(ctx context.Context, videoID, languageHint string) error
	DirectLocalize(ctx context.Context, req LocalizeRequest) (LocalizeResult, error)
	LocalizationStatus(ctx context.Context, jobID string) (LocalizeResult, error)
	// WaitLocalization polls LocalizationStatus until the job is terminal or
	// the retry budget is spent.
	WaitLocalization(ctx context.Context, jobID string) (LocalizeResult, error)
	AnalyzeCulture(ctx context.Context, req AnalyzeRequest) (AnalyzeResult, error)
	// GenerateCampaigns returns the raw response body; decoding is the
	// caller's concern.
	GenerateCampaigns(ctx context.Context, req CampaignRequest) (json.RawMessage, error)
	GetCountries(ctx context.Context, groupByLanguage bool) ([]CatalogEntry, error)
}

// VideoFile is an upload payload. Body is read once.
type VideoFile struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

type UploadResult struct {
	VideoID string `json:"video_id"`
}

// LocalizeOptions selects which artifacts direct localization produces.
type LocalizeOptions struct {
	Dubbing    bool   `json:"dubbing"`
	Subtitles  bool   `json:"subtitles"`
	LipSync    bool   `json:"lip_sync"`
	VoiceStyle string `json:"voice_style,omitempty"`
}

type LocalizeRequest struct {
	VideoID     string          `json:"video_id"`
	CountryCode string          `json:"country_code"`
	Options     LocalizeOptions `json:"options"`
}

// Localization job states reported by the backend.
const (
	LocalizeQueued     = "queued"
	LocalizeProcessing = "processing"
	LocalizeCompleted  = "completed"
	LocalizeFailed     = "failed"
)

type LocalizeResult struct {
	Status        string   `json:"status"`
	FinalVideoURL string   `json:"final_video_url,omitempty"`
	Parts         []string `json:"parts,omitempty"`
	JobID         string   `json:"job_id,omitempty"`
}

// Done reports whether the result carries a final artifact.
func (r LocalizeResult) Done() bool {
	return r.Status == LocalizeCompleted || r.FinalVideoURL != ""
}

type AnalyzeRequest struct {
	VideoID      string   `json:"video_id"`
	CountryCodes []string `json:"country_codes"`
}

type CultureScores struct {
	Cultural           int `json:"cultural"`
	ContentSuitability int `json:"content_suitability"`
	MarketPotential    int `json:"market_potential"`
}

type CultureResult struct {
	CountryCode    string        `json:"country_code"`
	Scores         CultureScores `json:"scores"`
	Strengths      []string      `json:"strengths"`
	Risks          []string      `json:"risks"`
	Adaptations    []string      `json:"adaptations"`
	TargetAudience string        `json:"target_audience"`
}

type AnalyzeResult struct {
	Results []CultureResult `json:"results"`
}

type CampaignRequest struct {
	VideoID      string   `json:"video_id"`
	CountryCodes []string `json:"country_codes"`
	Platforms    []string `json:"platforms"`
	Objective    string   `json:"objective"`
	MaxVariants  int      `json:"max_variants"`
}

// CatalogEntry is one country as reported by the backend catalog.
type CatalogEntry struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Flag     string `json:"flag,omitempty"`
}
