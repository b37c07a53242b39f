// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
)

// fakeBackend answers every call with canned results. Hooks override them.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	uploadHook   func(ctx context.Context, file ports.VideoFile) (ports.UploadResult, error)
	localizeHook func(ctx context.Context, req ports.LocalizeRequest) (ports.LocalizeResult, error)
	waitHook     func(ctx context.Context, jobID string) (ports.LocalizeResult, error)
	analyzeHook  func(ctx context.Context, req ports.AnalyzeRequest) (ports.AnalyzeResult, error)
	generateHook func(ctx context.Context, req ports.CampaignRequest) (json.RawMessage, error)

	lastCampaignReq ports.CampaignRequest
	uploadedBytes   int64
}

var _ ports.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) UploadVideo(ctx context.Context, file ports.VideoFile, _ string) (ports.UploadResult, error) {
	f.record("upload")
	if f.uploadHook != nil {
		return f.uploadHook(ctx, file)
	}
	n, err := io.Copy(io.Discard, file.Body)
	if err != nil {
		return ports.UploadResult{}, err
	}
	f.mu.Lock()
	f.uploadedBytes = n
	f.mu.Unlock()
	return ports.UploadResult{VideoID: "vid-1"}, nil
}

func (f *fakeBackend) TranscribeVideo(context.Context, string, string) error {
	f.record("transcribe")
	return nil
}

func (f *fakeBackend) DirectLocalize(ctx context.Context, req ports.LocalizeRequest) (ports.LocalizeResult, error) {
	f.record("localize")
	if f.localizeHook != nil {
		return f.localizeHook(ctx, req)
	}
	return ports.LocalizeResult{Status: ports.LocalizeCompleted, FinalVideoURL: "https://cdn.example/vid-1-" + req.CountryCode + ".mp4"}, nil
}

func (f *fakeBackend) LocalizationStatus(context.Context, string) (ports.LocalizeResult, error) {
	f.record("status")
	return ports.LocalizeResult{Status: ports.LocalizeProcessing}, nil
}

func (f *fakeBackend) WaitLocalization(ctx context.Context, jobID string) (ports.LocalizeResult, error) {
	f.record("wait")
	if f.waitHook != nil {
		return f.waitHook(ctx, jobID)
	}
	return ports.LocalizeResult{Status: ports.LocalizeCompleted}, nil
}

func (f *fakeBackend) AnalyzeCulture(ctx context.Context, req ports.AnalyzeRequest) (ports.AnalyzeResult, error) {
	f.record("analyze")
	if f.analyzeHook != nil {
		return f.analyzeHook(ctx, req)
	}
	return ports.AnalyzeResult{Results: []ports.CultureResult{{
		CountryCode:    req.CountryCodes[0],
		Scores:         ports.CultureScores{Cultural: 82, ContentSuitability: 91, MarketPotential: 120},
		Strengths:      []string{"strong visual hook"},
		Risks:          []string{"humor may not translate"},
		Adaptations:    []string{"localize the closing slogan"},
		TargetAudience: "18-34 urban",
	}}}, nil
}

func (f *fakeBackend) GenerateCampaigns(ctx context.Context, req ports.CampaignRequest) (json.RawMessage, error) {
	f.record("generate")
	f.mu.Lock()
	f.lastCampaignReq = req
	f.mu.Unlock()
	if f.generateHook != nil {
		return f.generateHook(ctx, req)
	}
	return json.RawMessage(`{"video_id":"vid-1","campaigns":[]}`), nil
}

func (f *fakeBackend) GetCountries(context.Context, bool) ([]ports.CatalogEntry, error) {
	return nil, nil
}
