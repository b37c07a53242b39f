// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/locflow/internal/backend"
	"github.com/ManuGH/locflow/internal/domain/workflow/model"
	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
	"github.com/ManuGH/locflow/internal/domain/workflow/progress"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var germany = model.Country{Code: "DE", Name: "Almanya", Flag: "🇩🇪", Language: "de"}

func newController(t *testing.T, b ports.Backend, opts Options) *Controller {
	t.Helper()
	if opts.Increment == nil {
		opts.Increment = progress.FixedIncrement(50)
	}
	if opts.TickInterval == 0 {
		opts.TickInterval = 5 * time.Millisecond
	}
	c := New(b, opts)
	t.Cleanup(c.Close)
	return c
}

func videoUpload(size int) Upload {
	return Upload{
		Filename:    "promo.mp4",
		ContentType: "video/mp4",
		Size:        int64(size),
		Body:        bytes.NewReader(make([]byte, size)),
	}
}

func submitGermany(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.SelectCountry(germany))
	require.NoError(t, c.Submit(context.Background(), videoUpload(10<<20)))
}

func TestSubmit_GermanyTenMegabytes(t *testing.T) {
	fb := &fakeBackend{}
	c := newController(t, fb, Options{SessionID: "s1"})
	submitGermany(t, c)

	st := c.Snapshot()
	assert.Equal(t, model.StepAnalysis, st.CurrentStep)
	assert.Equal(t, []model.Step{model.StepUpload}, st.CompletedSteps)
	require.NotNil(t, st.Analysis)
	assert.Equal(t, 82, st.Analysis.CulturalScore)
	assert.Equal(t, 100, st.Analysis.MarketPotential, "scores are clamped")
	assert.Equal(t, []string{"localize the closing slogan"}, st.Analysis.Recommendations)
	assert.Equal(t, []string{"humor may not translate"}, st.Analysis.RiskFactors)

	require.NotNil(t, st.Progress)
	assert.Equal(t, model.TaskCompleted, st.Progress.Dubbing["DE"].Status)
	assert.Equal(t, model.TaskCompleted, st.Progress.Translation["DE"].Status)
	assert.True(t, st.Progress.AllComplete())

	require.NotNil(t, st.Video)
	assert.Equal(t, "vid-1", st.Video.ID)
	assert.Equal(t, "https://cdn.example/vid-1-DE.mp4", st.Video.FinalVideoURL)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)

	assert.Equal(t, []string{"upload", "transcribe", "localize", "analyze"}, fb.Calls())
	assert.EqualValues(t, 10<<20, fb.uploadedBytes)
}

func TestSubmit_SimulatedSkipsLocalize(t *testing.T) {
	fb := &fakeBackend{}
	c := newController(t, fb, Options{Strategy: StrategySimulated, TickInterval: time.Hour})
	submitGermany(t, c)

	st := c.Snapshot()
	assert.Equal(t, []string{"upload", "transcribe", "analyze"}, fb.Calls())
	assert.Equal(t, model.TaskProcessing, st.Progress.Dubbing["DE"].Status)
	assert.Equal(t, model.TaskProcessing, st.Progress.Adaptation.Status)
}

func TestSubmit_Preconditions(t *testing.T) {
	t.Run("no country", func(t *testing.T) {
		fb := &fakeBackend{}
		c := newController(t, fb, Options{})
		err := c.Submit(context.Background(), videoUpload(1024))

		var werr *model.WorkflowError
		require.ErrorAs(t, err, &werr)
		assert.ErrorIs(t, err, ErrNoCountrySelected)
		assert.Equal(t, "Lütfen bir hedef ülke seçin.", c.Snapshot().Error)
		assert.Empty(t, fb.Calls())
	})

	t.Run("no video", func(t *testing.T) {
		c := newController(t, &fakeBackend{}, Options{})
		require.NoError(t, c.SelectCountry(germany))
		err := c.Submit(context.Background(), Upload{Filename: "x.mp4"})
		assert.ErrorIs(t, err, ErrNoVideo)
	})

	t.Run("too large", func(t *testing.T) {
		fb := &fakeBackend{}
		c := newController(t, fb, Options{MaxUploadBytes: 1 << 20})
		require.NoError(t, c.SelectCountry(germany))
		err := c.Submit(context.Background(), Upload{Filename: "big.mp4", Size: 2 << 20, Body: bytes.NewReader(nil)})

		var werr *model.WorkflowError
		require.ErrorAs(t, err, &werr)
		assert.Equal(t, model.ErrorUploadTooLarge, werr.Kind)
		st := c.Snapshot()
		assert.Equal(t, "Dosya boyutu çok büyük. Maksimum 1MB yükleyebilirsiniz.", st.Error)
		assert.Equal(t, model.StepUpload, st.CurrentStep)
		assert.Empty(t, fb.Calls())
	})
}

func TestSubmit_FailureKeepsSelection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.ErrorKind
	}{
		{"timeout", &backend.APIError{Sentinel: backend.ErrTimeout, Operation: "upload_video"}, model.ErrorUploadTimeout},
		{"unavailable", &backend.APIError{Sentinel: backend.ErrUnavailable, Operation: "upload_video"}, model.ErrorBackendUnavailable},
		{"too large", &backend.APIError{Sentinel: backend.ErrTooLarge, Operation: "upload_video", Status: 413}, model.ErrorUploadTooLarge},
		{"other", errors.New("disk on fire"), model.ErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{uploadHook: func(context.Context, ports.VideoFile) (ports.UploadResult, error) {
				return ports.UploadResult{}, tt.err
			}}
			c := newController(t, fb, Options{})
			require.NoError(t, c.SelectCountry(germany))
			err := c.Submit(context.Background(), videoUpload(512))

			var werr *model.WorkflowError
			require.ErrorAs(t, err, &werr)
			assert.Equal(t, tt.want, werr.Kind)

			st := c.Snapshot()
			assert.Equal(t, model.StepUpload, st.CurrentStep)
			assert.Equal(t, []model.Country{germany}, st.TargetCountries)
			assert.Equal(t, tt.want, st.ErrorKind)
			assert.NotEmpty(t, st.Error)
			assert.False(t, st.Loading)
			assert.Nil(t, st.Analysis)
		})
	}
}

func TestSubmit_GenericMessageCarriesDetail(t *testing.T) {
	fb := &fakeBackend{analyzeHook: func(context.Context, ports.AnalyzeRequest) (ports.AnalyzeResult, error) {
		return ports.AnalyzeResult{}, nil
	}}
	c := newController(t, fb, Options{})
	require.NoError(t, c.SelectCountry(germany))
	require.Error(t, c.Submit(context.Background(), videoUpload(512)))
	assert.Equal(t, "Bir hata oluştu: no analysis result", c.Snapshot().Error)
}

func TestSubmit_RejectsConcurrentCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fb := &fakeBackend{uploadHook: func(ctx context.Context, _ ports.VideoFile) (ports.UploadResult, error) {
		close(started)
		<-release
		return ports.UploadResult{VideoID: "vid-1"}, nil
	}}
	c := newController(t, fb, Options{})
	require.NoError(t, c.SelectCountry(germany))

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), videoUpload(64)) }()
	<-started

	assert.True(t, c.Snapshot().Loading)
	assert.ErrorIs(t, c.Submit(context.Background(), videoUpload(64)), ErrBusy)
	assert.ErrorIs(t, c.SelectCountry(germany), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, model.StepAnalysis, c.Snapshot().CurrentStep)
}

func TestSelectCountry_SingleSelection(t *testing.T) {
	c := newController(t, &fakeBackend{}, Options{})
	turkey := model.Country{Code: "TR", Name: "Türkiye", Language: "tr"}

	require.NoError(t, c.SelectCountry(germany))
	require.NoError(t, c.SelectCountry(turkey))
	assert.Equal(t, []model.Country{turkey}, c.Snapshot().TargetCountries)

	require.NoError(t, c.SelectCountry(turkey))
	assert.Empty(t, c.Snapshot().TargetCountries)
}

func TestNavigate(t *testing.T) {
	c := newController(t, &fakeBackend{}, Options{})
	assert.ErrorIs(t, c.Navigate(model.StepAnalysis), ErrNavigationDenied)

	submitGermany(t, c)
	assert.ErrorIs(t, c.Navigate(model.StepMarketing), ErrNavigationDenied)
	assert.ErrorIs(t, c.Navigate(model.Step("bogus")), ErrNavigationDenied)

	require.NoError(t, c.Navigate(model.StepUpload))
	st := c.Snapshot()
	assert.Equal(t, model.StepUpload, st.CurrentStep)
	assert.Equal(t, []model.Country{germany}, st.TargetCountries)
	assert.NotNil(t, st.Analysis, "navigating back keeps stage data")
}

func TestResubmitResetsDownstream(t *testing.T) {
	c := newController(t, &fakeBackend{}, Options{})
	submitGermany(t, c)
	require.NoError(t, c.Continue())
	require.NoError(t, c.ConfirmLocalization())
	require.NoError(t, c.GenerateCampaigns(context.Background(), ""))
	require.Len(t, c.Snapshot().Campaigns, 3)

	require.NoError(t, c.Navigate(model.StepUpload))
	require.NoError(t, c.Submit(context.Background(), videoUpload(128)))

	st := c.Snapshot()
	assert.Equal(t, model.StepAnalysis, st.CurrentStep)
	assert.Equal(t, []model.Step{model.StepUpload}, st.CompletedSteps)
	assert.Empty(t, st.Campaigns)
	assert.Equal(t, model.CampaignSourceNone, st.CampaignSource)
}

func TestSelectCountry_ChangeAfterSubmitClearsStageData(t *testing.T) {
	fb := &fakeBackend{}
	c := newController(t, fb, Options{})
	france := model.Country{Code: "FR", Name: "Fransa", Language: "fr"}

	submitGermany(t, c)
	require.NoError(t, c.Continue())
	require.NoError(t, c.ConfirmLocalization())
	require.NoError(t, c.GenerateCampaigns(context.Background(), ""))
	require.NoError(t, c.Navigate(model.StepUpload))

	require.NoError(t, c.SelectCountry(france))
	st := c.Snapshot()
	assert.Equal(t, []model.Country{france}, st.TargetCountries)
	assert.Equal(t, []model.Step{model.StepUpload}, st.CompletedSteps)
	assert.Nil(t, st.Analysis)
	assert.Nil(t, st.Progress)
	assert.Empty(t, st.Campaigns)
	assert.Equal(t, model.CampaignSourceNone, st.CampaignSource)
	assert.Nil(t, st.RawCampaignResponse)
	require.NotNil(t, st.Video, "the uploaded file is kept")

	assert.ErrorIs(t, c.Navigate(model.StepLocalization), ErrNavigationDenied)
	assert.ErrorIs(t, c.Navigate(model.StepMarketing), ErrNavigationDenied)
	assert.ErrorIs(t, c.GenerateCampaigns(context.Background(), ""), ErrWrongStep)

	require.NoError(t, c.Submit(context.Background(), videoUpload(1024)))
	st = c.Snapshot()
	assert.Equal(t, model.StepAnalysis, st.CurrentStep)
	require.NotNil(t, st.Progress)
	assert.Contains(t, st.Progress.Dubbing, "FR")
	assert.NotContains(t, st.Progress.Dubbing, "DE")
}

func TestSelectCountry_DeselectClearsStageData(t *testing.T) {
	c := newController(t, &fakeBackend{}, Options{})
	submitGermany(t, c)
	require.NoError(t, c.Navigate(model.StepUpload))

	// Toggling off and back on ends on the same target but passes through an
	// empty selection, which already invalidates the results.
	require.NoError(t, c.SelectCountry(germany))
	require.NoError(t, c.SelectCountry(germany))
	st := c.Snapshot()
	assert.Equal(t, []model.Country{germany}, st.TargetCountries)
	assert.Nil(t, st.Analysis)
	assert.Equal(t, []model.Step{model.StepUpload}, st.CompletedSteps)
}

func TestConfirmRequiresCompletion(t *testing.T) {
	c := newController(t, &fakeBackend{}, Options{Strategy: StrategySimulated, TickInterval: time.Hour})
	submitGermany(t, c)
	require.NoError(t, c.Continue())

	err := c.ConfirmLocalization()
	assert.ErrorIs(t, err, ErrNotComplete)
	st := c.Snapshot()
	assert.Equal(t, model.StepLocalization, st.CurrentStep)
	assert.NotContains(t, st.CompletedSteps, model.StepLocalization)
}

func TestSimulatedTickerConverges(t *testing.T) {
	c := newController(t, &fakeBackend{}, Options{Strategy: StrategySimulated})
	submitGermany(t, c)
	require.NoError(t, c.Continue())

	require.Eventually(t, func() bool {
		return c.Snapshot().Progress.AllComplete()
	}, 2*time.Second, 5*time.Millisecond)

	st := c.Snapshot()
	require.NoError(t, st.Progress.CheckInvariants())
	assert.Equal(t, progress.AdaptationChanges, st.Progress.Adaptation.Changes)

	require.NoError(t, c.ConfirmLocalization())
	require.NoError(t, c.GenerateCampaigns(context.Background(), ""))
	st = c.Snapshot()
	assert.Equal(t, model.StepMarketing, st.CurrentStep)
	assert.Equal(t, model.CampaignSourceFallback, st.CampaignSource)
	assert.Len(t, st.Campaigns, 3)
	assert.Empty(t, st.Error)
}

func TestTickOnceOutsideLocalization(t *testing.T) {
	c := newController(t, &fakeBackend{}, Options{})
	assert.True(t, c.TickOnce())
}

func TestStartLocalizationPromotesPending(t *testing.T) {
	c := newController(t, &fakeBackend{}, Options{Strategy: StrategySimulated, TickInterval: time.Hour})
	assert.ErrorIs(t, c.StartLocalization(), ErrWrongStep)

	submitGermany(t, c)
	require.NoError(t, c.Continue())
	require.NoError(t, c.StartLocalization())
	assert.Equal(t, model.TaskProcessing, c.Snapshot().Progress.Dubbing["DE"].Status)
}

func TestGenerateCampaigns_FallbackOnFailure(t *testing.T) {
	fb := &fakeBackend{generateHook: func(context.Context, ports.CampaignRequest) (json.RawMessage, error) {
		return nil, &backend.APIError{Sentinel: backend.ErrUnavailable, Operation: "generate_campaigns"}
	}}
	c := newController(t, fb, Options{})
	submitGermany(t, c)
	require.NoError(t, c.Continue())
	require.NoError(t, c.ConfirmLocalization())

	require.NoError(t, c.GenerateCampaigns(context.Background(), "conversions"))

	st := c.Snapshot()
	require.Len(t, st.Campaigns, 3)
	for i, p := range model.Platforms {
		assert.Equal(t, "DE", st.Campaigns[i].Country)
		assert.Equal(t, p, st.Campaigns[i].Platform)
	}
	assert.Equal(t, model.CampaignSourceFallback, st.CampaignSource)
	assert.Equal(t, model.ErrorBackendUnavailable, st.ErrorKind)
	assert.Equal(t, "Kampanya oluşturulamadı, örnek kampanya verileri gösteriliyor.", st.Error)
	assert.False(t, st.Loading)
	assert.Equal(t, "conversions", fb.lastCampaignReq.Objective)
}

func TestGenerateCampaigns_MalformedFallsBack(t *testing.T) {
	fb := &fakeBackend{generateHook: func(context.Context, ports.CampaignRequest) (json.RawMessage, error) {
		return json.RawMessage(`{"video_id":"vid-1"}`), nil
	}}
	c := newController(t, fb, Options{})
	submitGermany(t, c)
	require.NoError(t, c.Continue())
	require.NoError(t, c.ConfirmLocalization())
	require.NoError(t, c.GenerateCampaigns(context.Background(), ""))

	st := c.Snapshot()
	assert.Len(t, st.Campaigns, 3)
	assert.Equal(t, model.ErrorGeneric, st.ErrorKind)
	assert.Nil(t, st.RawCampaignResponse)
}

func TestGenerateCampaigns_Backend(t *testing.T) {
	body := `{"video_id":"vid-1","campaigns":[{"country_code":"DE","country_name":"Germany","platform":"TikTok",` +
		`"ad_text":"Jetzt entdecken","targeting":{"age_range":"18-24","interests":["tech"],"demographics":"urban","location":"Berlin"},` +
		`"budget":{"suggested":750,"currency":"EUR"},"call_to_action":"Mehr erfahren"}]}`
	fb := &fakeBackend{generateHook: func(_ context.Context, req ports.CampaignRequest) (json.RawMessage, error) {
		if fmt.Sprint(req.CountryCodes) != "[DE]" {
			return nil, errors.New("unexpected countries")
		}
		return json.RawMessage(body), nil
	}}
	c := newController(t, fb, Options{})
	submitGermany(t, c)
	require.NoError(t, c.Continue())
	require.NoError(t, c.ConfirmLocalization())
	require.NoError(t, c.GenerateCampaigns(context.Background(), ""))

	st := c.Snapshot()
	require.Len(t, st.Campaigns, 1)
	assert.Equal(t, model.PlatformTikTok, st.Campaigns[0].Platform)
	assert.Equal(t, model.CampaignSourceBackend, st.CampaignSource)
	assert.JSONEq(t, body, string(st.RawCampaignResponse))
	assert.Empty(t, st.Error)
	assert.Equal(t, defaultObjective, fb.lastCampaignReq.Objective)
	assert.Equal(t, []string{"facebook", "google", "tiktok"}, fb.lastCampaignReq.Platforms)
	assert.Equal(t, defaultMaxVariants, fb.lastCampaignReq.MaxVariants)
}

func TestGenerateCampaigns_WrongStep(t *testing.T) {
	c := newController(t, &fakeBackend{}, Options{})
	assert.ErrorIs(t, c.GenerateCampaigns(context.Background(), ""), ErrWrongStep)
}

func queuedLocalize(context.Context, ports.LocalizeRequest) (ports.LocalizeResult, error) {
	return ports.LocalizeResult{Status: ports.LocalizeQueued, JobID: "job-1"}, nil
}

func TestJobWatcher_HoldsThenCompletes(t *testing.T) {
	release := make(chan struct{})
	fb := &fakeBackend{
		localizeHook: queuedLocalize,
		waitHook: func(ctx context.Context, _ string) (ports.LocalizeResult, error) {
			select {
			case <-release:
				return ports.LocalizeResult{Status: ports.LocalizeCompleted, FinalVideoURL: "https://cdn.example/final.mp4"}, nil
			case <-ctx.Done():
				return ports.LocalizeResult{}, ctx.Err()
			}
		},
	}
	c := newController(t, fb, Options{})
	submitGermany(t, c)

	st := c.Snapshot()
	assert.Equal(t, model.TaskProcessing, st.Progress.Dubbing["DE"].Status)
	assert.Equal(t, model.TaskCompleted, st.Progress.Adaptation.Status)

	require.NoError(t, c.Continue())
	require.Eventually(t, func() bool {
		return c.Snapshot().Progress.Dubbing["DE"].Progress == holdCeiling-1
	}, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.ConfirmLocalization(), ErrNotComplete)

	close(release)
	require.Eventually(t, func() bool {
		return c.Snapshot().Progress.AllComplete()
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "https://cdn.example/final.mp4", c.Snapshot().Video.FinalVideoURL)
	require.NoError(t, c.ConfirmLocalization())
}

func TestJobWatcher_Exhausted(t *testing.T) {
	fb := &fakeBackend{
		localizeHook: queuedLocalize,
		waitHook: func(context.Context, string) (ports.LocalizeResult, error) {
			return ports.LocalizeResult{}, &backend.APIError{Sentinel: backend.ErrPollExhausted, Operation: "localization_status"}
		},
	}
	c := newController(t, fb, Options{})
	submitGermany(t, c)

	require.Eventually(t, func() bool {
		return c.Snapshot().ErrorKind == model.ErrorProcessingTimeout
	}, 2*time.Second, 5*time.Millisecond)
	st := c.Snapshot()
	assert.Equal(t, model.TaskFailed, st.Progress.Dubbing["DE"].Status)
	assert.Equal(t, "Video işleme zaman aşımına uğradı. Lütfen daha sonra tekrar deneyin.", st.Error)
}

func TestCloseStopsWatcher(t *testing.T) {
	fb := &fakeBackend{
		localizeHook: queuedLocalize,
		waitHook: func(ctx context.Context, _ string) (ports.LocalizeResult, error) {
			<-ctx.Done()
			return ports.LocalizeResult{}, ctx.Err()
		},
	}
	c := New(fb, Options{TickInterval: 5 * time.Millisecond})
	require.NoError(t, c.SelectCountry(germany))
	require.NoError(t, c.Submit(context.Background(), videoUpload(64)))
	require.NoError(t, c.Continue())

	c.Close()
	assert.ErrorIs(t, c.Continue(), ErrClosed)
	c.Close()
}

func TestEnglishMessages(t *testing.T) {
	c := newController(t, &fakeBackend{}, Options{Language: "en-US"})
	err := c.Submit(context.Background(), videoUpload(8))
	require.Error(t, err)
	assert.Equal(t, "Please select a target country.", c.Snapshot().Error)
}
