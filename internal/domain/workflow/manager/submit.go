// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/ManuGH/locflow/internal/backend"
	"github.com/ManuGH/locflow/internal/domain/workflow/lifecycle"
	"github.com/ManuGH/locflow/internal/domain/workflow/model"
	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
	"github.com/ManuGH/locflow/internal/domain/workflow/progress"
	"github.com/ManuGH/locflow/internal/i18n"
	"github.com/ManuGH/locflow/internal/log"
	"github.com/ManuGH/locflow/internal/metrics"
	"github.com/ManuGH/locflow/internal/telemetry"
)

// Upload is the stage-one input. Body is consumed once.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Description string
}

// submission is everything Submit produces before it is applied to State.
type submission struct {
	video    model.VideoHandle
	analysis *model.AnalysisResult
	progress *model.LocalizationProgress
	jobID    string
}

// Submit runs upload, transcription, localization and analysis for the
// selected country and moves to Analysis. On failure the session stays at
// Upload with the selection intact and a classified error in State.
func (c *Controller) Submit(ctx context.Context, up Upload) error {
	c.mu.Lock()
	if err := c.guardLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	tr, err := lifecycle.TransitionFor(&c.state, lifecycle.EvSubmit)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if werr := c.validateUploadLocked(up); werr != nil {
		c.setErrorLocked(opUpload, werr)
		c.mu.Unlock()
		return werr
	}
	country := c.state.TargetCountries[0]
	c.busy = true
	c.state.Loading = true
	c.state.SetError(nil)
	c.mu.Unlock()

	ctx, span := telemetry.Tracer("locflow.workflow").Start(ctx, "locflow.workflow.submit")
	span.SetAttributes(telemetry.WorkflowAttributes(c.opts.SessionID, string(model.StepUpload), country.Code, "")...)
	defer span.End()

	logger := c.logger.With().Str(log.FieldCountryCode, country.Code).Logger()
	logger.Info().
		Str(log.FieldEvent, "workflow.submit_started").
		Str("filename", up.Filename).
		Int64("size", up.Size).
		Msg("submission started")

	start := time.Now()
	res, op, err := c.runSubmission(ctx, up, country)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.state.Loading = false

	if c.closed {
		return ErrClosed
	}
	if err != nil {
		kind := classify(op, err)
		werr := &model.WorkflowError{Kind: kind, Message: describe(c.printer, kind, err, c.maxUploadMB()), Err: err}
		c.setErrorLocked(op, werr)
		metrics.ObserveSubmit(string(c.opts.Strategy), string(kind), time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		span.SetAttributes(telemetry.ErrorAttributes(string(kind))...)
		return werr
	}

	// Re-submission replaces everything derived from the previous video.
	c.clearDerivedLocked()
	c.state.Video = &res.video
	c.state.Analysis = res.analysis
	c.state.Progress = res.progress
	c.jobID = res.jobID
	c.jobPending = res.jobID != ""
	c.advanceLocked(tr)

	if c.jobPending {
		c.watchJobLocked(res.jobID)
	}

	metrics.ObserveSubmit(string(c.opts.Strategy), "ok", time.Since(start))
	span.SetStatus(codes.Ok, "")
	logger.Info().
		Str(log.FieldEvent, "workflow.submit_completed").
		Str(log.FieldVideoID, res.video.ID).
		Bool("job_pending", c.jobPending).
		Dur("elapsed", time.Since(start)).
		Msg("submission completed")
	return nil
}

func (c *Controller) validateUploadLocked(up Upload) *model.WorkflowError {
	switch {
	case up.Body == nil || up.Size <= 0:
		return &model.WorkflowError{Kind: model.ErrorGeneric, Message: c.printer.Sprintf(i18n.NoVideo), Err: ErrNoVideo}
	case up.Size > c.opts.MaxUploadBytes:
		return &model.WorkflowError{
			Kind:    model.ErrorUploadTooLarge,
			Message: c.printer.Sprintf(i18n.UploadTooLarge, c.maxUploadMB()),
			Err:     fmt.Errorf("%w: %d bytes", backend.ErrTooLarge, up.Size),
		}
	case len(c.state.TargetCountries) != 1:
		return &model.WorkflowError{Kind: model.ErrorGeneric, Message: c.printer.Sprintf(i18n.NoCountrySelected), Err: ErrNoCountrySelected}
	}
	return nil
}

// runSubmission performs the strictly sequential backend calls. It returns
// the name of the failing operation alongside any error.
func (c *Controller) runSubmission(ctx context.Context, up Upload, country model.Country) (submission, string, error) {
	var res submission

	uploaded, err := c.backend.UploadVideo(ctx, ports.VideoFile{
		Filename:    up.Filename,
		Size:        up.Size,
		ContentType: up.ContentType,
		Body:        up.Body,
	}, up.Description)
	if err != nil {
		return res, opUpload, err
	}
	res.video = model.VideoHandle{Filename: up.Filename, Size: up.Size, ContentType: up.ContentType, ID: uploaded.VideoID}

	if err := c.backend.TranscribeVideo(ctx, uploaded.VideoID, country.Language); err != nil {
		return res, opTranscribe, err
	}

	var localized ports.LocalizeResult
	if c.opts.Strategy == StrategyLive {
		localized, err = c.backend.DirectLocalize(ctx, ports.LocalizeRequest{
			VideoID:     uploaded.VideoID,
			CountryCode: country.Code,
			Options:     c.opts.Localize,
		})
		if err != nil {
			return res, opLocalize, err
		}
		if localized.Status == ports.LocalizeFailed {
			return res, opLocalize, &backend.APIError{Sentinel: backend.ErrJobFailed, Operation: opLocalize}
		}
		if !localized.Done() && localized.JobID == "" {
			return res, opLocalize, &backend.APIError{Sentinel: backend.ErrBadResponse, Operation: opLocalize, Body: "no artifact and no job id"}
		}
		res.video.FinalVideoURL = localized.FinalVideoURL
	}

	analyzed, err := c.backend.AnalyzeCulture(ctx, ports.AnalyzeRequest{
		VideoID:      uploaded.VideoID,
		CountryCodes: []string{country.Code},
	})
	if err != nil {
		return res, opAnalyze, err
	}
	analysis, ok := analysisFor(analyzed, country.Code)
	if !ok {
		return res, opAnalyze, &backend.APIError{Sentinel: backend.ErrBadResponse, Operation: opAnalyze, Body: "no analysis result"}
	}
	res.analysis = analysis

	initial := progress.Initialize(nil, []model.Country{country})
	switch {
	case c.opts.Strategy == StrategySimulated:
		res.progress = progress.Seed(initial, model.TaskProcessing)
	case localized.Done():
		res.progress = progress.Seed(initial, model.TaskCompleted)
	default:
		res.progress = progress.CompleteAdaptation(progress.Seed(initial, model.TaskProcessing))
		res.jobID = localized.JobID
	}
	return res, "", nil
}

// analysisFor picks the result for code, or the only result when the
// backend omits country codes.
func analysisFor(res ports.AnalyzeResult, code string) (*model.AnalysisResult, bool) {
	var picked *ports.CultureResult
	for i := range res.Results {
		if strings.EqualFold(res.Results[i].CountryCode, code) {
			picked = &res.Results[i]
			break
		}
	}
	if picked == nil && len(res.Results) == 1 && res.Results[0].CountryCode == "" {
		picked = &res.Results[0]
	}
	if picked == nil {
		return nil, false
	}

	recs := slices.Clone(picked.Adaptations)
	if len(recs) == 0 {
		recs = slices.Clone(picked.Strengths)
	}
	if recs == nil {
		recs = []string{}
	}
	risks := slices.Clone(picked.Risks)
	if risks == nil {
		risks = []string{}
	}
	return &model.AnalysisResult{
		CulturalScore:      model.ClampScore(picked.Scores.Cultural),
		ContentSuitability: model.ClampScore(picked.Scores.ContentSuitability),
		MarketPotential:    model.ClampScore(picked.Scores.MarketPotential),
		Recommendations:    recs,
		RiskFactors:        risks,
		TargetAudience:     picked.TargetAudience,
	}, true
}

// watchJobLocked polls a dispatched localization job in the background and
// seeds the final task states when it ends.
func (c *Controller) watchJobLocked(jobID string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res, err := c.backend.WaitLocalization(c.ctx, jobID)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.jobID != jobID {
			return
		}
		c.jobPending = false

		if err != nil {
			c.state.Progress = progress.Fail(c.state.Progress)
			kind := classify(opPoll, err)
			c.setErrorLocked(opPoll, &model.WorkflowError{Kind: kind, Message: describe(c.printer, kind, err, c.maxUploadMB()), Err: err})
			return
		}
		c.state.Progress = progress.Seed(c.state.Progress, model.TaskCompleted)
		if c.state.Video != nil {
			c.state.Video.FinalVideoURL = res.FinalVideoURL
		}
		c.logger.Info().
			Str(log.FieldEvent, "workflow.localization_job_done").
			Str(log.FieldJobID, jobID).
			Msg("localization job finished")
	}()
}
