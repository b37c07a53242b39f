// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/locflow/internal/domain/workflow/campaign"
	"github.com/ManuGH/locflow/internal/domain/workflow/lifecycle"
	"github.com/ManuGH/locflow/internal/domain/workflow/model"
	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
	"github.com/ManuGH/locflow/internal/i18n"
	"github.com/ManuGH/locflow/internal/log"
	"github.com/ManuGH/locflow/internal/metrics"
	"github.com/ManuGH/locflow/internal/telemetry"
)

var errNoCampaigns = errors.New("backend returned no campaigns")

// GenerateCampaigns fills the campaign records for the selected country.
// Any backend failure is masked by the full fallback set; the returned
// error only reports preconditions.
func (c *Controller) GenerateCampaigns(ctx context.Context, objective string) error {
	c.mu.Lock()
	if err := c.guardLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	tr, err := lifecycle.TransitionFor(&c.state, lifecycle.EvGenerate)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if len(c.state.TargetCountries) == 0 {
		c.mu.Unlock()
		return &model.WorkflowError{Kind: model.ErrorGeneric, Message: c.printer.Sprintf(i18n.NoCountrySelected), Err: ErrNoCountrySelected}
	}
	countries := make([]model.Country, len(c.state.TargetCountries))
	copy(countries, c.state.TargetCountries)
	videoID := ""
	if c.state.Video != nil {
		videoID = c.state.Video.ID
	}
	c.busy = true
	c.state.Loading = true
	c.state.SetError(nil)
	c.mu.Unlock()

	if objective == "" {
		objective = defaultObjective
	}

	var (
		records []model.CampaignRecord
		raw     []byte
		genErr  error
	)
	if c.opts.Strategy == StrategySimulated {
		records = campaign.GenerateFallback(countries)
	} else {
		records, raw, genErr = c.fetchCampaigns(ctx, videoID, countries, objective)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.state.Loading = false
	if c.closed {
		return ErrClosed
	}

	source := model.CampaignSourceBackend
	switch {
	case c.opts.Strategy == StrategySimulated:
		source = model.CampaignSourceFallback
	case genErr != nil:
		source = model.CampaignSourceFallback
		records = campaign.GenerateFallback(countries)
		raw = nil
		kind := classify(opGenerate, genErr)
		c.setErrorLocked(opGenerate, &model.WorkflowError{
			Kind:    kind,
			Message: c.printer.Sprintf(i18n.CampaignFallback),
			Err:     genErr,
		})
	}

	c.state.Campaigns = records
	c.state.CampaignSource = source
	c.state.RawCampaignResponse = raw
	c.advanceLocked(tr)
	metrics.AddCampaignRecords(string(source), len(records))
	c.logger.Info().
		Str(log.FieldEvent, "workflow.campaigns_ready").
		Str("source", string(source)).
		Int("records", len(records)).
		Msg("campaign records ready")
	return nil
}

func (c *Controller) fetchCampaigns(ctx context.Context, videoID string, countries []model.Country, objective string) ([]model.CampaignRecord, []byte, error) {
	ctx, span := telemetry.Tracer("locflow.workflow").Start(ctx, "locflow.workflow.generate_campaigns")
	defer span.End()

	codes := make([]string, 0, len(countries))
	for _, ct := range countries {
		codes = append(codes, ct.Code)
	}
	platforms := make([]string, 0, len(c.opts.Platforms))
	for _, p := range c.opts.Platforms {
		platforms = append(platforms, string(p))
	}
	span.SetAttributes(telemetry.WorkflowAttributes(c.opts.SessionID, string(model.StepMarketing), codes[0], videoID)...)

	raw, err := c.backend.GenerateCampaigns(ctx, ports.CampaignRequest{
		VideoID:      videoID,
		CountryCodes: codes,
		Platforms:    platforms,
		Objective:    objective,
		MaxVariants:  c.opts.MaxVariants,
	})
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	resp, err := campaign.DecodeResponse(raw)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	records := campaign.Transform(resp)
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: video %s", errNoCampaigns, videoID)
	}
	return records, raw, nil
}
