// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package campaign

import (
	"maps"
	"slices"
	"strings"

	"github.com/ManuGH/locflow/internal/domain/workflow/model"
)

// Transform maps every backend campaign onto a display record, preserving
// order and count. Fields are renamed only; no values are derived.
func Transform(resp BackendResponse) []model.CampaignRecord {
	out := make([]model.CampaignRecord, 0, len(resp.Campaigns))
	for _, c := range resp.Campaigns {
		out = append(out, transformOne(c))
	}
	return out
}

func transformOne(c BackendCampaign) model.CampaignRecord {
	name := c.CountryName
	if name == "" {
		name = c.CountryCode
	}
	rec := model.CampaignRecord{
		Country:     c.CountryCode,
		CountryName: name,
		Platform:    model.Platform(strings.ToLower(c.Platform)),
		AdText:      c.AdText,
		Targeting: model.Targeting{
			AgeRange:     c.Targeting.AgeRange,
			Interests:    slices.Clone(c.Targeting.Interests),
			Demographics: c.Targeting.Demographics.String(),
			Location:     c.Targeting.Location,
		},
		Budget: model.Budget{
			Suggested: c.Budget.Suggested,
			Currency:  c.Budget.Currency,
		},
		CallToAction: c.CallToAction,
		Creative: model.Creative{
			AspectRatio: c.Creative.AspectRatio,
			Headline:    c.Creative.Headline,
			Hashtags:    slices.Clone(c.Creative.Hashtags),
		},
		PolicyNotes: slices.Clone(c.PolicyNotes),
		Measurement: model.Measurement{
			UTM:         maps.Clone(c.Measurement.UTM),
			Experiments: slices.Clone(c.Measurement.Experiments),
		},
		Variants: make([]model.Variant, 0, len(c.Variants)),
	}
	for _, v := range c.Variants {
		rec.Variants = append(rec.Variants, model.Variant{AdText: v.AdText, Headline: v.Headline})
	}
	return rec
}
