// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import "slices"

// Platform is an ad platform a campaign record targets.
type Platform string

const (
	PlatformFacebook Platform = "facebook"
	PlatformGoogle   Platform = "google"
	PlatformTikTok   Platform = "tiktok"
)

// Platforms lists the supported platforms in display order.
var Platforms = []Platform{PlatformFacebook, PlatformGoogle, PlatformTikTok}

// CampaignSource tells the display layer where campaign data came from.
type CampaignSource string

const (
	CampaignSourceNone     CampaignSource = ""
	CampaignSourceBackend  CampaignSource = "backend"
	CampaignSourceFallback CampaignSource = "fallback"
)

// Targeting describes the audience of a campaign record.
type Targeting struct {
	AgeRange     string   `json:"ageRange"`
	Interests    []string `json:"interests"`
	Demographics string   `json:"demographics"`
	Location     string   `json:"location,omitempty"`
}

// Budget is a suggested daily spend.
type Budget struct {
	Suggested float64 `json:"suggested"`
	Currency  string  `json:"currency"`
}

// Creative carries the visual guidance for an ad.
type Creative struct {
	AspectRatio string   `json:"aspectRatio"`
	Headline    string   `json:"headline"`
	Hashtags    []string `json:"hashtags"`
}

// Measurement holds tracking parameters and suggested experiments.
type Measurement struct {
	UTM         map[string]string `json:"utm"`
	Experiments []string          `json:"experiments"`
}

// Variant is an alternative copy for A/B testing.
type Variant struct {
	AdText   string `json:"adText"`
	Headline string `json:"headline"`
}

// CampaignRecord is one display-ready campaign for a country and platform.
type CampaignRecord struct {
	Country      string      `json:"country"`
	CountryName  string      `json:"countryName"`
	Platform     Platform    `json:"platform"`
	AdText       string      `json:"adText"`
	Targeting    Targeting   `json:"targeting"`
	Budget       Budget      `json:"budget"`
	CallToAction string      `json:"callToAction"`
	Creative     Creative    `json:"creative"`
	PolicyNotes  []string    `json:"policyNotes"`
	Measurement  Measurement `json:"measurement"`
	Variants     []Variant   `json:"variants"`
}

// Clone returns a deep copy of the record.
func (r CampaignRecord) Clone() CampaignRecord {
	out := r
	out.Targeting.Interests = slices.Clone(r.Targeting.Interests)
	out.Creative.Hashtags = slices.Clone(r.Creative.Hashtags)
	out.PolicyNotes = slices.Clone(r.PolicyNotes)
	out.Measurement.Experiments = slices.Clone(r.Measurement.Experiments)
	if r.Measurement.UTM != nil {
		out.Measurement.UTM = make(map[string]string, len(r.Measurement.UTM))
		for k, v := range r.Measurement.UTM {
			out.Measurement.UTM[k] = v
		}
	}
	out.Variants = slices.Clone(r.Variants)
	return out
}
