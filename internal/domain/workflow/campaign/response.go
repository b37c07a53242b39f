// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package campaign turns campaign-generation responses into display records
// and synthesizes a fallback set when generation fails.
package campaign

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when a generation response cannot be decoded.
var ErrMalformedResponse = errors.New("malformed campaign response")

// BackendResponse is the wire shape returned by campaign generation.
type BackendResponse struct {
	VideoID   string            `json:"video_id,omitempty"`
	Campaigns []BackendCampaign `json:"campaigns"`
}

// BackendCampaign is one generated campaign keyed by country_code and platform.
type BackendCampaign struct {
	CountryCode  string             `json:"country_code"`
	CountryName  string             `json:"country_name,omitempty"`
	Platform     string             `json:"platform"`
	AdText       string             `json:"ad_text"`
	Targeting    BackendTargeting   `json:"targeting"`
	Budget       BackendBudget      `json:"budget"`
	CallToAction string             `json:"call_to_action"`
	Creative     BackendCreative    `json:"creative"`
	PolicyNotes  []string           `json:"policy_notes"`
	Measurement  BackendMeasurement `json:"measurement"`
	Variants     []BackendVariant   `json:"variants"`
}

type BackendTargeting struct {
	AgeRange     string       `json:"age_range"`
	Interests    []string     `json:"interests"`
	Demographics Demographics `json:"demographics"`
	Location     string       `json:"location,omitempty"`
}

type BackendBudget struct {
	Suggested float64 `json:"suggested"`
	Currency  string  `json:"currency"`
}

type BackendCreative struct {
	AspectRatio string   `json:"aspect_ratio"`
	Headline    string   `json:"headline"`
	Hashtags    []string `json:"hashtags"`
}

type BackendMeasurement struct {
	UTM         map[string]string `json:"utm"`
	Experiments []string          `json:"experiments"`
}

type BackendVariant struct {
	AdText   string `json:"ad_text"`
	Headline string `json:"headline"`
}

// Demographics accepts either a JSON string or a list of strings.
type Demographics []string

// String joins the entries for display.
func (d Demographics) String() string {
	return strings.Join(d, ", ")
}

func (d *Demographics) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*d = nil
			return nil
		}
		*d = Demographics{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("demographics: expected string or list: %w", err)
	}
	*d = list
	return nil
}

func (d Demographics) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(d))
}

// DecodeResponse parses raw generation output. A body without a campaigns
// array is treated as malformed.
func DecodeResponse(raw []byte) (BackendResponse, error) {
	var probe struct {
		Campaigns json.RawMessage `json:"campaigns"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return BackendResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(probe.Campaigns) == 0 || bytes.Equal(probe.Campaigns, []byte("null")) {
		return BackendResponse{}, fmt.Errorf("%w: missing campaigns", ErrMalformedResponse)
	}

	var resp BackendResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return BackendResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return resp, nil
}
