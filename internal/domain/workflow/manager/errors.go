// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"errors"

	"github.com/ManuGH/locflow/internal/backend"
	"github.com/ManuGH/locflow/internal/domain/workflow/campaign"
	"github.com/ManuGH/locflow/internal/domain/workflow/lifecycle"
	"github.com/ManuGH/locflow/internal/domain/workflow/model"
	"github.com/ManuGH/locflow/internal/i18n"
)

var (
	// ErrBusy is returned while another collaborator-backed operation runs.
	ErrBusy = errors.New("workflow operation already in progress")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("workflow session closed")

	ErrWrongStep         = lifecycle.ErrWrongStep
	ErrNavigationDenied  = lifecycle.ErrNavigationDenied
	ErrNoCountrySelected = lifecycle.ErrNoCountrySelected
	ErrNoVideo           = lifecycle.ErrNoVideo
	ErrNotComplete       = lifecycle.ErrNotComplete
)

// Operation names used for error classification, logs and metrics.
const (
	opUpload     = "upload"
	opTranscribe = "transcribe"
	opLocalize   = "localize"
	opPoll       = "localization_status"
	opAnalyze    = "analyze"
	opGenerate   = "generate_campaigns"
)

// classify maps a collaborator error to the user-facing taxonomy.
func classify(op string, err error) model.ErrorKind {
	switch {
	case err == nil:
		return model.ErrorNone
	case errors.Is(err, backend.ErrTooLarge):
		return model.ErrorUploadTooLarge
	case errors.Is(err, backend.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		if op == opUpload {
			return model.ErrorUploadTimeout
		}
		return model.ErrorProcessingTimeout
	case errors.Is(err, backend.ErrPollExhausted):
		return model.ErrorProcessingTimeout
	case errors.Is(err, backend.ErrUnavailable), errors.Is(err, backend.ErrUpstream):
		return model.ErrorBackendUnavailable
	}
	return model.ErrorGeneric
}

// describe renders the message for kind in the session language.
func describe(p *i18n.Printer, kind model.ErrorKind, err error, maxUploadMB int64) string {
	switch kind {
	case model.ErrorUploadTooLarge:
		return p.Sprintf(i18n.UploadTooLarge, maxUploadMB)
	case model.ErrorUploadTimeout:
		return p.Sprintf(i18n.UploadTimeout)
	case model.ErrorProcessingTimeout:
		return p.Sprintf(i18n.ProcessingTimeout)
	case model.ErrorBackendUnavailable:
		return p.Sprintf(i18n.BackendUnavailable)
	}
	return p.Sprintf(i18n.GenericFailure, detail(err))
}

// detail extracts a short reason without transport internals.
func detail(err error) string {
	var apiErr *backend.APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr) && apiErr.Body != "":
		return apiErr.Body
	case errors.As(err, &apiErr):
		return apiErr.Sentinel.Error()
	case errors.Is(err, campaign.ErrMalformedResponse):
		return campaign.ErrMalformedResponse.Error()
	}
	return err.Error()
}
