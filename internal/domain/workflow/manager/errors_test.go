// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/locflow/internal/backend"
	"github.com/ManuGH/locflow/internal/domain/workflow/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		op   string
		err  error
		want model.ErrorKind
	}{
		{opUpload, nil, model.ErrorNone},
		{opUpload, &backend.APIError{Sentinel: backend.ErrTooLarge}, model.ErrorUploadTooLarge},
		{opUpload, &backend.APIError{Sentinel: backend.ErrTimeout}, model.ErrorUploadTimeout},
		{opUpload, fmt.Errorf("send: %w", context.DeadlineExceeded), model.ErrorUploadTimeout},
		{opAnalyze, &backend.APIError{Sentinel: backend.ErrTimeout}, model.ErrorProcessingTimeout},
		{opPoll, &backend.APIError{Sentinel: backend.ErrPollExhausted}, model.ErrorProcessingTimeout},
		{opGenerate, &backend.APIError{Sentinel: backend.ErrUnavailable}, model.ErrorBackendUnavailable},
		{opGenerate, &backend.APIError{Sentinel: backend.ErrUpstream, Status: 502}, model.ErrorBackendUnavailable},
		{opAnalyze, &backend.APIError{Sentinel: backend.ErrRejected, Status: 422}, model.ErrorGeneric},
		{opAnalyze, errors.New("boom"), model.ErrorGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classify(tt.op, tt.err), "%s: %v", tt.op, tt.err)
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyLive, s)

	s, err = ParseStrategy(" Simulated ")
	require.NoError(t, err)
	assert.Equal(t, StrategySimulated, s)

	_, err = ParseStrategy("offline")
	assert.Error(t, err)
}
