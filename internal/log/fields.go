// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID     = "session_id"
	FieldCorrelationID = "correlation_id"
	FieldRequestID     = "request_id"
	FieldVideoID       = "video_id"
	FieldJobID         = "job_id"

	// Process / workflow fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStrategy  = "strategy"

	// Workflow fields
	FieldCountryCode = "country_code"
	FieldPlatform    = "platform"
	FieldErrorKind   = "error_kind"

	// State fields
	FieldOldStep = "old_step"
	FieldNewStep = "new_step"

	// HTTP fields
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldDuration = "duration_ms"
	FieldBaseURL  = "base_url"
)
