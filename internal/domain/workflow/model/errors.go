// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import "fmt"

// ErrorKind classifies a failure surfaced to the user. Keep these stable:
// the display layer and metrics labels depend on them.
type ErrorKind string

const (
	ErrorNone               ErrorKind = ""
	ErrorUploadTooLarge     ErrorKind = "upload_too_large"
	ErrorUploadTimeout      ErrorKind = "upload_timeout"
	ErrorProcessingTimeout  ErrorKind = "processing_timeout"
	ErrorBackendUnavailable ErrorKind = "backend_unavailable"
	ErrorGeneric            ErrorKind = "generic_failure"
)

// WorkflowError is the classified error a controller operation returns.
// Message is already localized for the session's display language.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}
