// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by spans across the service.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	WorkflowSessionKey = "workflow.session_id"
	WorkflowStepKey    = "workflow.step"
	WorkflowCountryKey = "workflow.country_code"
	WorkflowVideoKey   = "workflow.video_id"
	WorkflowStrategy   = "workflow.strategy"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// WorkflowAttributes describes a controller operation. Empty values are skipped.
func WorkflowAttributes(sessionID, step, country, videoID string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if sessionID != "" {
		attrs = append(attrs, attribute.String(WorkflowSessionKey, sessionID))
	}
	if step != "" {
		attrs = append(attrs, attribute.String(WorkflowStepKey, step))
	}
	if country != "" {
		attrs = append(attrs, attribute.String(WorkflowCountryKey, country))
	}
	if videoID != "" {
		attrs = append(attrs, attribute.String(WorkflowVideoKey, videoID))
	}
	return attrs
}

// ErrorAttributes marks a span as failed with a classified error type.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
