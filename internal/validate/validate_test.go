// SPDX-License-Identifier: MIT
package validate

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name           string
		value          string
		allowedSchemes []string
		wantErr        bool
	}{
		{"valid http", "http://example.com", []string{"http", "https"}, false},
		{"valid https", "https://example.com", []string{"http", "https"}, false},
		{"empty url", "", []string{"http"}, true},
		{"no host", "http://", []string{"http"}, true},
		{"invalid scheme", "ftp://example.com", []string{"http", "https"}, true},
		{"no scheme", "example.com", []string{"http"}, true},
		{"with port", "http://example.com:8080", []string{"http"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.URL("testURL", tt.value, tt.allowedSchemes)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_CountryCode(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"DE", false},
		{"TR", false},
		{"US", false},
		{"de", false},
		{"D", true},
		{"DEU", true},
		{"ZZ", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			v := New()
			v.CountryCode("country", tt.code)
			if tt.wantErr == v.IsValid() {
				t.Errorf("CountryCode(%q) valid=%v, wantErr=%v", tt.code, v.IsValid(), tt.wantErr)
			}
		})
	}
}

func TestValidator_ListenAddr(t *testing.T) {
	v := New()
	v.ListenAddr("listen", ":8080")
	v.ListenAddr("listen", "127.0.0.1:9000")
	if !v.IsValid() {
		t.Fatalf("unexpected errors: %v", v.Err())
	}

	v = New()
	v.ListenAddr("listen", "8080")
	if v.IsValid() {
		t.Fatal("expected error for missing colon")
	}
}

func TestValidator_DurationRange(t *testing.T) {
	v := New()
	v.DurationRange("tick", 500*time.Millisecond, 10*time.Millisecond, time.Minute)
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}
	v.DurationRange("tick", 0, 10*time.Millisecond, time.Minute)
	if v.IsValid() {
		t.Fatal("expected error for zero duration")
	}
}

func TestValidationError_Aggregates(t *testing.T) {
	v := New()
	v.NotEmpty("a", " ")
	v.OneOf("b", "x", []string{"live", "simulated"})
	v.Positive("c", 0)

	err := v.Err()
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(verr.Errors()))
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected joined message, got %q", err.Error())
	}
}
