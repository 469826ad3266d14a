/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("Host", "10.0.0.1")

	expected := `Host with key "10.0.0.1" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}

	if IsLookupFailure(err) {
		t.Error("a backend not found error is not a lookup failure")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "with field",
			err:      NewValidationError("address", "must not be empty"),
			expected: `validation failed for field "address": must not be empty`,
		},
		{
			name:     "without field",
			err:      NewValidationError("", "missing required fields"),
			expected: "validation failed: missing required fields",
		},
		{
			name:     "with model",
			err:      NewModelValidationError("Cluster", "status", `"bogus" is not one of [ok degraded failed]`),
			expected: `Cluster validation failed for field "status": "bogus" is not one of [ok degraded failed]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, tt.err.Error())
			}

			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Error("ValidationError should match ErrInvalidInput")
			}

			if !IsValidationError(tt.err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestMalformedError(t *testing.T) {
	err := NewMalformedError("Host", `missing required field "address"`)

	expected := `malformed Host: missing required field "address"`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsMalformed(err) {
		t.Error("IsMalformed should return true for MalformedError")
	}

	if IsValidationError(err) {
		t.Error("MalformedError should not match ErrInvalidInput")
	}
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("primary", "duplicate store handler name")
	expected := `configuration error in store handler "primary": duplicate store handler name`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	err = NewConfigurationError("", `no match for model pattern "Foo*"`)
	expected = `configuration error: no match for model pattern "Foo*"`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsConfigurationError(err) {
		t.Error("IsConfigurationError should return true for ConfigurationError")
	}
}

func TestLookupFailures(t *testing.T) {
	for _, err := range []error{
		NewUnknownModelError("Bogus"),
		NewNoHandlerError("Host"),
		fmt.Errorf("routing: %w", NewNoHandlerError("nonexistent")),
	} {
		if !IsLookupFailure(err) {
			t.Errorf("IsLookupFailure should return true for %v", err)
		}
		if IsNotFound(err) {
			t.Errorf("lookup failure %v should not match ErrNotFound", err)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	original := NewNotFoundError("Host", "10.0.0.1")
	wrapped := fmt.Errorf("backend operation failed: %w", original)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("Wrapped NotFoundError should still match ErrNotFound")
	}

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should work with wrapped errors")
	}

	var nf *NotFoundError
	if !errors.As(wrapped, &nf) || nf.Key != "10.0.0.1" {
		t.Errorf("errors.As should recover the NotFoundError, got %v", nf)
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrMalformed,
		ErrConfiguration,
		ErrUnknownModel,
		ErrNoHandler,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}
