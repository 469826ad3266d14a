/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"fmt"
	"strings"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/commissaire/errors"
)

func requireString(model, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewModelValidationError(model, field, "must not be empty")
	}
	return nil
}

// requireAddress accepts IPv4 and IPv6 literals and RFC 1123 host names.
func requireAddress(model, field, value string) error {
	if err := requireString(model, field, value); err != nil {
		return err
	}
	for _, format := range []string{"ipv4", "ipv6", "hostname"} {
		if strfmt.Default.Validates(format, value) {
			return nil
		}
	}
	return errors.NewModelValidationError(model, field, fmt.Sprintf("%q is not an IP address or host name", value))
}

func oneOf(model, field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return errors.NewModelValidationError(model, field, fmt.Sprintf("%q is not one of %v", value, allowed))
}

// optionalOneOf is oneOf that also accepts the empty string.
func optionalOneOf(model, field, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	return oneOf(model, field, value, allowed...)
}

func optionalDateTime(model, field, value string) error {
	if value == "" || strfmt.IsDateTime(value) {
		return nil
	}
	return errors.NewModelValidationError(model, field, fmt.Sprintf("%q is not an RFC 3339 date-time", value))
}

func atLeast(model, field string, value, min int) error {
	if value < min {
		return errors.NewModelValidationError(model, field, fmt.Sprintf("%d is less than %d", value, min))
	}
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func validateItems[T Model](items []T) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}
