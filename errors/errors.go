/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned by a store handler when a record does not exist in its backend
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput is returned when record validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformed is returned when a record cannot be built from its representation
	ErrMalformed = errors.New("malformed record")

	// ErrConfiguration is returned when a store handler or the service is misconfigured
	ErrConfiguration = errors.New("configuration error")

	// ErrUnknownModel is returned when a model type name is not registered
	ErrUnknownModel = errors.New("unknown model type")

	// ErrNoHandler is returned when no store handler can service a record
	ErrNoHandler = errors.New("no store handler")
)

// NotFoundError represents a record missing from a backend store
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError represents a record that failed validation
type ValidationError struct {
	Model   string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	prefix := "validation failed"
	if e.Model != "" {
		prefix = fmt.Sprintf("%s validation failed", e.Model)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s for field %q: %s", prefix, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MalformedError represents a representation that could not be turned into a record,
// for example one missing a required field or carrying a mistyped value.
type MalformedError struct {
	Model   string
	Message string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s: %s", e.Model, e.Message)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// ConfigurationError represents an invalid store handler configuration.
// Handler is empty when the failure is not tied to a single handler.
type ConfigurationError struct {
	Handler string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Handler != "" {
		return fmt.Sprintf("configuration error in store handler %q: %s", e.Handler, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// UnknownModelError represents a lookup of an unregistered model type name
type UnknownModelError struct {
	Name string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("model type %q is not registered", e.Name)
}

func (e *UnknownModelError) Is(target error) bool {
	return target == ErrUnknownModel
}

// NoHandlerError represents a routing failure. Key is the model type name or,
// for a Host source override, the handler name that was requested.
type NoHandlerError struct {
	Key string
}

func (e *NoHandlerError) Error() string {
	return fmt.Sprintf("no store handler registered for %q", e.Key)
}

func (e *NoHandlerError) Is(target error) bool {
	return target == ErrNoHandler
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(modelType, key string) error {
	return &NotFoundError{Type: modelType, Key: key}
}

// NewValidationError creates a new ValidationError not tied to a model type
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewModelValidationError creates a new ValidationError for the named model type
func NewModelValidationError(model, field, message string) error {
	return &ValidationError{Model: model, Field: field, Message: message}
}

// NewMalformedError creates a new MalformedError
func NewMalformedError(model, message string) error {
	return &MalformedError{Model: model, Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(handler, message string) error {
	return &ConfigurationError{Handler: handler, Message: message}
}

// NewUnknownModelError creates a new UnknownModelError
func NewUnknownModelError(name string) error {
	return &UnknownModelError{Name: name}
}

// NewNoHandlerError creates a new NoHandlerError
func NewNoHandlerError(key string) error {
	return &NoHandlerError{Key: key}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsMalformed checks if an error is a malformed record error
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsLookupFailure checks if an error is a model type or store handler lookup failure.
// Backend not found errors are not lookup failures.
func IsLookupFailure(err error) bool {
	return errors.Is(err, ErrUnknownModel) || errors.Is(err, ErrNoHandler)
}
