/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package commissaire

import (
	"go.uber.org/zap"

	"github.com/suparena/commissaire/registry"
)

type settings struct {
	logger *zap.Logger
	models *registry.ModelRegistry
}

func newSettings(opts []Option) settings {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.models == nil {
		s.models = registry.NewDefault()
	}
	return s
}

// Option configures a Manager or a Service
type Option func(*settings)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithModelRegistry sets the model registry used to resolve type names.
// The default holds the built-in commissaire model types.
func WithModelRegistry(models *registry.ModelRegistry) Option {
	return func(s *settings) {
		s.models = models
	}
}

type callOptions struct {
	secure bool
}

// CallOption configures a single Service call
type CallOption func(*callOptions)

// WithSecure includes secure fields, such as private keys, in returned representations.
func WithSecure() CallOption {
	return func(o *callOptions) {
		o.secure = true
	}
}

func newCallOptions(opts []CallOption) callOptions {
	o := callOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
