/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/suparena/commissaire/errors"
	"github.com/suparena/commissaire/models"
)

// Config is the configuration of one store handler. After registration it
// always holds the resolved handler name under "name".
type Config map[string]any

// Name returns the configured handler name, or "" if none.
func (c Config) Name() string {
	name, _ := c["name"].(string)
	return name
}

// Clone returns a shallow copy of c.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// StoreHandler is a live backend bound to one configuration.
type StoreHandler interface {
	// Save persists the record and returns the persisted form.
	Save(ctx context.Context, m models.Model) (models.Model, error)
	// Get returns the full stored record identified by m.
	// A missing record is reported as errors.NotFoundError.
	Get(ctx context.Context, m models.Model) (models.Model, error)
	// Delete removes the record identified by m.
	// A missing record is reported as errors.NotFoundError.
	Delete(ctx context.Context, m models.Model) error
	// List populates the list model with every stored record of its element type.
	List(ctx context.Context, l models.ListModel) (models.ListModel, error)
}

// HandlerType is the static side of a store handler implementation.
type HandlerType interface {
	// Name identifies the implementation. It seeds derived handler names.
	Name() string
	// CheckConfig validates a configuration without side effects and
	// returns an errors.ConfigurationError on failure.
	CheckConfig(cfg Config) error
	// New activates a handler for a configuration that passed CheckConfig.
	New(cfg Config) (StoreHandler, error)
}

// DecodeConfig decodes cfg into a typed configuration struct using "mapstructure" tags.
// Keys with no matching field are ignored. Durations may be given as strings like "250ms". Failures are reported as errors.ConfigurationError.
func DecodeConfig(cfg Config, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(cfg)); err != nil {
		return errors.NewConfigurationError(cfg.Name(), err.Error())
	}
	return nil
}
