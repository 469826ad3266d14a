/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package commissaire

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/suparena/commissaire/datastore"
	"github.com/suparena/commissaire/errors"
	"github.com/suparena/commissaire/models"
	"github.com/suparena/commissaire/registry"
)

// DefaultHandlerType is the catalog selector registered when a service is
// configured without any store handlers.
const DefaultHandlerType = "memory"

// HandlerInfo describes a registered store handler.
type HandlerInfo struct {
	HandlerType string           `json:"handler_type"`
	Config      datastore.Config `json:"config"`
	ModelTypes  []string         `json:"model_types"`
}

// Service exposes validated storage operations over untyped record data.
//
// Record data may be a field map, a JSON object as string or bytes, or a
// slice of either. Results mirror the input shape: a single map[string]any
// for single input and a []map[string]any for list input.
type Service struct {
	logger  *zap.Logger
	models  *registry.ModelRegistry
	catalog *datastore.Catalog
	manager *Manager
}

// NewService creates a Service and registers each store handler entry in order.
// With no entries a single DefaultHandlerType handler claims every non-secret model type.
func NewService(catalog *datastore.Catalog, entries []any, opts ...Option) (*Service, error) {
	s := newSettings(opts)
	svc := &Service{
		logger:  s.logger,
		models:  s.models,
		catalog: catalog,
		manager: NewManager(opts...),
	}

	if len(entries) == 0 {
		entries = []any{map[string]any{"type": DefaultHandlerType}}
	}
	for i, entry := range entries {
		if err := svc.RegisterStoreHandler(entry); err != nil {
			return nil, fmt.Errorf("store handler entry %d: %w", i, err)
		}
	}
	return svc, nil
}

// Manager returns the handler registry backing the service.
func (s *Service) Manager() *Manager {
	return s.manager
}

// Models returns the model registry used to resolve type names.
func (s *Service) Models() *registry.ModelRegistry {
	return s.models
}

// RegisterStoreHandler registers one store handler configuration entry.
//
// The entry must be an object with a "type" key naming a catalog selector.
// An optional "models" list of glob patterns (default ["*"]) selects the model
// types the handler owns; every pattern must match at least one type. The
// remaining keys, "name" included, form the handler configuration. The
// caller's entry is not modified.
func (s *Service) RegisterStoreHandler(entry any) error {
	var raw map[string]any
	switch e := entry.(type) {
	case map[string]any:
		raw = e
	case datastore.Config:
		raw = e
	default:
		return errors.NewConfigurationError("", fmt.Sprintf("store handler entry must be an object, got %T: %v", entry, entry))
	}

	cfg := datastore.Config(raw).Clone()

	selector, _ := cfg["type"].(string)
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return errors.NewConfigurationError(cfg.Name(), fmt.Sprintf(`store handler entry missing "type" key: %v`, raw))
	}
	delete(cfg, "type")

	ht, ok := s.catalog.Lookup(selector)
	if !ok {
		return errors.NewConfigurationError(cfg.Name(), fmt.Sprintf(
			"unknown store handler type %q, expected one of %v", selector, s.catalog.Selectors()))
	}

	patterns, err := modelPatterns(cfg)
	if err != nil {
		return err
	}
	delete(cfg, "models")

	var matched []*models.Type
	for _, pattern := range patterns {
		types, err := s.models.Match(pattern)
		if err != nil {
			return errors.NewConfigurationError(cfg.Name(), err.Error())
		}
		if len(types) == 0 {
			return errors.NewConfigurationError(cfg.Name(), fmt.Sprintf("no match for model pattern %q", pattern))
		}
		matched = append(matched, types...)
	}

	return s.manager.Register(ht, cfg, matched...)
}

func modelPatterns(cfg datastore.Config) ([]string, error) {
	raw, ok := cfg["models"]
	if !ok || raw == nil {
		return []string{"*"}, nil
	}

	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		patterns := make([]string, 0, len(v))
		for _, p := range v {
			s, ok := p.(string)
			if !ok {
				return nil, errors.NewConfigurationError(cfg.Name(), fmt.Sprintf("model pattern must be a string, got %T", p))
			}
			patterns = append(patterns, s)
		}
		return patterns, nil
	default:
		return nil, errors.NewConfigurationError(cfg.Name(), fmt.Sprintf(`"models" must be a list of patterns, got %T`, raw))
	}
}

// ListStoreHandlers describes every registered store handler.
func (s *Service) ListStoreHandlers() []HandlerInfo {
	defs := s.manager.ListHandlers()
	out := make([]HandlerInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, HandlerInfo{
			HandlerType: def.HandlerType.Name(),
			Config:      def.Config.Clone(),
			ModelTypes:  def.ModelTypeNames(),
		})
	}
	return out
}

// Save validates and stores records of the named model type, returning their
// persisted representations. Every record is built before any store is
// touched, so a batch holding one malformed record writes nothing. Records are
// then validated and saved in order; the first failure stops the batch and
// earlier records stay saved.
func (s *Service) Save(ctx context.Context, typeName string, data any, opts ...CallOption) (any, error) {
	o := newCallOptions(opts)
	records, batch, err := s.build(typeName, data)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(records))
	for _, record := range records {
		saved, err := s.manager.Save(ctx, record)
		if err != nil {
			return nil, err
		}
		rep, err := models.ToMap(saved, o.secure)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return shape(out, batch), nil
}

// Get returns the stored representations of the identified records. Records
// returned by a store are validated before they are passed on.
func (s *Service) Get(ctx context.Context, typeName string, data any, opts ...CallOption) (any, error) {
	o := newCallOptions(opts)
	records, batch, err := s.build(typeName, data)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(records))
	for _, record := range records {
		found, err := s.manager.Get(ctx, record)
		if err != nil {
			return nil, err
		}
		rep, err := models.ToMap(found, o.secure)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return shape(out, batch), nil
}

// Delete removes the identified records. Errors from a store, including
// errors.NotFoundError, are returned unchanged.
func (s *Service) Delete(ctx context.Context, typeName string, data any) error {
	records, _, err := s.build(typeName, data)
	if err != nil {
		return err
	}

	for _, record := range records {
		if err := s.manager.Delete(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// List returns the representations of every stored record for a list model
// type such as "Hosts", in the order the store reports them.
func (s *Service) List(ctx context.Context, typeName string, opts ...CallOption) ([]map[string]any, error) {
	o := newCallOptions(opts)
	t, err := s.models.Resolve(typeName)
	if err != nil {
		return nil, err
	}
	list, ok := t.New().(models.ListModel)
	if !ok {
		return nil, errors.NewMalformedError(typeName, "not a list model type")
	}

	items, err := s.manager.List(ctx, list)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		rep, err := models.ToMap(item, o.secure)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}

// build turns record data into records, failing on the first malformed item.
func (s *Service) build(typeName string, data any) ([]models.Model, bool, error) {
	t, err := s.models.Resolve(typeName)
	if err != nil {
		return nil, false, err
	}

	items, batch, err := normalize(typeName, data)
	if err != nil {
		return nil, false, err
	}

	records := make([]models.Model, 0, len(items))
	for i, fields := range items {
		record, err := t.Build(fields)
		if err != nil {
			if batch {
				return nil, false, fmt.Errorf("item %d: %w", i, err)
			}
			return nil, false, err
		}
		records = append(records, record)
	}
	return records, batch, nil
}

// normalize flattens the accepted data shapes into field maps and reports
// whether the input was a list.
func normalize(typeName string, data any) ([]map[string]any, bool, error) {
	switch v := data.(type) {
	case nil:
		return nil, false, errors.NewMalformedError(typeName, "no record data")
	case map[string]any:
		return []map[string]any{v}, false, nil
	case []map[string]any:
		return v, true, nil
	case string:
		return normalizeJSON(typeName, []byte(v))
	case []byte:
		return normalizeJSON(typeName, v)
	case json.RawMessage:
		return normalizeJSON(typeName, v)
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return normalizeList(typeName, items)
	case []any:
		return normalizeList(typeName, v)
	default:
		return nil, false, errors.NewMalformedError(typeName, fmt.Sprintf("unsupported record data %T", data))
	}
}

func normalizeJSON(typeName string, data []byte) ([]map[string]any, bool, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, false, errors.NewMalformedError(typeName, fmt.Sprintf("invalid JSON: %v", err))
	}
	switch v := decoded.(type) {
	case map[string]any, []any:
		return normalize(typeName, decoded)
	case string:
		// A JSON string holding the encoded record, as sent by transports.
		return normalizeJSON(typeName, []byte(v))
	default:
		return nil, false, errors.NewMalformedError(typeName, fmt.Sprintf("expected a JSON object or array, got %T", decoded))
	}
}

func normalizeList(typeName string, items []any) ([]map[string]any, bool, error) {
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		var fields map[string]any
		switch v := item.(type) {
		case map[string]any:
			fields = v
		case string:
			if err := json.Unmarshal([]byte(v), &fields); err != nil {
				return nil, false, fmt.Errorf("item %d: %w", i, errors.NewMalformedError(typeName, fmt.Sprintf("invalid JSON object: %v", err)))
			}
		default:
			return nil, false, fmt.Errorf("item %d: %w", i, errors.NewMalformedError(typeName, fmt.Sprintf("unsupported record data %T", item)))
		}
		out = append(out, fields)
	}
	return out, true, nil
}

func shape(reps []map[string]any, batch bool) any {
	if batch {
		return reps
	}
	return reps[0]
}
