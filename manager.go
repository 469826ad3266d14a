/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package commissaire

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/suparena/commissaire/datastore"
	"github.com/suparena/commissaire/errors"
	"github.com/suparena/commissaire/models"
)

// Definition is a registered store handler that may not have been activated yet.
type Definition struct {
	HandlerType datastore.HandlerType
	Config      datastore.Config
	ModelTypes  []*models.Type
}

// Name returns the resolved handler name.
func (d *Definition) Name() string {
	return d.Config.Name()
}

// ModelTypeNames returns the names of the owned model types in sorted order.
func (d *Definition) ModelTypeNames() []string {
	names := make([]string, 0, len(d.ModelTypes))
	for _, mt := range d.ModelTypes {
		names = append(names, mt.Name)
	}
	sort.Strings(names)
	return names
}

// Manager registers store handler definitions and routes records to handler
// instances, activating each definition on first use.
type Manager struct {
	logger *zap.Logger

	mu                     sync.RWMutex
	definitions            []*Definition
	definitionsByName      map[string]*Definition
	definitionsByModelType map[string]*Definition

	// handlerMu serializes check-create-cache so a definition is activated once.
	handlerMu           sync.Mutex
	handlersByName      map[string]datastore.StoreHandler
	handlersByModelType map[string]datastore.StoreHandler
}

// NewManager creates a Manager with no registered handlers.
func NewManager(opts ...Option) *Manager {
	s := newSettings(opts)
	return &Manager{
		logger:                 s.logger,
		definitionsByName:      make(map[string]*Definition),
		definitionsByModelType: make(map[string]*Definition),
		handlersByName:         make(map[string]datastore.StoreHandler),
		handlersByModelType:    make(map[string]datastore.StoreHandler),
	}
}

// Register associates a handler type and its configuration with zero or more
// model types. The resolved handler name is written back to cfg["name"]; a
// blank name is derived from the handler type name, with "-1", "-2", ...
// appended until unique. Any failure is an errors.ConfigurationError and
// leaves the Manager unchanged.
func (m *Manager) Register(ht datastore.HandlerType, cfg datastore.Config, modelTypes ...*models.Type) error {
	if ht == nil {
		return errors.NewConfigurationError(cfg.Name(), "no handler type given")
	}
	if cfg == nil {
		return errors.NewConfigurationError("", "no configuration given")
	}

	if err := ht.CheckConfig(cfg); err != nil {
		if errors.IsConfigurationError(err) {
			return err
		}
		return errors.NewConfigurationError(cfg.Name(), err.Error())
	}

	name := ""
	if raw, ok := cfg["name"]; ok && raw != nil {
		s, isString := raw.(string)
		if !isString {
			return errors.NewConfigurationError("", fmt.Sprintf("store handler name must be a string, got %T", raw))
		}
		name = strings.TrimSpace(s)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		base := ht.Name()
		name = base
		for suffix := 1; m.definitionsByName[name] != nil; suffix++ {
			name = fmt.Sprintf("%s-%d", base, suffix)
		}
	}

	if _, exists := m.definitionsByName[name]; exists {
		return errors.NewConfigurationError(name, "duplicate store handler name")
	}

	owned := make([]*models.Type, 0, len(modelTypes))
	seen := make(map[string]bool, len(modelTypes))
	for _, mt := range modelTypes {
		if mt == nil {
			return errors.NewConfigurationError(name, "nil model type given")
		}
		if seen[mt.Name] {
			continue
		}
		seen[mt.Name] = true
		if conflict, exists := m.definitionsByModelType[mt.Name]; exists {
			return errors.NewConfigurationError(name, fmt.Sprintf(
				"model %q already assigned to %q (%s)", mt.Name, conflict.Name(), conflict.HandlerType.Name()))
		}
		owned = append(owned, mt)
	}

	// Add definition after all checks pass.
	cfg["name"] = name
	def := &Definition{HandlerType: ht, Config: cfg, ModelTypes: owned}
	m.definitions = append(m.definitions, def)
	m.definitionsByName[name] = def
	for _, mt := range owned {
		m.definitionsByModelType[mt.Name] = def
	}

	m.logger.Info("registered store handler",
		zap.String("name", name),
		zap.String("handler_type", ht.Name()),
		zap.Strings("models", def.ModelTypeNames()))
	return nil
}

// ListHandlers returns every registered definition once, in registration order.
func (m *Manager) ListHandlers() []*Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Definition, len(m.definitions))
	copy(out, m.definitions)
	return out
}

func (m *Manager) definitionByName(name string) (*Definition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.definitionsByName[name]
	return def, ok
}

func (m *Manager) definitionByModelType(typeName string) (*Definition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.definitionsByModelType[typeName]
	return def, ok
}

// GetHandler returns the handler instance that services model, activating its
// definition if needed. A Host with a non-blank Source is routed to the handler
// of that name; otherwise routing follows the model type. Routing failures are
// errors.NoHandlerError and never fall back to another handler.
func (m *Manager) GetHandler(model models.Model) (datastore.StoreHandler, error) {
	m.handlerMu.Lock()
	defer m.handlerMu.Unlock()

	if host, ok := model.(*models.Host); ok {
		if name := strings.TrimSpace(host.Source); name != "" {
			if handler, ok := m.handlersByName[name]; ok {
				return handler, nil
			}
			def, ok := m.definitionByName(name)
			if !ok {
				return nil, errors.NewNoHandlerError(name)
			}
			return m.createHandler(def)
		}
	}

	typeName := model.TypeName()
	if handler, ok := m.handlersByModelType[typeName]; ok {
		return handler, nil
	}
	def, ok := m.definitionByModelType(typeName)
	if !ok {
		return nil, errors.NewNoHandlerError(typeName)
	}
	return m.createHandler(def)
}

// createHandler activates a definition and caches the instance under its name
// and every model type it owns. Callers hold handlerMu.
func (m *Manager) createHandler(def *Definition) (datastore.StoreHandler, error) {
	if handler, ok := m.handlersByName[def.Name()]; ok {
		return handler, nil
	}

	handler, err := def.HandlerType.New(def.Config.Clone())
	if err != nil {
		return nil, fmt.Errorf("failed to create store handler %q: %w", def.Name(), err)
	}

	m.handlersByName[def.Name()] = handler
	for _, mt := range def.ModelTypes {
		m.handlersByModelType[mt.Name] = handler
	}
	m.logger.Debug("created store handler", zap.String("name", def.Name()))
	return handler, nil
}

// Save validates a record and hands it to its store handler.
func (m *Manager) Save(ctx context.Context, model models.Model) (models.Model, error) {
	if err := model.Validate(); err != nil {
		m.logger.Error("refusing to save invalid record",
			zap.String("model", models.Identity(model)), zap.Error(err))
		return nil, err
	}
	handler, err := m.GetHandler(model)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("> SAVE", zap.String("model", models.Identity(model)))
	saved, err := handler.Save(ctx, model)
	if err != nil {
		return nil, err
	}
	if isNil(saved) {
		return nil, m.noRecord(model)
	}
	m.logger.Debug("< SAVE", zap.String("model", models.Identity(saved)))
	return saved, nil
}

// Get fetches the full record identified by model and validates what the store returned.
func (m *Manager) Get(ctx context.Context, model models.Model) (models.Model, error) {
	handler, err := m.GetHandler(model)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("> GET", zap.String("model", models.Identity(model)))
	found, err := handler.Get(ctx, model)
	if err != nil {
		return nil, err
	}
	if isNil(found) {
		return nil, m.noRecord(model)
	}
	if found.TypeName() != model.TypeName() {
		m.logger.Error("store returned record of another type",
			zap.String("model", models.Identity(model)), zap.String("returned", found.TypeName()))
		return nil, errors.NewModelValidationError(model.TypeName(), "",
			fmt.Sprintf("store returned a %s record", found.TypeName()))
	}
	if err := found.Validate(); err != nil {
		m.logger.Error("store returned invalid record",
			zap.String("model", models.Identity(model)), zap.Error(err))
		return nil, err
	}
	m.logger.Debug("< GET", zap.String("model", models.Identity(found)))
	return found, nil
}

// Delete removes the record identified by model from its store.
func (m *Manager) Delete(ctx context.Context, model models.Model) error {
	handler, err := m.GetHandler(model)
	if err != nil {
		return err
	}

	m.logger.Debug("> DELETE", zap.String("model", models.Identity(model)))
	return handler.Delete(ctx, model)
}

// List returns the records a store holds for the element type of list.
func (m *Manager) List(ctx context.Context, list models.ListModel) ([]models.Model, error) {
	handler, err := m.GetHandler(list)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("> LIST", zap.String("model", list.TypeName()))
	result, err := handler.List(ctx, list)
	if err != nil {
		return nil, err
	}
	if isNil(result) {
		return nil, m.noRecord(list)
	}
	items := result.Items()
	for _, item := range items {
		if isNil(item) {
			return nil, m.noRecord(list)
		}
	}
	m.logger.Debug("< LIST", zap.String("model", list.TypeName()), zap.Int("count", len(items)))
	return items, nil
}

// noRecord reports a store that answered without a record and without an error.
func (m *Manager) noRecord(model models.Model) error {
	m.logger.Error("store returned no record", zap.String("model", model.TypeName()))
	return errors.NewModelValidationError(model.TypeName(), "", "store returned no record")
}

// isNil reports whether v is nil or a nil pointer held in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
