/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/suparena/commissaire/errors"
	"github.com/suparena/commissaire/models"
)

// ModelRegistry maps model type names to their descriptors.
type ModelRegistry struct {
	mu    sync.RWMutex
	types map[string]*models.Type
}

// New creates a ModelRegistry holding the given descriptors.
func New(types ...*models.Type) (*ModelRegistry, error) {
	r := &ModelRegistry{types: make(map[string]*models.Type, len(types))}
	for _, t := range types {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewDefault creates a ModelRegistry holding the built-in commissaire model types.
func NewDefault() *ModelRegistry {
	r, err := New(models.Catalogue()...)
	if err != nil {
		panic(fmt.Sprintf("model registry: %v", err))
	}
	return r
}

// Register adds a model type descriptor. Names must be unique.
func (r *ModelRegistry) Register(t *models.Type) error {
	if t == nil || t.Name == "" || t.New == nil {
		return fmt.Errorf("model registry: descriptor needs a name and a constructor")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[t.Name]; exists {
		return fmt.Errorf("model registry: type %q already registered", t.Name)
	}
	r.types[t.Name] = t
	return nil
}

// Resolve returns the descriptor registered under name, or an errors.UnknownModelError.
func (r *ModelRegistry) Resolve(name string) (*models.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]
	if !ok {
		return nil, errors.NewUnknownModelError(name)
	}
	return t, nil
}

// Names returns all registered type names in sorted order.
func (r *ModelRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Match returns the descriptors whose names match a case-sensitive glob pattern,
// sorted by name. A pattern containing glob metacharacters never matches a
// secret type; a plain name matches exactly that type, secret or not.
func (r *ModelRegistry) Match(pattern string) ([]*models.Type, error) {
	if !IsWildcard(pattern) {
		t, err := r.Resolve(pattern)
		if err != nil {
			return nil, nil
		}
		return []*models.Type{t}, nil
	}

	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("model registry: bad pattern %q: %w", pattern, err)
	}

	var matched []*models.Type
	for _, name := range r.Names() {
		ok, _ := path.Match(pattern, name)
		if !ok {
			continue
		}
		t, err := r.Resolve(name)
		if err != nil || t.Secret {
			continue
		}
		matched = append(matched, t)
	}
	return matched, nil
}

// IsWildcard reports whether pattern contains glob metacharacters.
func IsWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[\`)
}
