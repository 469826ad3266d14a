/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides an in-process store handler backed by a map.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/suparena/commissaire/datastore"
	"github.com/suparena/commissaire/errors"
	"github.com/suparena/commissaire/models"
)

// HandlerType creates memory store handlers. It takes no configuration beyond the name.
type HandlerType struct{}

func (HandlerType) Name() string { return "memory" }

func (HandlerType) CheckConfig(cfg datastore.Config) error {
	return nil
}

func (HandlerType) New(cfg datastore.Config) (datastore.StoreHandler, error) {
	return New(), nil
}

type recordKey struct {
	modelType string
	key       string
}

// Store is a memory store handler. Records are kept in encoded form so callers
// never share state with the store.
type Store struct {
	mu          sync.RWMutex
	data        map[recordKey][]byte
	saveError   error
	getError    error
	deleteError error
	listError   error
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		data: make(map[recordKey][]byte),
	}
}

// WithSaveError makes Save operations return an error
func (s *Store) WithSaveError(err error) *Store {
	s.saveError = err
	return s
}

// WithGetError makes Get operations return an error
func (s *Store) WithGetError(err error) *Store {
	s.getError = err
	return s
}

// WithDeleteError makes Delete operations return an error
func (s *Store) WithDeleteError(err error) *Store {
	s.deleteError = err
	return s
}

// WithListError makes List operations return an error
func (s *Store) WithListError(err error) *Store {
	s.listError = err
	return s
}

// Save stores a record under its type and primary key
func (s *Store) Save(ctx context.Context, m models.Model) (models.Model, error) {
	if s.saveError != nil {
		return nil, s.saveError
	}
	if m.PrimaryKey() == "" {
		return nil, errors.NewModelValidationError(m.TypeName(), "", "record has no primary key")
	}

	data, err := models.Encode(m)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[recordKey{m.TypeName(), m.PrimaryKey()}] = data
	return models.Decode(m, data)
}

// Get retrieves a record by type and primary key
func (s *Store) Get(ctx context.Context, m models.Model) (models.Model, error) {
	if s.getError != nil {
		return nil, s.getError
	}

	s.mu.RLock()
	data, exists := s.data[recordKey{m.TypeName(), m.PrimaryKey()}]
	s.mu.RUnlock()

	if !exists {
		return nil, errors.NewNotFoundError(m.TypeName(), m.PrimaryKey())
	}
	return models.Decode(m, data)
}

// Delete removes a record by type and primary key
func (s *Store) Delete(ctx context.Context, m models.Model) error {
	if s.deleteError != nil {
		return s.deleteError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := recordKey{m.TypeName(), m.PrimaryKey()}
	if _, exists := s.data[k]; !exists {
		return errors.NewNotFoundError(m.TypeName(), m.PrimaryKey())
	}
	delete(s.data, k)
	return nil
}

// List fills l with every record of its element type, ordered by primary key
func (s *Store) List(ctx context.Context, l models.ListModel) (models.ListModel, error) {
	if s.listError != nil {
		return nil, s.listError
	}

	item := l.NewItem()
	itemType := item.TypeName()

	s.mu.RLock()
	keys := make([]string, 0)
	for k := range s.data {
		if k.modelType == itemType {
			keys = append(keys, k.key)
		}
	}
	sort.Strings(keys)

	items := make([]models.Model, 0, len(keys))
	for _, key := range keys {
		m, err := models.Decode(item, s.data[recordKey{itemType, key}])
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		items = append(items, m)
	}
	s.mu.RUnlock()

	if err := l.SetItems(items); err != nil {
		return nil, err
	}
	return l, nil
}

// Count returns the number of stored records
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Clear removes all records
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[recordKey][]byte)
}
