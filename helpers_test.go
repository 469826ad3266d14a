/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package commissaire

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suparena/commissaire/datastore"
	"github.com/suparena/commissaire/datastore/memory"
	"github.com/suparena/commissaire/models"
	"github.com/suparena/commissaire/registry"
)

// countingHandlerType records how many handlers it activates per handler name.
type countingHandlerType struct {
	name     string
	checkErr error

	mu      sync.Mutex
	created map[string]int
}

func newCountingHandlerType(name string) *countingHandlerType {
	return &countingHandlerType{name: name, created: make(map[string]int)}
}

func (ht *countingHandlerType) Name() string { return ht.name }

func (ht *countingHandlerType) CheckConfig(cfg datastore.Config) error { return ht.checkErr }

func (ht *countingHandlerType) New(cfg datastore.Config) (datastore.StoreHandler, error) {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	ht.created[cfg.Name()]++
	return &countingHandler{name: cfg.Name(), store: memory.New()}, nil
}

func (ht *countingHandlerType) createdCount(name string) int {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.created[name]
}

func (ht *countingHandlerType) totalCreated() int {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	total := 0
	for _, n := range ht.created {
		total += n
	}
	return total
}

// countingHandler is a memory store that counts primitive calls and can
// override what Save, Get and List return.
type countingHandler struct {
	name  string
	store *memory.Store

	mu      sync.Mutex
	saves   int
	gets    int
	deletes int
	lists   int
	saveFunc func(models.Model) (models.Model, error)
	getFunc  func(models.Model) (models.Model, error)
	listFunc func(models.ListModel) (models.ListModel, error)
}

// override replaces the Save, Get and List results until the test ends. Nil
// functions leave the primitive alone.
func (h *countingHandler) override(t *testing.T,
	save func(models.Model) (models.Model, error),
	get func(models.Model) (models.Model, error),
	list func(models.ListModel) (models.ListModel, error),
) {
	t.Helper()
	h.mu.Lock()
	h.saveFunc, h.getFunc, h.listFunc = save, get, list
	h.mu.Unlock()
	t.Cleanup(func() {
		h.mu.Lock()
		h.saveFunc, h.getFunc, h.listFunc = nil, nil, nil
		h.mu.Unlock()
	})
}

func (h *countingHandler) Save(ctx context.Context, m models.Model) (models.Model, error) {
	h.mu.Lock()
	h.saves++
	saveFunc := h.saveFunc
	h.mu.Unlock()
	if saveFunc != nil {
		return saveFunc(m)
	}
	return h.store.Save(ctx, m)
}

func (h *countingHandler) Get(ctx context.Context, m models.Model) (models.Model, error) {
	h.mu.Lock()
	h.gets++
	getFunc := h.getFunc
	h.mu.Unlock()
	if getFunc != nil {
		return getFunc(m)
	}
	return h.store.Get(ctx, m)
}

func (h *countingHandler) Delete(ctx context.Context, m models.Model) error {
	h.mu.Lock()
	h.deletes++
	h.mu.Unlock()
	return h.store.Delete(ctx, m)
}

func (h *countingHandler) List(ctx context.Context, l models.ListModel) (models.ListModel, error) {
	h.mu.Lock()
	h.lists++
	listFunc := h.listFunc
	h.mu.Unlock()
	if listFunc != nil {
		return listFunc(l)
	}
	return h.store.List(ctx, l)
}

func (h *countingHandler) calls() (saves, gets, deletes, lists int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.saves, h.gets, h.deletes, h.lists
}

func modelType(t *testing.T, name string) *models.Type {
	t.Helper()
	mt, err := registry.NewDefault().Resolve(name)
	require.NoError(t, err)
	return mt
}

func hostRecord(addr, source string) *models.Host {
	h := models.NewHost()
	h.Address = addr
	h.Source = source
	return h
}

// handlerFor resolves the handler servicing model and unwraps it.
func handlerFor(t *testing.T, m *Manager, model models.Model) *countingHandler {
	t.Helper()
	h, err := m.GetHandler(model)
	require.NoError(t, err)
	ch, ok := h.(*countingHandler)
	require.True(t, ok, "unexpected handler %T", h)
	return ch
}
