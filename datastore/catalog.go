/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog maps configuration selectors (the "type" key of a handler entry)
// to handler types. It replaces loading handler implementations by name.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]HandlerType
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{types: make(map[string]HandlerType)}
}

// Add registers a handler type under a selector.
func (c *Catalog) Add(selector string, ht HandlerType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if selector == "" || ht == nil {
		return fmt.Errorf("catalog: selector and handler type are required")
	}
	if _, exists := c.types[selector]; exists {
		return fmt.Errorf("catalog: handler type %q already registered", selector)
	}
	c.types[selector] = ht
	return nil
}

// MustAdd is Add that panics on error. Intended for program setup.
func (c *Catalog) MustAdd(selector string, ht HandlerType) *Catalog {
	if err := c.Add(selector, ht); err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the handler type registered under selector.
func (c *Catalog) Lookup(selector string) (HandlerType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ht, ok := c.types[selector]
	return ht, ok
}

// Selectors returns the registered selectors in sorted order.
func (c *Catalog) Selectors() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.types))
	for s := range c.types {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
