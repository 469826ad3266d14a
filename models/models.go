/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/suparena/commissaire/errors"
)

// Model is a typed commissaire record.
type Model interface {
	// TypeName returns the canonical model type name, e.g. "Host".
	TypeName() string
	// PrimaryKey returns the value that identifies the record within its type.
	// List models return an empty string.
	PrimaryKey() string
	// Validate checks field constraints and returns an errors.ValidationError on failure.
	Validate() error
}

// ListModel is a record that carries a collection of another model type.
// It doubles as the query a store handler receives for a list operation.
type ListModel interface {
	Model
	// NewItem returns an empty record of the element type.
	NewItem() Model
	Items() []Model
	SetItems(items []Model) error
}

// SecureFielder is implemented by models holding credential material in some fields.
// Those fields are left out of representations unless secure output is requested.
type SecureFielder interface {
	SecureFields() []string
}

// Type describes a model type.
type Type struct {
	// Name is the canonical type name.
	Name string
	// Secret marks types holding credential material. Wildcard handler
	// patterns never match them.
	Secret bool
	// Required lists the representation fields a constructor input must carry.
	Required []string
	// New returns a record with defaults applied.
	New func() Model
}

// IsList reports whether records of this type are list models.
func (t *Type) IsList() bool {
	_, ok := t.New().(ListModel)
	return ok
}

// Build constructs a record from a field mapping, applying defaults for omitted
// optional fields. Missing required fields, unknown fields and mistyped values
// yield an errors.MalformedError. Build does not validate the record.
func (t *Type) Build(fields map[string]any) (Model, error) {
	var missing []string
	for _, name := range t.Required {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errors.NewMalformedError(t.Name, fmt.Sprintf("missing required fields %q", missing))
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.NewMalformedError(t.Name, err.Error())
	}
	return t.decodeStrict(raw)
}

// BuildJSON constructs a record from a JSON object.
func (t *Type) BuildJSON(data []byte) (Model, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.NewMalformedError(t.Name, fmt.Sprintf("invalid JSON object: %v", err))
	}
	return t.Build(fields)
}

func (t *Type) decodeStrict(raw []byte) (Model, error) {
	m := t.New()
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(m); err != nil {
		return nil, errors.NewMalformedError(t.Name, err.Error())
	}
	return m, nil
}

// Empty returns a zero-valued record of the same concrete type as m.
// Store handlers use it as the target when decoding stored data.
func Empty(m Model) Model {
	rt := reflect.TypeOf(m)
	if rt.Kind() == reflect.Ptr {
		return reflect.New(rt.Elem()).Interface().(Model)
	}
	return reflect.New(rt).Elem().Interface().(Model)
}

// Encode serializes a record, secure fields included. Store handlers persist this form.
func Encode(m Model) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.TypeName(), err)
	}
	return data, nil
}

// Decode returns a new record of the same type as like, populated from data.
func Decode(like Model, data []byte) (Model, error) {
	m := Empty(like)
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", like.TypeName(), err)
	}
	return m, nil
}

// ToMap returns the field mapping representation of a record. Secure fields
// are dropped unless secure is true.
func ToMap(m Model, secure bool) (map[string]any, error) {
	data, err := Encode(m)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to build %s representation: %w", m.TypeName(), err)
	}
	if sf, ok := m.(SecureFielder); ok && !secure {
		for _, f := range sf.SecureFields() {
			delete(out, f)
		}
	}
	return out, nil
}

// Identity returns a short "Type(key)" string for logging.
func Identity(m Model) string {
	if key := m.PrimaryKey(); key != "" {
		return fmt.Sprintf("%s(%s)", m.TypeName(), key)
	}
	return m.TypeName()
}
