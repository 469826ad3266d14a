/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package vault provides a store handler keeping records as HashiCorp Vault
// KV secrets. It is meant for secret model types such as HostCreds.
//
// Each record is written to <mount>/<prefix>/<type>/<key> (KV version 1) or
// <mount>/data/<prefix>/<type>/<key> (KV version 2) with its full JSON
// representation, secure fields included, under the "record" field.
package vault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/suparena/commissaire/datastore"
	cerrors "github.com/suparena/commissaire/errors"
	"github.com/suparena/commissaire/models"
)

// Defaults for the mount and path prefix.
const (
	DefaultMount  = "secret"
	DefaultPrefix = "commissaire"
)

// Config is the decoded configuration of a Vault store handler.
type Config struct {
	Name      string        `mapstructure:"name"`
	Address   string        `mapstructure:"address"`
	Token     string        `mapstructure:"token"`
	Mount     string        `mapstructure:"mount"`
	Prefix    string        `mapstructure:"prefix"`
	KVVersion int           `mapstructure:"kv_version"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ParseConfig decodes and checks cfg. The address and token fall back to
// VAULT_ADDR and VAULT_TOKEN.
func ParseConfig(cfg datastore.Config) (Config, error) {
	var c Config
	if err := datastore.DecodeConfig(cfg, &c); err != nil {
		return c, err
	}
	if c.Address == "" {
		c.Address = os.Getenv(api.EnvVaultAddress)
	}
	if c.Token == "" {
		c.Token = os.Getenv(api.EnvVaultToken)
	}
	c.Mount = strings.Trim(c.Mount, "/")
	if c.Mount == "" {
		c.Mount = DefaultMount
	}
	c.Prefix = strings.Trim(c.Prefix, "/")
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.KVVersion == 0 {
		c.KVVersion = 1
	}

	if c.Address == "" {
		return c, cerrors.NewConfigurationError(c.Name, `"address" is required (or set VAULT_ADDR)`)
	}
	if u, err := url.Parse(c.Address); err != nil || u.Scheme == "" || u.Host == "" {
		return c, cerrors.NewConfigurationError(c.Name, fmt.Sprintf("invalid address %q", c.Address))
	}
	if c.KVVersion != 1 && c.KVVersion != 2 {
		return c, cerrors.NewConfigurationError(c.Name, fmt.Sprintf("kv_version must be 1 or 2, got %d", c.KVVersion))
	}
	return c, nil
}

// HandlerType creates Vault store handlers.
type HandlerType struct {
	Logger *zap.Logger
}

func (HandlerType) Name() string { return "vault" }

func (HandlerType) CheckConfig(cfg datastore.Config) error {
	_, err := ParseConfig(cfg)
	return err
}

func (ht HandlerType) New(cfg datastore.Config) (datastore.StoreHandler, error) {
	c, err := ParseConfig(cfg)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(c)
	if err != nil {
		return nil, err
	}
	return NewStore(client.Logical(), c, ht.Logger), nil
}

// NewClient creates a Vault API client for c.
func NewClient(c Config) (*api.Client, error) {
	vcfg := api.DefaultConfig()
	if vcfg.Error != nil {
		return nil, fmt.Errorf("failed to read vault environment: %w", vcfg.Error)
	}
	vcfg.Address = c.Address
	if c.Timeout > 0 {
		vcfg.Timeout = c.Timeout
	}

	client, err := api.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if c.Token != "" {
		client.SetToken(c.Token)
	}
	return client, nil
}

// Logical is the part of the Vault logical backend used by Store.
type Logical interface {
	ReadWithContext(ctx context.Context, path string) (*api.Secret, error)
	WriteWithContext(ctx context.Context, path string, data map[string]interface{}) (*api.Secret, error)
	DeleteWithContext(ctx context.Context, path string) (*api.Secret, error)
	ListWithContext(ctx context.Context, path string) (*api.Secret, error)
}

// Store is a store handler backed by a Vault KV mount.
type Store struct {
	logical Logical
	cfg     Config
	logger  *zap.Logger
}

// NewStore returns a Store using logical. cfg is expected to have passed ParseConfig.
func NewStore(logical Logical, cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logical: logical, cfg: cfg, logger: logger}
}

func (s *Store) relPath(typeName, key string) string {
	p := path.Join(s.cfg.Prefix, typeName)
	if key != "" {
		p = path.Join(p, url.PathEscape(key))
	}
	return p
}

func (s *Store) dataPath(typeName, key string) string {
	if s.cfg.KVVersion == 2 {
		return path.Join(s.cfg.Mount, "data", s.relPath(typeName, key))
	}
	return path.Join(s.cfg.Mount, s.relPath(typeName, key))
}

func (s *Store) metadataPath(typeName, key string) string {
	if s.cfg.KVVersion == 2 {
		return path.Join(s.cfg.Mount, "metadata", s.relPath(typeName, key))
	}
	return path.Join(s.cfg.Mount, s.relPath(typeName, key))
}

// Save writes the record, replacing any stored version.
func (s *Store) Save(ctx context.Context, m models.Model) (models.Model, error) {
	if m.PrimaryKey() == "" {
		return nil, cerrors.NewModelValidationError(m.TypeName(), "", "record has no primary key")
	}
	data, err := models.Encode(m)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"entity_type": m.TypeName(),
		"record":      string(data),
	}
	payload := fields
	if s.cfg.KVVersion == 2 {
		payload = map[string]interface{}{"data": fields}
	}

	if _, err := s.logical.WriteWithContext(ctx, s.dataPath(m.TypeName(), m.PrimaryKey()), payload); err != nil {
		return nil, fmt.Errorf("failed to write %s to vault: %w", models.Identity(m), err)
	}
	return models.Decode(m, data)
}

// Get reads the stored record.
func (s *Store) Get(ctx context.Context, m models.Model) (models.Model, error) {
	data, err := s.read(ctx, m.TypeName(), m.PrimaryKey())
	if err != nil {
		return nil, err
	}
	return models.Decode(m, data)
}

func (s *Store) read(ctx context.Context, typeName, key string) ([]byte, error) {
	secret, err := s.logical.ReadWithContext(ctx, s.dataPath(typeName, key))
	if err != nil {
		if isNotFound(err) {
			return nil, cerrors.NewNotFoundError(typeName, key)
		}
		return nil, fmt.Errorf("failed to read %s(%s) from vault: %w", typeName, key, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, cerrors.NewNotFoundError(typeName, key)
	}

	fields := secret.Data
	if s.cfg.KVVersion == 2 {
		// A deleted version reads back with nil data.
		inner, ok := secret.Data["data"].(map[string]interface{})
		if !ok {
			return nil, cerrors.NewNotFoundError(typeName, key)
		}
		fields = inner
	}

	record, ok := fields["record"].(string)
	if !ok {
		return nil, fmt.Errorf("vault secret for %s(%s) has no record field", typeName, key)
	}
	return []byte(record), nil
}

// Delete removes the stored record and, on KV version 2, all of its versions.
// Vault does not report deletes of missing paths, so the record is read first.
func (s *Store) Delete(ctx context.Context, m models.Model) error {
	if _, err := s.read(ctx, m.TypeName(), m.PrimaryKey()); err != nil {
		return err
	}
	if _, err := s.logical.DeleteWithContext(ctx, s.metadataPath(m.TypeName(), m.PrimaryKey())); err != nil {
		if isNotFound(err) {
			return cerrors.NewNotFoundError(m.TypeName(), m.PrimaryKey())
		}
		return fmt.Errorf("failed to delete %s from vault: %w", models.Identity(m), err)
	}
	return nil
}

// List reads every record stored under the element type, ordered by key.
func (s *Store) List(ctx context.Context, l models.ListModel) (models.ListModel, error) {
	like := l.NewItem()
	typeName := like.TypeName()

	secret, err := s.logical.ListWithContext(ctx, s.metadataPath(typeName, ""))
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to list %s in vault: %w", l.TypeName(), err)
	}

	var names []string
	if secret != nil {
		raw, _ := secret.Data["keys"].([]interface{})
		for _, k := range raw {
			name, ok := k.(string)
			if !ok || strings.HasSuffix(name, "/") {
				continue
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)

	items := make([]models.Model, 0, len(names))
	for _, name := range names {
		key, err := url.PathUnescape(name)
		if err != nil {
			key = name
		}
		data, err := s.read(ctx, typeName, key)
		if cerrors.IsNotFound(err) {
			// Removed between list and read.
			continue
		}
		if err != nil {
			return nil, err
		}
		m, err := models.Decode(like, data)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	s.logger.Debug("listed records", zap.String("model", l.TypeName()), zap.Int("count", len(items)))

	if err := l.SetItems(items); err != nil {
		return nil, err
	}
	return l, nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *api.ResponseError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return strings.Contains(err.Error(), "no secret found")
}
