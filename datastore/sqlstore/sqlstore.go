/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlstore provides a store handler keeping records in a SQL table
// through gorm. Each record is one row of the records table holding its JSON
// representation. SQLite is the supported dialect.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlog "gorm.io/gorm/logger"

	"github.com/suparena/commissaire/datastore"
	cerrors "github.com/suparena/commissaire/errors"
	"github.com/suparena/commissaire/models"
)

// DialectSQLite is the only supported dialect.
const DialectSQLite = "sqlite"

// Config is the decoded configuration of a SQL store handler.
type Config struct {
	Name    string `mapstructure:"name"`
	Dialect string `mapstructure:"dialect"`
	DSN     string `mapstructure:"dsn"`
	// LogSQL logs every statement at debug level.
	LogSQL bool `mapstructure:"log_sql"`
}

// ParseConfig decodes and checks cfg.
func ParseConfig(cfg datastore.Config) (Config, error) {
	var c Config
	if err := datastore.DecodeConfig(cfg, &c); err != nil {
		return c, err
	}
	if c.Dialect == "" {
		c.Dialect = DialectSQLite
	}
	if c.Dialect != DialectSQLite {
		return c, cerrors.NewConfigurationError(c.Name, fmt.Sprintf("unsupported dialect %q", c.Dialect))
	}
	if strings.TrimSpace(c.DSN) == "" {
		return c, cerrors.NewConfigurationError(c.Name, `"dsn" is required`)
	}
	return c, nil
}

// HandlerType creates SQL store handlers.
type HandlerType struct {
	Logger *zap.Logger
}

func (HandlerType) Name() string { return "sql" }

func (HandlerType) CheckConfig(cfg datastore.Config) error {
	_, err := ParseConfig(cfg)
	return err
}

func (ht HandlerType) New(cfg datastore.Config) (datastore.StoreHandler, error) {
	c, err := ParseConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger := ht.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := Open(c, logger)
	if err != nil {
		return nil, err
	}
	return NewStore(db, logger)
}

// Open connects to the configured database. gorm output goes to logger.
func Open(c Config, logger *zap.Logger) (*gorm.DB, error) {
	level := gormlog.Warn
	if c.LogSQL {
		level = gormlog.Info
	}
	gormLogger := gormlog.New(
		zap.NewStdLog(logger.With(zap.String("handler", c.Name))),
		gormlog.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)

	db, err := gorm.Open(sqlite.Open(c.DSN), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", c.Dialect, err)
	}
	return db, nil
}

// record is a row of the records table.
type record struct {
	ModelType string `gorm:"primaryKey;size:64"`
	ModelKey  string `gorm:"primaryKey;size:255"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (record) TableName() string { return "records" }

// Store is a store handler backed by a gorm database.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore migrates the records table and returns a Store using db.
func NewStore(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate records table: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}, nil
}

// Save inserts the record or replaces the stored version.
func (s *Store) Save(ctx context.Context, m models.Model) (models.Model, error) {
	if m.PrimaryKey() == "" {
		return nil, cerrors.NewModelValidationError(m.TypeName(), "", "record has no primary key")
	}
	data, err := models.Encode(m)
	if err != nil {
		return nil, err
	}

	row := record{ModelType: m.TypeName(), ModelKey: m.PrimaryKey(), Data: string(data)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "model_type"}, {Name: "model_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", models.Identity(m), err)
	}
	return models.Decode(m, data)
}

// Get returns the stored record.
func (s *Store) Get(ctx context.Context, m models.Model) (models.Model, error) {
	var row record
	err := s.db.WithContext(ctx).
		Where("model_type = ? AND model_key = ?", m.TypeName(), m.PrimaryKey()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cerrors.NewNotFoundError(m.TypeName(), m.PrimaryKey())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", models.Identity(m), err)
	}
	return models.Decode(m, []byte(row.Data))
}

// Delete removes the stored record.
func (s *Store) Delete(ctx context.Context, m models.Model) error {
	res := s.db.WithContext(ctx).
		Where("model_type = ? AND model_key = ?", m.TypeName(), m.PrimaryKey()).
		Delete(&record{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", models.Identity(m), res.Error)
	}
	if res.RowsAffected == 0 {
		return cerrors.NewNotFoundError(m.TypeName(), m.PrimaryKey())
	}
	return nil
}

// List returns every record of the element type ordered by key.
func (s *Store) List(ctx context.Context, l models.ListModel) (models.ListModel, error) {
	like := l.NewItem()

	var rows []record
	err := s.db.WithContext(ctx).
		Where("model_type = ?", like.TypeName()).
		Order("model_key").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", l.TypeName(), err)
	}

	items := make([]models.Model, 0, len(rows))
	for _, row := range rows {
		m, err := models.Decode(like, []byte(row.Data))
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
