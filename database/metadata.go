// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blinklabs-io/fundledger/database/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// MetadataStore is the SQLite-backed mirror of fund, registry, and audit
// state. Uses an in-memory database when dataDir is empty.
type MetadataStore struct {
	db      *gorm.DB
	logger  *slog.Logger
	dataDir string
}

func NewMetadataStore(
	dataDir string,
	logger *slog.Logger,
) (*MetadataStore, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var metadataDb *gorm.DB
	var err error
	if dataDir == "" {
		// Use in-memory database when no data directory is specified, useful for testing
		// cache=shared allows multiple connections to share the same in-memory database
		metadataDb, err = gorm.Open(
			sqlite.Open("file::memory:?cache=shared"),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, fs.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		metadataDbPath := filepath.Join(
			dataDir,
			"metadata.sqlite",
		)
		// WAL journal mode, disable sync on write
		metadataConnOpts := "_pragma=journal_mode(WAL)&_pragma=sync(OFF)"
		metadataDb, err = gorm.Open(
			sqlite.Open(
				fmt.Sprintf("file:%s?%s", metadataDbPath, metadataConnOpts),
			),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	}
	m := &MetadataStore{
		db:      metadataDb,
		dataDir: dataDir,
		logger:  logger,
	}
	// Configure tracing for GORM
	if err := m.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	// Create table schemas
	for _, model := range models.MigrateModels {
		m.logger.Debug(fmt.Sprintf("creating table: %#v", model))
		if err := m.db.AutoMigrate(model); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// UpsertFund writes a fund mirror row, replacing any existing row for the id
func (m *MetadataStore) UpsertFund(f models.Fund) error {
	result := m.db.Save(&f)
	return result.Error
}

// GetFund returns the fund mirror row for an id
func (m *MetadataStore) GetFund(id uint64) (models.Fund, error) {
	var f models.Fund
	result := m.db.First(&f, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return f, models.ErrFundNotFound
		}
		return f, result.Error
	}
	return f, nil
}

// ListFunds returns all fund mirror rows ordered by id
func (m *MetadataStore) ListFunds() ([]models.Fund, error) {
	var funds []models.Fund
	result := m.db.Order("id").Find(&funds)
	return funds, result.Error
}

// UpsertFundUpdate writes a fund's latest amendment mirror row
func (m *MetadataStore) UpsertFundUpdate(u models.FundUpdate) error {
	result := m.db.Save(&u)
	return result.Error
}

// UpsertRegistryEntry writes a registry mirror row
func (m *MetadataStore) UpsertRegistryEntry(e models.RegistryEntry) error {
	result := m.db.Save(&e)
	return result.Error
}

// GetRegistryEntry returns the registry mirror row for a fund id
func (m *MetadataStore) GetRegistryEntry(
	fundId uint64,
) (models.RegistryEntry, error) {
	var e models.RegistryEntry
	result := m.db.First(&e, "fund_id = ?", fundId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return e, models.ErrFundNotFound
		}
		return e, result.Error
	}
	return e, nil
}

// AddAuditEvent inserts an audit event mirror row
func (m *MetadataStore) AddAuditEvent(evt models.AuditEvent) error {
	result := m.db.Create(&evt)
	return result.Error
}

// GetAuditEventsByFund returns audit event rows for a fund ordered by log id
func (m *MetadataStore) GetAuditEventsByFund(
	fundId uint64,
) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	result := m.db.Where("fund_id = ?", fundId).Order("id").Find(&events)
	return events, result.Error
}

// Close cleans up the database connection
func (m *MetadataStore) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
