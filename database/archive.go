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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/blinklabs-io/fundledger/auditlog"
	badger "github.com/dgraph-io/badger/v4"
)

var ErrArchiveEntryNotFound = errors.New("archive entry not found")

// EventArchive is the Badger-backed append-only archive of serialized audit
// entries, keyed by log id. Uses an in-memory store when dataDir is empty.
type EventArchive struct {
	db     *badger.DB
	logger *slog.Logger
}

func NewEventArchive(
	dataDir string,
	logger *slog.Logger,
) (*EventArchive, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var opts badger.Options
	if dataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(dataDir, "archive"))
	}
	// Badger logs through our slog logger
	opts = opts.WithLogger(newBadgerLogger(logger))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &EventArchive{
		db:     db,
		logger: logger,
	}, nil
}

func archiveKey(logId uint64) []byte {
	return fmt.Appendf(nil, "auditlog/%d", logId)
}

// Put archives an audit entry under its log id
func (a *EventArchive) Put(entry auditlog.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(archiveKey(entry.Id), payload)
	})
}

// Get returns the archived audit entry for a log id
func (a *EventArchive) Get(logId uint64) (auditlog.Entry, error) {
	var entry auditlog.Entry
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(archiveKey(logId))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrArchiveEntryNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	return entry, err
}

// Close cleans up the archive database
func (a *EventArchive) Close() error {
	return a.db.Close()
}

// badgerLogger adapts badger's logger interface to slog
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger) *badgerLogger {
	return &badgerLogger{
		logger: logger.With("component", "archive"),
	}
}

func (b *badgerLogger) Errorf(format string, args ...any) {
	b.logger.Error(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...any) {
	b.logger.Warn(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...any) {
	b.logger.Info(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}
