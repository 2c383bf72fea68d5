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
	"io"
	"log/slog"
)

// Database combines the SQLite metadata mirror and the Badger event archive
type Database struct {
	logger   *slog.Logger
	metadata *MetadataStore
	archive  *EventArchive
	dataDir  string
}

// New creates a new database instance with optional persistence using the provided data directory
func New(
	logger *slog.Logger,
	dataDir string,
) (*Database, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	metadataDb, err := NewMetadataStore(dataDir, logger)
	if err != nil {
		return nil, err
	}
	archiveDb, err := NewEventArchive(dataDir, logger)
	if err != nil {
		return nil, err
	}
	return &Database{
		logger:   logger,
		metadata: metadataDb,
		archive:  archiveDb,
		dataDir:  dataDir,
	}, nil
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() *MetadataStore {
	return d.metadata
}

// Archive returns the underlying event archive instance
func (d *Database) Archive() *EventArchive {
	return d.archive
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	metadataErr := d.metadata.Close()
	err = errors.Join(err, metadataErr)
	archiveErr := d.archive.Close()
	err = errors.Join(err, archiveErr)
	return err
}
