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

package registry

import (
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/fundledger/chain"
	"github.com/blinklabs-io/fundledger/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	RegisterEventType event.EventType = "registry.registered"

	// DefaultMaxFunds is the default registry capacity ceiling
	DefaultMaxFunds = 1000
	// MaxNameLen bounds fund names and locations
	MaxNameLen = 50

	// DefaultCurrency is the currency recorded at registration until the
	// creator sets metadata
	DefaultCurrency = "STX"
)

// validCurrency reports whether the currency is one of the supported set
func validCurrency(currency string) bool {
	switch currency {
	case "STX", "BTC":
		return true
	default:
		return false
	}
}

// Entry mirrors a fund's directory metadata. The Active flag here is
// informational and independent from the engine's own fund status.
type Entry struct {
	Name           string
	Creator        string
	Location       string
	Currency       string
	Goal           uint64
	CreatedAtBlock uint64
	Active         bool
}

// RegisterEvent is the event bus payload published for each registration
type RegisterEvent struct {
	Name    string
	Creator string
	Id      uint64
	Goal    uint64
}

type Config struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Chain        chain.View
	// Authority is the principal allowed to lock the registry and adjust
	// its capacity ceiling. Fixed at construction.
	Authority string
	// MaxFunds overrides the default capacity ceiling when non-zero
	MaxFunds uint64
}

// Registry maintains the name-to-id uniqueness index and a metadata mirror
// for registered funds. Entries are never deleted.
type Registry struct {
	config  Config
	metrics struct {
		registeredTotal prometheus.Counter
	}
	logger   *slog.Logger
	eventBus *event.EventBus
	entries  map[uint64]Entry
	idByName map[string]uint64
	nextId   uint64
	maxFunds uint64
	locked   bool
	mu       sync.RWMutex
}

func New(config Config) *Registry {
	r := &Registry{
		config:   config,
		eventBus: config.EventBus,
		entries:  make(map[uint64]Entry),
		idByName: make(map[string]uint64),
		maxFunds: config.MaxFunds,
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		r.logger = config.Logger
	}
	if r.maxFunds == 0 {
		r.maxFunds = DefaultMaxFunds
	}
	promautoFactory := promauto.With(config.PromRegistry)
	r.metrics.registeredTotal = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "fundledger_registry_registered_total",
			Help: "total funds registered",
		},
	)
	return r
}

// Register records a new fund in the directory. Ids must arrive in strict
// sequence, and all checks run before any state is written.
func (r *Registry) Register(
	caller string,
	id uint64,
	name string,
	goal uint64,
	creator string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked {
		return ErrRegistryLocked
	}
	if id != r.nextId {
		return ErrNotAuthorized
	}
	if name == "" || len(name) > MaxNameLen {
		return ErrInvalidName
	}
	if goal == 0 {
		return ErrInvalidGoal
	}
	if creator != caller {
		return ErrInvalidCreator
	}
	if _, ok := r.idByName[name]; ok {
		return ErrFundAlreadyExists
	}
	if r.nextId >= r.maxFunds {
		return ErrMaxFundsExceeded
	}
	r.entries[id] = Entry{
		Name:           name,
		Goal:           goal,
		Creator:        creator,
		Location:       "",
		Currency:       DefaultCurrency,
		CreatedAtBlock: r.config.Chain.BlockHeight(),
		Active:         true,
	}
	r.idByName[name] = id
	r.nextId++
	r.logger.Debug(
		"registered fund",
		"component", "registry",
		"fund_id", id,
		"name", name,
	)
	r.metrics.registeredTotal.Inc()
	if r.eventBus != nil {
		r.eventBus.Publish(
			RegisterEventType,
			event.NewEvent(
				RegisterEventType,
				RegisterEvent{
					Id:      id,
					Name:    name,
					Goal:    goal,
					Creator: creator,
				},
			),
		)
	}
	return nil
}

// Rename moves a fund's name index entry, freeing the old name for reuse.
// Only the original creator may rename. Renaming to the fund's current name
// is a no-op.
func (r *Registry) Rename(caller string, id uint64, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return ErrFundNotFound
	}
	if entry.Creator != caller {
		return ErrNotAuthorized
	}
	if newName == "" || len(newName) > MaxNameLen {
		return ErrInvalidName
	}
	if existingId, ok := r.idByName[newName]; ok && existingId != id {
		return ErrFundAlreadyExists
	}
	delete(r.idByName, entry.Name)
	entry.Name = newName
	r.entries[id] = entry
	r.idByName[newName] = id
	r.logger.Debug(
		"renamed fund",
		"component", "registry",
		"fund_id", id,
		"name", newName,
	)
	return nil
}

// UpdateMetadata sets the location and currency mirrored for a fund. Only
// the original creator may update, and only while the entry is active.
func (r *Registry) UpdateMetadata(
	caller string,
	id uint64,
	location string,
	currency string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return ErrFundNotFound
	}
	if entry.Creator != caller {
		return ErrNotAuthorized
	}
	if !entry.Active {
		return ErrInvalidStatus
	}
	if location == "" || len(location) > MaxNameLen {
		return ErrInvalidLocation
	}
	if !validCurrency(currency) {
		return ErrInvalidCurrency
	}
	entry.Location = location
	entry.Currency = currency
	r.entries[id] = entry
	return nil
}

// Deactivate clears the mirrored active flag
func (r *Registry) Deactivate(caller string, id uint64) error {
	return r.setActive(caller, id, false)
}

// Reactivate restores the mirrored active flag
func (r *Registry) Reactivate(caller string, id uint64) error {
	return r.setActive(caller, id, true)
}

func (r *Registry) setActive(caller string, id uint64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return ErrFundNotFound
	}
	if entry.Creator != caller {
		return ErrNotAuthorized
	}
	if entry.Active == active {
		return ErrInvalidStatus
	}
	entry.Active = active
	r.entries[id] = entry
	r.logger.Debug(
		"toggled fund state",
		"component", "registry",
		"fund_id", id,
		"active", active,
	)
	return nil
}

// Lock permanently blocks further registrations. Authority only.
func (r *Registry) Lock(caller string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.config.Authority {
		return ErrNotAuthorized
	}
	r.locked = true
	return nil
}

// SetMaxFunds updates the capacity ceiling. The new ceiling must exceed the
// current registration count.
func (r *Registry) SetMaxFunds(caller string, newMax uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.config.Authority {
		return ErrNotAuthorized
	}
	if newMax <= r.nextId {
		return ErrInvalidGoal
	}
	r.maxFunds = newMax
	return nil
}

// GetFundById returns the mirrored entry for a fund id
func (r *Registry) GetFundById(id uint64) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	return entry, ok
}

// GetFundIdByName returns the id registered under a name
func (r *Registry) GetFundIdByName(name string) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByName[name]
	return id, ok
}

// GetFundName returns the name registered for a fund id
func (r *Registry) GetFundName(id uint64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return "", false
	}
	return entry.Name, true
}

// IsFundRegistered returns true if a name is registered
func (r *Registry) IsFundRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.idByName[name]
	return ok
}

// TotalFunds returns the number of registered funds
func (r *Registry) TotalFunds() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextId
}

// Locked returns true once the registry has been locked
func (r *Registry) Locked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked
}

// MaxFunds returns the current capacity ceiling
func (r *Registry) MaxFunds() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maxFunds
}
