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

package auditlog

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
	AppendEventType event.EventType = "auditlog.appended"

	// DefaultMaxLogs is the default global entry ceiling
	DefaultMaxLogs = 10000
	// MaxLogsPerIndex caps the per-fund and per-sender index lists
	MaxLogsPerIndex = 1000
)

// EventKind identifies the ledger activity an audit entry records
type EventKind string

const (
	EventFundCreated       EventKind = "fund-created"
	EventContribution      EventKind = "contribution"
	EventProposalSubmitted EventKind = "proposal-submitted"
	EventVoteCast          EventKind = "vote-cast"
	EventDisbursement      EventKind = "disbursement"
	EventFundUpdated       EventKind = "fund-updated"
	EventFundClosed        EventKind = "fund-closed"
)

// Valid returns true if the EventKind is one of the whitelisted kinds
func (k EventKind) Valid() bool {
	switch k {
	case EventFundCreated, EventContribution, EventProposalSubmitted,
		EventVoteCast, EventDisbursement, EventFundUpdated, EventFundClosed:
		return true
	default:
		return false
	}
}

// Entry is a single immutable audit record
type Entry struct {
	EventType   EventKind
	Sender      string
	TxId        string
	Id          uint64
	FundId      uint64
	Amount      uint64
	BlockHeight uint64
}

// AppendEvent is the event bus payload published for each appended entry
type AppendEvent struct {
	Entry Entry
}

type Config struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Chain        chain.View
	// Authority is the principal allowed to append and reconfigure.
	// It can be reassigned later by the current authority.
	Authority string
	// SystemCaller is the privileged in-process caller (the fund engine)
	// that may append without holding the authority role
	SystemCaller string
	// MaxLogs overrides the default global entry ceiling when non-zero
	MaxLogs uint64
}

// AuditLog is an append-only event recorder with per-fund and per-sender
// secondary indexes. Entries are immutable once written and log ids are
// dense and strictly increasing.
type AuditLog struct {
	config  Config
	metrics struct {
		entriesTotal prometheus.Counter
	}
	logger       *slog.Logger
	eventBus     *event.EventBus
	entries      []Entry
	logsByFund   map[uint64][]uint64
	logsBySender map[string][]uint64
	authority    string
	maxLogs      uint64
	sync.RWMutex
}

func New(config Config) *AuditLog {
	a := &AuditLog{
		config:       config,
		eventBus:     config.EventBus,
		authority:    config.Authority,
		maxLogs:      config.MaxLogs,
		logsByFund:   make(map[uint64][]uint64),
		logsBySender: make(map[string][]uint64),
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		a.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		a.logger = config.Logger
	}
	if a.maxLogs == 0 {
		a.maxLogs = DefaultMaxLogs
	}
	promautoFactory := promauto.With(config.PromRegistry)
	a.metrics.entriesTotal = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "fundledger_auditlog_entries_total",
			Help: "total audit log entries appended",
		},
	)
	return a
}

// Append records a new audit entry and returns its log id. All checks run
// before any state is written, so a failed append leaves the log untouched.
func (a *AuditLog) Append(
	caller string,
	sender string,
	eventType EventKind,
	fundId int64,
	amount int64,
) (uint64, error) {
	a.Lock()
	defer a.Unlock()
	if caller != a.authority && caller != a.config.SystemCaller {
		return 0, ErrNotAuthorized
	}
	if uint64(len(a.entries)) >= a.maxLogs {
		return 0, ErrMaxLogsExceeded
	}
	if !eventType.Valid() {
		return 0, ErrInvalidEvent
	}
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	if fundId < 0 {
		return 0, ErrInvalidFundId
	}
	if sender == caller {
		return 0, ErrInvalidPrincipal
	}
	// Check both index ceilings before writing anything so a rejected
	// append never leaves a partially-indexed entry behind
	if len(a.logsByFund[uint64(fundId)]) >= MaxLogsPerIndex {
		return 0, ErrMaxLogsExceeded
	}
	if len(a.logsBySender[sender]) >= MaxLogsPerIndex {
		return 0, ErrMaxLogsExceeded
	}
	logId := uint64(len(a.entries))
	entry := Entry{
		Id:          logId,
		EventType:   eventType,
		FundId:      uint64(fundId),
		Sender:      sender,
		Amount:      uint64(amount),
		BlockHeight: a.config.Chain.BlockHeight(),
		TxId:        a.config.Chain.TxId(),
	}
	a.entries = append(a.entries, entry)
	a.logsByFund[entry.FundId] = append(a.logsByFund[entry.FundId], logId)
	a.logsBySender[sender] = append(a.logsBySender[sender], logId)
	a.logger.Debug(
		"appended audit entry",
		"component", "auditlog",
		"log_id", logId,
		"event_type", string(eventType),
		"fund_id", entry.FundId,
		"sender", sender,
	)
	a.metrics.entriesTotal.Inc()
	if a.eventBus != nil {
		a.eventBus.Publish(
			AppendEventType,
			event.NewEvent(
				AppendEventType,
				AppendEvent{
					Entry: entry,
				},
			),
		)
	}
	return logId, nil
}

// SetAuthority transfers the logging authority to a new principal. Only the
// current authority may do this.
func (a *AuditLog) SetAuthority(caller string, newAuthority string) error {
	a.Lock()
	defer a.Unlock()
	if caller != a.authority {
		return ErrNotAuthorized
	}
	a.authority = newAuthority
	return nil
}

// SetMaxLogs updates the global entry ceiling. The new ceiling must exceed
// the current entry count.
func (a *AuditLog) SetMaxLogs(caller string, newMax uint64) error {
	a.Lock()
	defer a.Unlock()
	if caller != a.authority {
		return ErrNotAuthorized
	}
	if newMax <= uint64(len(a.entries)) {
		return ErrInvalidAmount
	}
	a.maxLogs = newMax
	return nil
}

// GetLog returns the entry for a log id
func (a *AuditLog) GetLog(logId uint64) (Entry, bool) {
	a.RLock()
	defer a.RUnlock()
	if logId >= uint64(len(a.entries)) {
		return Entry{}, false
	}
	return a.entries[logId], true
}

// LogsByFund returns a page of log ids recorded for a fund, in insertion order
func (a *AuditLog) LogsByFund(fundId uint64, offset int, limit int) []uint64 {
	a.RLock()
	defer a.RUnlock()
	return pageIds(a.logsByFund[fundId], offset, limit)
}

// LogsBySender returns a page of log ids recorded for a sender, in insertion order
func (a *AuditLog) LogsBySender(
	sender string,
	offset int,
	limit int,
) []uint64 {
	a.RLock()
	defer a.RUnlock()
	return pageIds(a.logsBySender[sender], offset, limit)
}

func pageIds(ids []uint64, offset int, limit int) []uint64 {
	if offset < 0 || limit <= 0 || offset >= len(ids) {
		return nil
	}
	end := min(offset+limit, len(ids))
	ret := make([]uint64, end-offset)
	copy(ret, ids[offset:end])
	return ret
}

// TotalLogs returns the total number of entries appended
func (a *AuditLog) TotalLogs() uint64 {
	a.RLock()
	defer a.RUnlock()
	return uint64(len(a.entries))
}

// Authority returns the current logging authority
func (a *AuditLog) Authority() string {
	a.RLock()
	defer a.RUnlock()
	return a.authority
}

// MaxLogs returns the current global entry ceiling
func (a *AuditLog) MaxLogs() uint64 {
	a.RLock()
	defer a.RUnlock()
	return a.maxLogs
}

// LogCountByFund returns the number of entries indexed for a fund
func (a *AuditLog) LogCountByFund(fundId uint64) int {
	a.RLock()
	defer a.RUnlock()
	return len(a.logsByFund[fundId])
}

// LogCountBySender returns the number of entries indexed for a sender
func (a *AuditLog) LogCountBySender(sender string) int {
	a.RLock()
	defer a.RUnlock()
	return len(a.logsBySender[sender])
}
