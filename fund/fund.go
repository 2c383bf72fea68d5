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

package fund

import (
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/fundledger/auditlog"
	"github.com/blinklabs-io/fundledger/chain"
	"github.com/blinklabs-io/fundledger/event"
	"github.com/blinklabs-io/fundledger/tokens"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	CreateEventType       event.EventType = "fund.created"
	ContributionEventType event.EventType = "fund.contribution"
	UpdateEventType       event.EventType = "fund.updated"
	CloseEventType        event.EventType = "fund.closed"

	// DefaultMaxFunds is the default fund capacity ceiling
	DefaultMaxFunds = 500
	// DefaultCreationFee is the default fee transferred to the authority
	// when a fund is created
	DefaultCreationFee = 500
	// MaxNameLen bounds fund names and locations
	MaxNameLen = 50
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

// Fund is a single crowdfunding campaign record
type Fund struct {
	Name             string
	Creator          string
	Currency         string
	Location         string
	Id               uint64
	Goal             uint64
	Duration         uint64
	Threshold        uint64
	Balance          uint64
	TotalContributed uint64
	MinContribution  uint64
	MaxContribution  uint64
	RewardRate       uint64
	Penalty          uint64
	CreatedAtBlock   uint64
	Active           bool
}

// FundUpdate records the most recent amendment to a fund. It is overwritten
// on each amendment, not accumulated.
type FundUpdate struct {
	Name           string
	Updater        string
	Goal           uint64
	Duration       uint64
	UpdatedAtBlock uint64
}

// CreateParams carries the creation-time terms for a new fund
type CreateParams struct {
	Name            string
	Currency        string
	Location        string
	Goal            uint64
	Duration        uint64
	Threshold       uint64
	MinContribution uint64
	MaxContribution uint64
	RewardRate      uint64
	Penalty         uint64
}

// CreateEvent is the event bus payload published for each created fund
type CreateEvent struct {
	Fund Fund
}

// ContributionEvent is the event bus payload published for each contribution
type ContributionEvent struct {
	Contributor string
	FundId      uint64
	Amount      uint64
	Reward      uint64
	NewBalance  uint64
}

// UpdateEvent is the event bus payload published for each fund amendment
type UpdateEvent struct {
	Fund   Fund
	Update FundUpdate
}

// CloseEvent is the event bus payload published when a fund is closed
type CloseEvent struct {
	FundId uint64
}

// Registrar is the fund registry collaborator contract
type Registrar interface {
	Register(caller string, id uint64, name string, goal uint64, creator string) error
	Rename(caller string, id uint64, newName string) error
}

// AuditAppender is the audit logger collaborator contract
type AuditAppender interface {
	Append(caller string, sender string, eventType auditlog.EventKind, fundId int64, amount int64) (uint64, error)
}

type Config struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Chain        chain.View
	Registry     Registrar
	Audit        AuditAppender
	Tokens       tokens.Ledger
	// Identity is the engine's own principal. It is used as the privileged
	// caller when appending audit entries and as the account holding pooled
	// contributions.
	Identity string
	// MaxFunds overrides the default capacity ceiling when non-zero
	MaxFunds uint64
	// CreationFee overrides the default creation fee when non-zero
	CreationFee uint64
}

// Engine owns canonical fund records and enforces the fund lifecycle. Every
// public operation validates fully before mutating anything, so a failed
// call is always a no-op on the engine's own state.
type Engine struct {
	config  Config
	metrics struct {
		fundsCreated  prometheus.Counter
		contributions prometheus.Counter
		contributed   prometheus.Counter
		activeFunds   prometheus.Gauge
	}
	logger       *slog.Logger
	eventBus     *event.EventBus
	funds        map[uint64]Fund
	updates      map[uint64]FundUpdate
	idByName     map[string]uint64
	nextId       uint64
	maxFunds     uint64
	creationFee  uint64
	authority    string
	authoritySet bool
	sync.RWMutex
}

func NewEngine(config Config) *Engine {
	e := &Engine{
		config:      config,
		eventBus:    config.EventBus,
		funds:       make(map[uint64]Fund),
		updates:     make(map[uint64]FundUpdate),
		idByName:    make(map[string]uint64),
		maxFunds:    config.MaxFunds,
		creationFee: config.CreationFee,
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		e.logger = config.Logger
	}
	if e.maxFunds == 0 {
		e.maxFunds = DefaultMaxFunds
	}
	if e.creationFee == 0 {
		e.creationFee = DefaultCreationFee
	}
	promautoFactory := promauto.With(config.PromRegistry)
	e.metrics.fundsCreated = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "fundledger_funds_created_total",
			Help: "total funds created",
		},
	)
	e.metrics.contributions = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "fundledger_contributions_total",
			Help: "total accepted contributions",
		},
	)
	e.metrics.contributed = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "fundledger_contributed_amount_total",
			Help: "total amount contributed across all funds",
		},
	)
	e.metrics.activeFunds = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "fundledger_active_funds",
			Help: "current count of active funds",
		},
	)
	return e
}

// CreateFund validates the given terms, performs the creation-fee transfer
// and collaborator calls, and commits the new fund. The caller becomes the
// fund's creator. Returns the new fund id.
func (e *Engine) CreateFund(caller string, params CreateParams) (uint64, error) {
	e.Lock()
	defer e.Unlock()
	if e.nextId >= e.maxFunds {
		return 0, ErrMaxFundsExceeded
	}
	if params.Name == "" || len(params.Name) > MaxNameLen {
		return 0, ErrInvalidName
	}
	if params.Goal == 0 {
		return 0, ErrInvalidGoal
	}
	if params.Duration == 0 {
		return 0, ErrInvalidDuration
	}
	if params.Threshold == 0 || params.Threshold > 100 {
		return 0, ErrInvalidThreshold
	}
	if !validCurrency(params.Currency) {
		return 0, ErrInvalidCurrency
	}
	if params.Location == "" || len(params.Location) > MaxNameLen {
		return 0, ErrInvalidLocation
	}
	if params.MinContribution == 0 {
		return 0, ErrInvalidMinContribution
	}
	if params.MaxContribution == 0 {
		return 0, ErrInvalidMaxContribution
	}
	if params.RewardRate > 50 {
		return 0, ErrInvalidRewardRate
	}
	if params.Penalty > 20 {
		return 0, ErrInvalidPenalty
	}
	if _, ok := e.idByName[params.Name]; ok {
		return 0, ErrFundAlreadyExists
	}
	if !e.authoritySet {
		return 0, ErrAuthorityNotSet
	}
	// All engine validation has passed. Effects run before the engine
	// commits its own state; a failed effect aborts the operation with
	// prior effects compensated.
	id := e.nextId
	if err := e.config.Tokens.Transfer(caller, e.authority, e.creationFee); err != nil {
		return 0, &DependencyError{Dependency: "tokens", Err: err}
	}
	if err := e.config.Registry.Register(caller, id, params.Name, params.Goal, caller); err != nil {
		e.refund(e.authority, caller, e.creationFee)
		return 0, &DependencyError{Dependency: "registry", Err: err}
	}
	if _, err := e.config.Audit.Append(e.config.Identity, caller, auditlog.EventFundCreated, int64(id), 0); err != nil {
		e.refund(e.authority, caller, e.creationFee)
		return 0, &DependencyError{Dependency: "auditlog", Err: err}
	}
	newFund := Fund{
		Id:               id,
		Name:             params.Name,
		Goal:             params.Goal,
		Duration:         params.Duration,
		Threshold:        params.Threshold,
		Balance:          0,
		TotalContributed: 0,
		Creator:          caller,
		Currency:         params.Currency,
		Location:         params.Location,
		MinContribution:  params.MinContribution,
		MaxContribution:  params.MaxContribution,
		RewardRate:       params.RewardRate,
		Penalty:          params.Penalty,
		CreatedAtBlock:   e.config.Chain.BlockHeight(),
		Active:           true,
	}
	e.funds[id] = newFund
	e.idByName[params.Name] = id
	e.nextId++
	e.logger.Info(
		"created fund",
		"component", "fund",
		"fund_id", id,
		"name", params.Name,
		"creator", caller,
	)
	e.metrics.fundsCreated.Inc()
	e.metrics.activeFunds.Inc()
	if e.eventBus != nil {
		e.eventBus.Publish(
			CreateEventType,
			event.NewEvent(
				CreateEventType,
				CreateEvent{
					Fund: newFund,
				},
			),
		)
	}
	return id, nil
}

// Contribute adds tokens to a fund's pooled balance and mints the
// contributor's reward. Returns the fund's new balance.
func (e *Engine) Contribute(
	caller string,
	fundId uint64,
	amount uint64,
) (uint64, error) {
	e.Lock()
	defer e.Unlock()
	f, ok := e.funds[fundId]
	if !ok {
		return 0, ErrFundNotFound
	}
	if !f.Active {
		return 0, ErrInvalidStatus
	}
	if amount < f.MinContribution || amount > f.MaxContribution {
		return 0, ErrInvalidAmount
	}
	reward := amount * f.RewardRate / 100
	if err := e.config.Tokens.Transfer(caller, e.config.Identity, amount); err != nil {
		return 0, &DependencyError{Dependency: "tokens", Err: err}
	}
	if _, err := e.config.Audit.Append(e.config.Identity, caller, auditlog.EventContribution, int64(fundId), int64(amount)); err != nil {
		e.refund(e.config.Identity, caller, amount)
		return 0, &DependencyError{Dependency: "auditlog", Err: err}
	}
	if err := e.config.Tokens.Mint(caller, reward); err != nil {
		e.refund(e.config.Identity, caller, amount)
		return 0, &DependencyError{Dependency: "tokens", Err: err}
	}
	f.Balance += amount
	f.TotalContributed += amount
	e.funds[fundId] = f
	e.logger.Info(
		"accepted contribution",
		"component", "fund",
		"fund_id", fundId,
		"contributor", caller,
		"amount", amount,
		"reward", reward,
	)
	e.metrics.contributions.Inc()
	e.metrics.contributed.Add(float64(amount))
	if e.eventBus != nil {
		e.eventBus.Publish(
			ContributionEventType,
			event.NewEvent(
				ContributionEventType,
				ContributionEvent{
					FundId:      fundId,
					Contributor: caller,
					Amount:      amount,
					Reward:      reward,
					NewBalance:  f.Balance,
				},
			),
		)
	}
	return f.Balance, nil
}

// UpdateFund amends a fund's name, goal, and duration. Only the creator may
// amend, and the new name must not belong to a different fund. The previous
// amendment record is overwritten.
func (e *Engine) UpdateFund(
	caller string,
	fundId uint64,
	newName string,
	newGoal uint64,
	newDuration uint64,
) error {
	e.Lock()
	defer e.Unlock()
	f, ok := e.funds[fundId]
	if !ok {
		return ErrFundNotFound
	}
	if f.Creator != caller {
		return ErrNotAuthorized
	}
	if newName == "" || len(newName) > MaxNameLen {
		return ErrInvalidName
	}
	if newGoal == 0 {
		return ErrInvalidGoal
	}
	if newDuration == 0 {
		return ErrInvalidDuration
	}
	if existingId, ok := e.idByName[newName]; ok && existingId != fundId {
		return ErrFundAlreadyExists
	}
	// Propagate the rename to the registry's uniqueness index before
	// committing, so the two name indexes never diverge
	if newName != f.Name {
		if err := e.config.Registry.Rename(caller, fundId, newName); err != nil {
			return &DependencyError{Dependency: "registry", Err: err}
		}
	}
	height := e.config.Chain.BlockHeight()
	delete(e.idByName, f.Name)
	f.Name = newName
	f.Goal = newGoal
	f.Duration = newDuration
	f.CreatedAtBlock = height
	e.funds[fundId] = f
	e.idByName[newName] = fundId
	update := FundUpdate{
		Name:           newName,
		Goal:           newGoal,
		Duration:       newDuration,
		UpdatedAtBlock: height,
		Updater:        caller,
	}
	e.updates[fundId] = update
	e.logger.Info(
		"updated fund",
		"component", "fund",
		"fund_id", fundId,
		"name", newName,
	)
	if e.eventBus != nil {
		e.eventBus.Publish(
			UpdateEventType,
			event.NewEvent(
				UpdateEventType,
				UpdateEvent{
					Fund:   f,
					Update: update,
				},
			),
		)
	}
	return nil
}

// CloseFund transitions a fund from active to closed. The transition is
// one-way; there is no reopen path.
func (e *Engine) CloseFund(caller string, fundId uint64) error {
	e.Lock()
	defer e.Unlock()
	f, ok := e.funds[fundId]
	if !ok {
		return ErrFundNotFound
	}
	if f.Creator != caller {
		return ErrNotAuthorized
	}
	if !f.Active {
		return ErrInvalidStatus
	}
	f.Active = false
	e.funds[fundId] = f
	e.logger.Info(
		"closed fund",
		"component", "fund",
		"fund_id", fundId,
	)
	e.metrics.activeFunds.Dec()
	if e.eventBus != nil {
		e.eventBus.Publish(
			CloseEventType,
			event.NewEvent(
				CloseEventType,
				CloseEvent{
					FundId: fundId,
				},
			),
		)
	}
	return nil
}

// SetAuthority assigns the fee-collecting authority. The assignment is
// permanent and callers cannot assign themselves.
func (e *Engine) SetAuthority(caller string, authority string) error {
	e.Lock()
	defer e.Unlock()
	if authority == caller {
		return ErrNotAuthorized
	}
	if e.authoritySet {
		return ErrAuthorityAlreadySet
	}
	e.authority = authority
	e.authoritySet = true
	return nil
}

// SetMaxFunds updates the fund capacity ceiling. The new ceiling must
// exceed the current fund count.
func (e *Engine) SetMaxFunds(caller string, newMax uint64) error {
	e.Lock()
	defer e.Unlock()
	if newMax == 0 {
		return ErrInvalidUpdateParam
	}
	if !e.authoritySet {
		return ErrAuthorityNotSet
	}
	if newMax <= e.nextId {
		return ErrInvalidUpdateParam
	}
	e.maxFunds = newMax
	return nil
}

// SetCreationFee updates the fee charged on fund creation
func (e *Engine) SetCreationFee(caller string, newFee uint64) error {
	e.Lock()
	defer e.Unlock()
	if !e.authoritySet {
		return ErrAuthorityNotSet
	}
	e.creationFee = newFee
	return nil
}

// GetFund returns the fund record for an id
func (e *Engine) GetFund(fundId uint64) (Fund, bool) {
	e.RLock()
	defer e.RUnlock()
	f, ok := e.funds[fundId]
	return f, ok
}

// GetFundUpdate returns the most recent amendment record for a fund
func (e *Engine) GetFundUpdate(fundId uint64) (FundUpdate, bool) {
	e.RLock()
	defer e.RUnlock()
	u, ok := e.updates[fundId]
	return u, ok
}

// FundCount returns the number of funds created
func (e *Engine) FundCount() uint64 {
	e.RLock()
	defer e.RUnlock()
	return e.nextId
}

// Authority returns the configured authority, if set
func (e *Engine) Authority() (string, bool) {
	e.RLock()
	defer e.RUnlock()
	return e.authority, e.authoritySet
}

// MaxFunds returns the current fund capacity ceiling
func (e *Engine) MaxFunds() uint64 {
	e.RLock()
	defer e.RUnlock()
	return e.maxFunds
}

// CreationFee returns the current creation fee
func (e *Engine) CreationFee() uint64 {
	e.RLock()
	defer e.RUnlock()
	return e.creationFee
}

// refund is the best-effort compensation for an already-applied transfer
// when a later effect in the same operation fails
func (e *Engine) refund(from string, to string, amount uint64) {
	if err := e.config.Tokens.Transfer(from, to, amount); err != nil {
		e.logger.Error(
			"failed to refund transfer after aborted operation",
			"component", "fund",
			"from", from,
			"to", to,
			"amount", amount,
			"error", err,
		)
	}
}
