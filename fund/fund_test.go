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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package fund_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/blinklabs-io/fundledger/auditlog"
	"github.com/blinklabs-io/fundledger/chain"
	"github.com/blinklabs-io/fundledger/fund"
	"github.com/blinklabs-io/fundledger/registry"
	"github.com/blinklabs-io/fundledger/tokens"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAuthority = "authority"
	testIdentity  = "system"
	testCreator   = "alice"
)

type testHarness struct {
	engine   *fund.Engine
	registry *registry.Registry
	audit    *auditlog.AuditLog
	accounts *tokens.AccountBook
	tip      *chain.Tip
}

// failingAudit rejects every append
type failingAudit struct{}

func (failingAudit) Append(
	caller string,
	sender string,
	eventType auditlog.EventKind,
	fundId int64,
	amount int64,
) (uint64, error) {
	return 0, auditlog.ErrMaxLogsExceeded
}

// failingRegistry rejects every registration
type failingRegistry struct{}

func (failingRegistry) Register(
	caller string,
	id uint64,
	name string,
	goal uint64,
	creator string,
) error {
	return registry.ErrRegistryLocked
}

func (failingRegistry) Rename(
	caller string,
	id uint64,
	newName string,
) error {
	return registry.ErrRegistryLocked
}

// renameFailingRegistry accepts registrations but rejects renames
type renameFailingRegistry struct {
	fund.Registrar
}

func (renameFailingRegistry) Rename(
	caller string,
	id uint64,
	newName string,
) error {
	return registry.ErrRegistryLocked
}

func newTestHarness(t *testing.T, opts ...func(*fund.Config)) *testHarness {
	t.Helper()
	promRegistry := prometheus.NewRegistry()
	tip := chain.NewTip(10)
	accounts := tokens.NewAccountBook(nil)
	fundRegistry := registry.New(registry.Config{
		PromRegistry: promRegistry,
		Chain:        tip,
		Authority:    testAuthority,
	})
	audit := auditlog.New(auditlog.Config{
		PromRegistry: prometheus.NewRegistry(),
		Chain:        tip,
		Authority:    testAuthority,
		SystemCaller: testIdentity,
	})
	cfg := fund.Config{
		PromRegistry: prometheus.NewRegistry(),
		Chain:        tip,
		Registry:     fundRegistry,
		Audit:        audit,
		Tokens:       accounts,
		Identity:     testIdentity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	engine := fund.NewEngine(cfg)
	require.NoError(t, engine.SetAuthority(testIdentity, testAuthority))
	// Seed the creator with enough for fees and contributions
	accounts.Credit(testCreator, 100_000)
	return &testHarness{
		engine:   engine,
		registry: fundRegistry,
		audit:    audit,
		accounts: accounts,
		tip:      tip,
	}
}

func validCreateParams() fund.CreateParams {
	return fund.CreateParams{
		Name:            "community-garden",
		Goal:            10_000,
		Duration:        144,
		Threshold:       60,
		Currency:        "STX",
		Location:        "portland",
		MinContribution: 10,
		MaxContribution: 5_000,
		RewardRate:      10,
		Penalty:         5,
	}
}

func TestCreateFund(t *testing.T) {
	h := newTestHarness(t)
	params := validCreateParams()

	id, err := h.engine.CreateFund(testCreator, params)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	f, ok := h.engine.GetFund(id)
	require.True(t, ok)
	assert.Equal(t, params.Name, f.Name)
	assert.Equal(t, testCreator, f.Creator)
	assert.Equal(t, params.Goal, f.Goal)
	assert.Equal(t, params.Duration, f.Duration)
	assert.Equal(t, params.Threshold, f.Threshold)
	assert.Equal(t, params.Currency, f.Currency)
	assert.Equal(t, params.Location, f.Location)
	assert.Equal(t, uint64(0), f.Balance)
	assert.Equal(t, uint64(0), f.TotalContributed)
	assert.Equal(t, uint64(10), f.CreatedAtBlock)
	assert.True(t, f.Active)

	// Creation fee moved from the creator to the authority
	assert.Equal(
		t,
		uint64(fund.DefaultCreationFee),
		h.accounts.Balance(testAuthority),
	)
	assert.Equal(
		t,
		uint64(100_000-fund.DefaultCreationFee),
		h.accounts.Balance(testCreator),
	)

	// Registry holds the mirrored entry
	entry, ok := h.registry.GetFundById(id)
	require.True(t, ok)
	assert.Equal(t, params.Name, entry.Name)
	assert.Equal(t, testCreator, entry.Creator)

	// Audit log recorded the creation
	require.Equal(t, uint64(1), h.audit.TotalLogs())
	logEntry, ok := h.audit.GetLog(0)
	require.True(t, ok)
	assert.Equal(t, auditlog.EventFundCreated, logEntry.EventType)
	assert.Equal(t, testCreator, logEntry.Sender)
	assert.Equal(t, id, logEntry.FundId)
}

func TestCreateFundValidation(t *testing.T) {
	testDefs := []struct {
		name        string
		mutate      func(*fund.CreateParams)
		expectedErr error
	}{
		{
			name:        "empty name",
			mutate:      func(p *fund.CreateParams) { p.Name = "" },
			expectedErr: fund.ErrInvalidName,
		},
		{
			name: "name too long",
			mutate: func(p *fund.CreateParams) {
				p.Name = strings.Repeat("x", fund.MaxNameLen+1)
			},
			expectedErr: fund.ErrInvalidName,
		},
		{
			name:        "zero goal",
			mutate:      func(p *fund.CreateParams) { p.Goal = 0 },
			expectedErr: fund.ErrInvalidGoal,
		},
		{
			name:        "zero duration",
			mutate:      func(p *fund.CreateParams) { p.Duration = 0 },
			expectedErr: fund.ErrInvalidDuration,
		},
		{
			name:        "zero threshold",
			mutate:      func(p *fund.CreateParams) { p.Threshold = 0 },
			expectedErr: fund.ErrInvalidThreshold,
		},
		{
			name:        "threshold over 100",
			mutate:      func(p *fund.CreateParams) { p.Threshold = 101 },
			expectedErr: fund.ErrInvalidThreshold,
		},
		{
			name:        "unsupported currency",
			mutate:      func(p *fund.CreateParams) { p.Currency = "DOGE" },
			expectedErr: fund.ErrInvalidCurrency,
		},
		{
			name:        "empty location",
			mutate:      func(p *fund.CreateParams) { p.Location = "" },
			expectedErr: fund.ErrInvalidLocation,
		},
		{
			name:        "zero min contribution",
			mutate:      func(p *fund.CreateParams) { p.MinContribution = 0 },
			expectedErr: fund.ErrInvalidMinContribution,
		},
		{
			name:        "zero max contribution",
			mutate:      func(p *fund.CreateParams) { p.MaxContribution = 0 },
			expectedErr: fund.ErrInvalidMaxContribution,
		},
		{
			name:        "reward rate over 50",
			mutate:      func(p *fund.CreateParams) { p.RewardRate = 51 },
			expectedErr: fund.ErrInvalidRewardRate,
		},
		{
			name:        "penalty over 20",
			mutate:      func(p *fund.CreateParams) { p.Penalty = 21 },
			expectedErr: fund.ErrInvalidPenalty,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			h := newTestHarness(t)
			params := validCreateParams()
			testDef.mutate(&params)
			_, err := h.engine.CreateFund(testCreator, params)
			assert.ErrorIs(t, err, testDef.expectedErr)
			// Rejected creation leaves no trace
			assert.Equal(t, uint64(0), h.engine.FundCount())
			assert.Equal(t, uint64(100_000), h.accounts.Balance(testCreator))
		})
	}
}

func TestCreateFundDuplicateName(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)
	_, err = h.engine.CreateFund(testCreator, validCreateParams())
	assert.ErrorIs(t, err, fund.ErrFundAlreadyExists)
	assert.Equal(t, uint64(1), h.engine.FundCount())
}

func TestCreateFundAuthorityNotSet(t *testing.T) {
	promRegistry := prometheus.NewRegistry()
	tip := chain.NewTip(0)
	accounts := tokens.NewAccountBook(nil)
	engine := fund.NewEngine(fund.Config{
		PromRegistry: promRegistry,
		Chain:        tip,
		Registry:     failingRegistry{},
		Audit:        failingAudit{},
		Tokens:       accounts,
		Identity:     testIdentity,
	})
	_, err := engine.CreateFund(testCreator, validCreateParams())
	assert.ErrorIs(t, err, fund.ErrAuthorityNotSet)
}

func TestCreateFundMaxFundsExceeded(t *testing.T) {
	h := newTestHarness(t, func(c *fund.Config) {
		c.MaxFunds = 1
	})
	_, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)
	params := validCreateParams()
	params.Name = "second-fund"
	_, err = h.engine.CreateFund(testCreator, params)
	assert.ErrorIs(t, err, fund.ErrMaxFundsExceeded)
}

func TestCreateFundInsufficientFee(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.engine.CreateFund("pauper", validCreateParams())
	var depErr *fund.DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "tokens", depErr.Dependency)
	var insufficientErr *tokens.InsufficientFundsError
	assert.ErrorAs(t, err, &insufficientErr)
	// Nothing was committed
	assert.Equal(t, uint64(0), h.engine.FundCount())
	assert.Equal(t, uint64(0), h.registry.TotalFunds())
	assert.Equal(t, uint64(0), h.audit.TotalLogs())
}

func TestCreateFundRegistryFailureRefundsFee(t *testing.T) {
	h := newTestHarness(t, func(c *fund.Config) {
		c.Registry = failingRegistry{}
	})
	_, err := h.engine.CreateFund(testCreator, validCreateParams())
	var depErr *fund.DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "registry", depErr.Dependency)
	assert.ErrorIs(t, err, registry.ErrRegistryLocked)
	// Fee was refunded and no fund was committed
	assert.Equal(t, uint64(100_000), h.accounts.Balance(testCreator))
	assert.Equal(t, uint64(0), h.accounts.Balance(testAuthority))
	assert.Equal(t, uint64(0), h.engine.FundCount())
}

func TestCreateFundAuditFailureRefundsFee(t *testing.T) {
	h := newTestHarness(t, func(c *fund.Config) {
		c.Audit = failingAudit{}
	})
	_, err := h.engine.CreateFund(testCreator, validCreateParams())
	var depErr *fund.DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "auditlog", depErr.Dependency)
	assert.Equal(t, uint64(100_000), h.accounts.Balance(testCreator))
	assert.Equal(t, uint64(0), h.engine.FundCount())
}

func TestContribute(t *testing.T) {
	h := newTestHarness(t)
	id, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)

	h.accounts.Credit("bob", 1_000)
	balance, err := h.engine.Contribute("bob", id, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), balance)

	f, ok := h.engine.GetFund(id)
	require.True(t, ok)
	assert.Equal(t, uint64(500), f.Balance)
	assert.Equal(t, uint64(500), f.TotalContributed)

	// Contribution moved to the pooled account, reward minted on top.
	// 500 at a 10 percent reward rate mints 50.
	assert.Equal(t, uint64(500), h.accounts.Balance(testIdentity))
	assert.Equal(t, uint64(550), h.accounts.Balance("bob"))
	assert.Equal(t, uint64(50), h.accounts.TotalMinted())

	// Contribution recorded in the audit log
	logIds := h.audit.LogsBySender("bob", 0, 10)
	require.Len(t, logIds, 1)
	logEntry, ok := h.audit.GetLog(logIds[0])
	require.True(t, ok)
	assert.Equal(t, auditlog.EventContribution, logEntry.EventType)
	assert.Equal(t, uint64(500), logEntry.Amount)
}

func TestContributeRewardRoundsDown(t *testing.T) {
	h := newTestHarness(t)
	id, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)
	h.accounts.Credit("bob", 1_000)
	// 15 at 10 percent rounds down to 1
	_, err = h.engine.Contribute("bob", id, 15)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000-15+1), h.accounts.Balance("bob"))
}

func TestContributeValidation(t *testing.T) {
	h := newTestHarness(t)
	id, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)
	h.accounts.Credit("bob", 100_000)

	_, err = h.engine.Contribute("bob", 42, 500)
	assert.ErrorIs(t, err, fund.ErrFundNotFound)

	// Below the fund's minimum
	_, err = h.engine.Contribute("bob", id, 9)
	assert.ErrorIs(t, err, fund.ErrInvalidAmount)

	// Above the fund's maximum
	_, err = h.engine.Contribute("bob", id, 5_001)
	assert.ErrorIs(t, err, fund.ErrInvalidAmount)

	// Closed funds reject contributions
	require.NoError(t, h.engine.CloseFund(testCreator, id))
	_, err = h.engine.Contribute("bob", id, 500)
	assert.ErrorIs(t, err, fund.ErrInvalidStatus)
}

func TestContributeAuditFailureRefunds(t *testing.T) {
	h := newTestHarness(t)
	id, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)

	// Fill the sender's audit index so the append is rejected. The filler
	// entries target an unrelated fund id so the fund's own index, which
	// already holds the creation entry, stays below its cap.
	for range auditlog.MaxLogsPerIndex {
		_, err := h.audit.Append(
			testAuthority,
			"bob",
			auditlog.EventVoteCast,
			int64(id)+1,
			0,
		)
		require.NoError(t, err)
	}

	h.accounts.Credit("bob", 1_000)
	_, err = h.engine.Contribute("bob", id, 500)
	var depErr *fund.DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "auditlog", depErr.Dependency)
	// Transfer was compensated and the fund is untouched
	assert.Equal(t, uint64(1_000), h.accounts.Balance("bob"))
	f, ok := h.engine.GetFund(id)
	require.True(t, ok)
	assert.Equal(t, uint64(0), f.Balance)
}

func TestUpdateFund(t *testing.T) {
	h := newTestHarness(t)
	id, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)
	h.tip.Advance()

	err = h.engine.UpdateFund(testCreator, id, "garden-v2", 20_000, 288)
	require.NoError(t, err)

	f, ok := h.engine.GetFund(id)
	require.True(t, ok)
	assert.Equal(t, "garden-v2", f.Name)
	assert.Equal(t, uint64(20_000), f.Goal)
	assert.Equal(t, uint64(288), f.Duration)
	assert.Equal(t, uint64(11), f.CreatedAtBlock)

	update, ok := h.engine.GetFundUpdate(id)
	require.True(t, ok)
	assert.Equal(t, "garden-v2", update.Name)
	assert.Equal(t, testCreator, update.Updater)
	assert.Equal(t, uint64(11), update.UpdatedAtBlock)

	// The rename is mirrored in the registry's name index
	renamedId, ok := h.registry.GetFundIdByName("garden-v2")
	require.True(t, ok)
	assert.Equal(t, id, renamedId)
	assert.False(t, h.registry.IsFundRegistered("community-garden"))
	entry, ok := h.registry.GetFundById(id)
	require.True(t, ok)
	assert.Equal(t, "garden-v2", entry.Name)

	// The old name is released for reuse, in both name indexes
	params := validCreateParams()
	newId, err := h.engine.CreateFund(testCreator, params)
	require.NoError(t, err)
	reusedId, ok := h.registry.GetFundIdByName(params.Name)
	require.True(t, ok)
	assert.Equal(t, newId, reusedId)
}

func TestUpdateFundRegistryFailure(t *testing.T) {
	h := newTestHarness(t, func(c *fund.Config) {
		c.Registry = renameFailingRegistry{Registrar: c.Registry}
	})
	id, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)

	err = h.engine.UpdateFund(testCreator, id, "garden-v2", 20_000, 288)
	var depErr *fund.DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "registry", depErr.Dependency)

	// Nothing was committed on the engine's side
	f, ok := h.engine.GetFund(id)
	require.True(t, ok)
	assert.Equal(t, "community-garden", f.Name)
	assert.Equal(t, uint64(10_000), f.Goal)
	_, ok = h.engine.GetFundUpdate(id)
	assert.False(t, ok)
}

func TestUpdateFundValidation(t *testing.T) {
	h := newTestHarness(t)
	id, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)
	params := validCreateParams()
	params.Name = "other-fund"
	otherId, err := h.engine.CreateFund(testCreator, params)
	require.NoError(t, err)

	err = h.engine.UpdateFund("mallory", id, "stolen", 1, 1)
	assert.ErrorIs(t, err, fund.ErrNotAuthorized)

	err = h.engine.UpdateFund(testCreator, 42, "missing", 1, 1)
	assert.ErrorIs(t, err, fund.ErrFundNotFound)

	err = h.engine.UpdateFund(testCreator, id, "", 1, 1)
	assert.ErrorIs(t, err, fund.ErrInvalidName)

	err = h.engine.UpdateFund(testCreator, id, "renamed", 0, 1)
	assert.ErrorIs(t, err, fund.ErrInvalidGoal)

	err = h.engine.UpdateFund(testCreator, id, "renamed", 1, 0)
	assert.ErrorIs(t, err, fund.ErrInvalidDuration)

	// Renaming to another fund's name is rejected
	err = h.engine.UpdateFund(testCreator, otherId, "community-garden", 1, 1)
	assert.ErrorIs(t, err, fund.ErrFundAlreadyExists)

	// Keeping the same name is allowed
	err = h.engine.UpdateFund(testCreator, id, "community-garden", 15_000, 144)
	assert.NoError(t, err)
}

func TestCloseFund(t *testing.T) {
	h := newTestHarness(t)
	id, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)

	err = h.engine.CloseFund("mallory", id)
	assert.ErrorIs(t, err, fund.ErrNotAuthorized)

	err = h.engine.CloseFund(testCreator, id)
	require.NoError(t, err)
	f, ok := h.engine.GetFund(id)
	require.True(t, ok)
	assert.False(t, f.Active)

	// Closing is one-way and not repeatable
	err = h.engine.CloseFund(testCreator, id)
	assert.ErrorIs(t, err, fund.ErrInvalidStatus)
}

func TestSetAuthority(t *testing.T) {
	engine := fund.NewEngine(fund.Config{
		PromRegistry: prometheus.NewRegistry(),
		Chain:        chain.NewTip(0),
		Registry:     failingRegistry{},
		Audit:        failingAudit{},
		Tokens:       tokens.NewAccountBook(nil),
		Identity:     testIdentity,
	})

	// Self-assignment is rejected
	err := engine.SetAuthority("alice", "alice")
	assert.ErrorIs(t, err, fund.ErrNotAuthorized)

	require.NoError(t, engine.SetAuthority("deployer", "alice"))
	authority, ok := engine.Authority()
	require.True(t, ok)
	assert.Equal(t, "alice", authority)

	// The assignment is permanent
	err = engine.SetAuthority("deployer", "bob")
	assert.ErrorIs(t, err, fund.ErrAuthorityAlreadySet)
}

func TestSetMaxFunds(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)

	err = h.engine.SetMaxFunds(testAuthority, 0)
	assert.ErrorIs(t, err, fund.ErrInvalidUpdateParam)

	// The new ceiling must exceed the current fund count
	err = h.engine.SetMaxFunds(testAuthority, 1)
	assert.ErrorIs(t, err, fund.ErrInvalidUpdateParam)

	require.NoError(t, h.engine.SetMaxFunds(testAuthority, 50))
	assert.Equal(t, uint64(50), h.engine.MaxFunds())
}

func TestSetMaxFundsAuthorityNotSet(t *testing.T) {
	engine := fund.NewEngine(fund.Config{
		PromRegistry: prometheus.NewRegistry(),
		Chain:        chain.NewTip(0),
		Registry:     failingRegistry{},
		Audit:        failingAudit{},
		Tokens:       tokens.NewAccountBook(nil),
		Identity:     testIdentity,
	})
	err := engine.SetMaxFunds(testAuthority, 50)
	assert.ErrorIs(t, err, fund.ErrAuthorityNotSet)
}

func TestSetCreationFee(t *testing.T) {
	h := newTestHarness(t)
	require.NoError(t, h.engine.SetCreationFee(testAuthority, 250))
	assert.Equal(t, uint64(250), h.engine.CreationFee())

	id, err := h.engine.CreateFund(testCreator, validCreateParams())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)
	assert.Equal(t, uint64(250), h.accounts.Balance(testAuthority))
}

func TestDependencyErrorUnwrap(t *testing.T) {
	err := &fund.DependencyError{
		Dependency: "tokens",
		Err:        errors.New("boom"),
	}
	assert.Contains(t, err.Error(), "tokens call failed")
	assert.EqualError(t, errors.Unwrap(err), "boom")
}
