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

package fundledger

import (
	"github.com/blinklabs-io/fundledger/auditlog"
	"github.com/blinklabs-io/fundledger/database/models"
	"github.com/blinklabs-io/fundledger/event"
	"github.com/blinklabs-io/fundledger/fund"
	"github.com/blinklabs-io/fundledger/registry"
)

// startPersistence subscribes the database write-through to mutation
// events. Persistence is best-effort: the in-memory components remain the
// source of truth and write failures are logged, not propagated.
func (n *Node) startPersistence() {
	n.eventBus.SubscribeFunc(
		fund.CreateEventType,
		n.handleFundCreateEvent,
	)
	n.eventBus.SubscribeFunc(
		fund.ContributionEventType,
		n.handleFundMutationEvent,
	)
	n.eventBus.SubscribeFunc(
		fund.UpdateEventType,
		n.handleFundUpdateEvent,
	)
	n.eventBus.SubscribeFunc(
		fund.CloseEventType,
		n.handleFundMutationEvent,
	)
	n.eventBus.SubscribeFunc(
		registry.RegisterEventType,
		n.handleRegistryRegisterEvent,
	)
	n.eventBus.SubscribeFunc(
		auditlog.AppendEventType,
		n.handleAuditAppendEvent,
	)
}

func (n *Node) persistFund(record fund.Fund) {
	if err := n.db.Metadata().UpsertFund(models.Fund{
		Name:             record.Name,
		Creator:          record.Creator,
		Currency:         record.Currency,
		Location:         record.Location,
		ID:               record.Id,
		Goal:             record.Goal,
		Duration:         record.Duration,
		Threshold:        record.Threshold,
		Balance:          record.Balance,
		TotalContributed: record.TotalContributed,
		MinContribution:  record.MinContribution,
		MaxContribution:  record.MaxContribution,
		RewardRate:       record.RewardRate,
		Penalty:          record.Penalty,
		CreatedAtBlock:   record.CreatedAtBlock,
		Active:           record.Active,
	}); err != nil {
		n.config.logger.Error(
			"failed to persist fund",
			"component", "node",
			"fund_id", record.Id,
			"error", err,
		)
	}
}

func (n *Node) handleFundCreateEvent(evt event.Event) {
	e, ok := evt.Data.(fund.CreateEvent)
	if !ok {
		return
	}
	n.persistFund(e.Fund)
}

// handleFundMutationEvent re-reads the fund from the engine, since
// contribution and close events carry only the fund id
func (n *Node) handleFundMutationEvent(evt event.Event) {
	var fundId uint64
	switch e := evt.Data.(type) {
	case fund.ContributionEvent:
		fundId = e.FundId
	case fund.CloseEvent:
		fundId = e.FundId
	default:
		return
	}
	record, ok := n.engine.GetFund(fundId)
	if !ok {
		return
	}
	n.persistFund(record)
}

func (n *Node) handleFundUpdateEvent(evt event.Event) {
	e, ok := evt.Data.(fund.UpdateEvent)
	if !ok {
		return
	}
	n.persistFund(e.Fund)
	if err := n.db.Metadata().UpsertFundUpdate(models.FundUpdate{
		Name:           e.Update.Name,
		Updater:        e.Update.Updater,
		FundID:         e.Fund.Id,
		Goal:           e.Update.Goal,
		Duration:       e.Update.Duration,
		UpdatedAtBlock: e.Update.UpdatedAtBlock,
	}); err != nil {
		n.config.logger.Error(
			"failed to persist fund update",
			"component", "node",
			"fund_id", e.Fund.Id,
			"error", err,
		)
	}
}

func (n *Node) handleRegistryRegisterEvent(evt event.Event) {
	e, ok := evt.Data.(registry.RegisterEvent)
	if !ok {
		return
	}
	// The event payload is minimal, so read back the full entry
	entry, ok := n.registry.GetFundById(e.Id)
	if !ok {
		return
	}
	if err := n.db.Metadata().UpsertRegistryEntry(models.RegistryEntry{
		Name:           entry.Name,
		Creator:        entry.Creator,
		Location:       entry.Location,
		Currency:       entry.Currency,
		FundID:         e.Id,
		Goal:           entry.Goal,
		CreatedAtBlock: entry.CreatedAtBlock,
		Active:         entry.Active,
	}); err != nil {
		n.config.logger.Error(
			"failed to persist registry entry",
			"component", "node",
			"fund_id", e.Id,
			"error", err,
		)
	}
}

func (n *Node) handleAuditAppendEvent(evt event.Event) {
	e, ok := evt.Data.(auditlog.AppendEvent)
	if !ok {
		return
	}
	if err := n.db.Metadata().AddAuditEvent(models.AuditEvent{
		EventType:   string(e.Entry.EventType),
		Sender:      e.Entry.Sender,
		TxID:        e.Entry.TxId,
		ID:          e.Entry.Id,
		FundID:      e.Entry.FundId,
		Amount:      e.Entry.Amount,
		BlockHeight: e.Entry.BlockHeight,
	}); err != nil {
		n.config.logger.Error(
			"failed to persist audit event",
			"component", "node",
			"log_id", e.Entry.Id,
			"error", err,
		)
	}
	if err := n.db.Archive().Put(e.Entry); err != nil {
		n.config.logger.Error(
			"failed to archive audit event",
			"component", "node",
			"log_id", e.Entry.Id,
			"error", err,
		)
	}
}
