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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/fundledger/auditlog"
	"github.com/blinklabs-io/fundledger/chain"
	"github.com/blinklabs-io/fundledger/database"
	"github.com/blinklabs-io/fundledger/event"
	"github.com/blinklabs-io/fundledger/fund"
	"github.com/blinklabs-io/fundledger/fundapi"
	"github.com/blinklabs-io/fundledger/registry"
	"github.com/blinklabs-io/fundledger/tokens"
)

// Node assembles the fund ledger components: the chain tip, the token
// ledger, the registry, the audit log, the lifecycle engine, the database
// write-through, and the REST API.
type Node struct {
	config        Config
	eventBus      *event.EventBus
	chainTip      *chain.Tip
	accounts      *tokens.AccountBook
	db            *database.Database
	registry      *registry.Registry
	auditLog      *auditlog.AuditLog
	engine        *fund.Engine
	api           *fundapi.FundApi
	shutdownFuncs []func(context.Context) error
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Engine returns the fund lifecycle engine
func (n *Node) Engine() *fund.Engine {
	return n.engine
}

// Registry returns the fund registry
func (n *Node) Registry() *registry.Registry {
	return n.registry
}

// AuditLog returns the audit logger
func (n *Node) AuditLog() *auditlog.AuditLog {
	return n.auditLog
}

// Accounts returns the token account book
func (n *Node) Accounts() *tokens.AccountBook {
	return n.accounts
}

// ChainTip returns the simulated chain tip
func (n *Node) ChainTip() *chain.Tip {
	return n.chainTip
}

// Database returns the persistence layer
func (n *Node) Database() *database.Database {
	return n.db
}

func (n *Node) Run(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(n.config.logger, n.config.dataDir)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Chain tip and token ledger
	n.chainTip = chain.NewTip(0)
	n.accounts = tokens.NewAccountBook(n.config.logger)
	// Fund registry
	n.registry = registry.New(registry.Config{
		PromRegistry: n.config.promRegistry,
		Logger:       n.config.logger,
		EventBus:     n.eventBus,
		Chain:        n.chainTip,
		Authority:    n.config.authority,
		MaxFunds:     n.config.registryMaxFunds,
	})
	// Audit log
	n.auditLog = auditlog.New(auditlog.Config{
		PromRegistry: n.config.promRegistry,
		Logger:       n.config.logger,
		EventBus:     n.eventBus,
		Chain:        n.chainTip,
		Authority:    n.config.authority,
		SystemCaller: n.config.systemPrincipal,
		MaxLogs:      n.config.maxLogs,
	})
	// Fund lifecycle engine
	n.engine = fund.NewEngine(fund.Config{
		PromRegistry: n.config.promRegistry,
		Logger:       n.config.logger,
		EventBus:     n.eventBus,
		Chain:        n.chainTip,
		Registry:     n.registry,
		Audit:        n.auditLog,
		Tokens:       n.accounts,
		Identity:     n.config.systemPrincipal,
		MaxFunds:     n.config.maxFunds,
		CreationFee:  n.config.creationFee,
	})
	if err := n.engine.SetAuthority(
		n.config.systemPrincipal,
		n.config.authority,
	); err != nil {
		return fmt.Errorf("failed to assign authority: %w", err)
	}
	// Subscribe the database write-through to mutation events
	n.startPersistence()
	// Start block production
	go n.produceBlocks(ctx)
	// Start REST API
	if n.config.apiListenAddress != "" {
		n.api = fundapi.New(
			fundapi.Config{
				ListenAddress: n.config.apiListenAddress,
			},
			n.engine,
			n.registry,
			n.auditLog,
			n.config.logger,
		)
		if err := n.api.Start(ctx); err != nil {
			return err
		}
	}

	// Wait for shutdown signal
	<-n.done
	return nil
}

// produceBlocks advances the chain tip at the configured block time until
// the context is cancelled
func (n *Node) produceBlocks(ctx context.Context) {
	blockTime := n.config.blockTime
	if blockTime <= 0 {
		blockTime = DefaultBlockTime
	}
	ticker := time.NewTicker(blockTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.done:
			return
		case <-ticker.C:
			n.chainTip.Advance()
		}
	}
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: stop accepting new work
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("fund API shutdown: %w", stopErr),
			)
		}
	}

	// Phase 2: flush state and close database
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("database close: %w", closeErr),
			)
		}
	}

	// Phase 3: cleanup resources
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("shutdown function: %w", fnErr),
			)
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
