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

package fundapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/fundledger/auditlog"
	"github.com/blinklabs-io/fundledger/fund"
	"github.com/blinklabs-io/fundledger/registry"
)

// FundApi is the read-only REST API server for the fund ledger
type FundApi struct {
	config     Config
	logger     *slog.Logger
	engine     *fund.Engine
	registry   *registry.Registry
	audit      *auditlog.AuditLog
	httpServer *http.Server
	mu         sync.Mutex
}

type Config struct {
	ListenAddress string
}

// New creates a new fund API server instance
func New(
	cfg Config,
	engine *fund.Engine,
	fundRegistry *registry.Registry,
	audit *auditlog.AuditLog,
	logger *slog.Logger,
) *FundApi {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "fundapi")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":3000"
	}
	return &FundApi{
		config:   cfg,
		logger:   logger,
		engine:   engine,
		registry: fundRegistry,
		audit:    audit,
	}
}

// Start starts the HTTP server in a background goroutine
func (f *FundApi) Start(
	ctx context.Context,
) error {
	f.mu.Lock()
	if f.httpServer != nil {
		f.mu.Unlock()
		return errors.New("server already started")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", f.handleRoot)
	mux.HandleFunc("GET /health", f.handleHealth)
	mux.HandleFunc("GET /api/v1/funds", f.handleFunds)
	mux.HandleFunc("GET /api/v1/funds/{id}", f.handleFund)
	mux.HandleFunc(
		"GET /api/v1/funds/{id}/update",
		f.handleFundUpdate,
	)
	mux.HandleFunc(
		"GET /api/v1/funds/{id}/logs",
		f.handleFundLogs,
	)
	mux.HandleFunc(
		"GET /api/v1/senders/{sender}/logs",
		f.handleSenderLogs,
	)
	mux.HandleFunc("GET /api/v1/logs/{id}", f.handleLog)
	mux.HandleFunc(
		"GET /api/v1/registry/{id}",
		f.handleRegistryEntry,
	)

	server := &http.Server{
		Addr:              f.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
	}
	f.httpServer = server
	f.mu.Unlock()

	// Start the server with deterministic error detection
	if err := f.startServer(server); err != nil {
		f.mu.Lock()
		f.httpServer = nil
		f.mu.Unlock()
		return err
	}

	f.logger.Info(
		"fund API listener started on " +
			f.config.ListenAddress,
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		f.mu.Lock()
		srv := f.httpServer
		f.httpServer = nil
		f.mu.Unlock()

		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(shutdownCtx); err != nil {
				f.logger.Error(
					"failed to shutdown fund API server on context cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (f *FundApi) Stop(ctx context.Context) error {
	f.mu.Lock()
	srv := f.httpServer
	f.httpServer = nil
	f.mu.Unlock()

	if srv != nil {
		f.logger.Debug("shutting down fund API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown fund API server: %w",
				err,
			)
		}
	}
	return nil
}

// startServer binds the listening socket first so port conflicts are
// detected immediately, then serves in a background goroutine
func (f *FundApi) startServer(
	server *http.Server,
) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf(
			"failed to listen for fund API server: %w",
			err,
		)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			f.logger.Error(
				"fund API server error",
				"error", err,
			)
		}
	}()
	return nil
}
