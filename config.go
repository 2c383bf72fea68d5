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
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultSystemPrincipal is the engine's own principal, used as the
	// privileged audit caller and as the pooled contribution account
	DefaultSystemPrincipal = "system"

	DefaultBlockTime = time.Second
)

type Config struct {
	promRegistry     prometheus.Registerer
	logger           *slog.Logger
	dataDir          string
	authority        string
	systemPrincipal  string
	apiListenAddress string
	maxFunds         uint64
	registryMaxFunds uint64
	maxLogs          uint64
	creationFee      uint64
	blockTime        time.Duration
	shutdownTimeout  time.Duration
	tracing          bool
	tracingStdout    bool
}

func (n *Node) configValidate() error {
	if n.config.authority == "" {
		return errors.New("no authority principal defined")
	}
	if n.config.systemPrincipal == n.config.authority {
		return errors.New(
			"authority and system principal must be distinct",
		)
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new fundledger config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		systemPrincipal: DefaultSystemPrincipal,
		blockTime:       DefaultBlockTime,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. The default is a logger that
// discards all output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDatabasePath specifies the persistent data directory to use. The
// default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithPrometheusRegistry specifies a prometheus registry for metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithAuthority specifies the authority principal. The authority collects
// creation fees and controls the registry and audit log
func WithAuthority(authority string) ConfigOptionFunc {
	return func(c *Config) {
		c.authority = authority
	}
}

// WithSystemPrincipal overrides the engine's own principal
func WithSystemPrincipal(principal string) ConfigOptionFunc {
	return func(c *Config) {
		c.systemPrincipal = principal
	}
}

// WithApiListenAddress specifies the REST API listen address (empty = disabled)
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithMaxFunds overrides the engine's fund capacity ceiling
func WithMaxFunds(maxFunds uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.maxFunds = maxFunds
	}
}

// WithRegistryMaxFunds overrides the registry's capacity ceiling
func WithRegistryMaxFunds(maxFunds uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.registryMaxFunds = maxFunds
	}
}

// WithMaxLogs overrides the audit log's global entry ceiling
func WithMaxLogs(maxLogs uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.maxLogs = maxLogs
	}
}

// WithCreationFee overrides the fee charged on fund creation
func WithCreationFee(fee uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.creationFee = fee
	}
}

// WithBlockTime specifies the interval at which the chain tip advances.
// The default is one second
func WithBlockTime(blockTime time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.blockTime = blockTime
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The
// default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s)
// endpoint using OTLP. This can be configured using the OTEL_EXPORTER_OTLP_*
// env vars documented in the README for
// [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires
// tracing to be enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}
