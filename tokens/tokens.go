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

package tokens

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Ledger is the effect interface for token movement. The fund engine emits
// transfer and mint requests through it and treats any failure as an
// all-or-nothing abort of the surrounding operation.
type Ledger interface {
	Transfer(from string, to string, amount uint64) error
	Mint(to string, amount uint64) error
}

type InsufficientFundsError struct {
	Account string
	Balance uint64
	Amount  uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"insufficient funds: account=%s balance=%d transfer=%d",
		e.Account,
		e.Balance,
		e.Amount,
	)
}

// AccountBook is an in-memory Ledger implementation. It stands in for the
// host wallet: account balances are plain integer amounts in the smallest
// indivisible unit, and minting creates new supply.
type AccountBook struct {
	balances    map[string]uint64
	totalMinted uint64
	logger      *slog.Logger
	mu          sync.Mutex
}

func NewAccountBook(logger *slog.Logger) *AccountBook {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &AccountBook{
		balances: make(map[string]uint64),
		logger:   logger,
	}
}

// Credit adds funds to an account outside of a transfer. This is the faucet
// used to seed balances in dev mode and in tests.
func (a *AccountBook) Credit(account string, amount uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balances[account] += amount
}

func (a *AccountBook) Transfer(from string, to string, amount uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	balance := a.balances[from]
	if balance < amount {
		return &InsufficientFundsError{
			Account: from,
			Balance: balance,
			Amount:  amount,
		}
	}
	a.balances[from] = balance - amount
	a.balances[to] += amount
	a.logger.Debug(
		"transferred tokens",
		"component", "tokens",
		"from", from,
		"to", to,
		"amount", amount,
	)
	return nil
}

func (a *AccountBook) Mint(to string, amount uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balances[to] += amount
	a.totalMinted += amount
	a.logger.Debug(
		"minted tokens",
		"component", "tokens",
		"to", to,
		"amount", amount,
	)
	return nil
}

// Balance returns the current balance for an account
func (a *AccountBook) Balance(account string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balances[account]
}

// TotalMinted returns the total supply created via Mint
func (a *AccountBook) TotalMinted() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalMinted
}
