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

package tokens_test

import (
	"testing"

	"github.com/blinklabs-io/fundledger/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer(t *testing.T) {
	book := tokens.NewAccountBook(nil)
	book.Credit("alice", 1_000)

	require.NoError(t, book.Transfer("alice", "bob", 400))
	assert.Equal(t, uint64(600), book.Balance("alice"))
	assert.Equal(t, uint64(400), book.Balance("bob"))
}

func TestTransferInsufficientFunds(t *testing.T) {
	book := tokens.NewAccountBook(nil)
	book.Credit("alice", 100)

	err := book.Transfer("alice", "bob", 101)
	var insufficientErr *tokens.InsufficientFundsError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, "alice", insufficientErr.Account)
	assert.Equal(t, uint64(100), insufficientErr.Balance)
	assert.Equal(t, uint64(101), insufficientErr.Amount)
	// A failed transfer moves nothing
	assert.Equal(t, uint64(100), book.Balance("alice"))
	assert.Equal(t, uint64(0), book.Balance("bob"))
}

func TestTransferUnknownAccount(t *testing.T) {
	book := tokens.NewAccountBook(nil)
	err := book.Transfer("ghost", "bob", 1)
	var insufficientErr *tokens.InsufficientFundsError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, uint64(0), insufficientErr.Balance)
}

func TestMint(t *testing.T) {
	book := tokens.NewAccountBook(nil)
	require.NoError(t, book.Mint("alice", 50))
	require.NoError(t, book.Mint("bob", 25))
	assert.Equal(t, uint64(50), book.Balance("alice"))
	assert.Equal(t, uint64(25), book.Balance("bob"))
	assert.Equal(t, uint64(75), book.TotalMinted())
}
