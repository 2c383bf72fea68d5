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

package chain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
)

// View provides the current block height and transaction id as observed by
// ledger components. The host execution environment normally supplies this;
// Tip below is the in-process stand-in.
type View interface {
	BlockHeight() uint64
	TxId() string
}

// Tip is a process-local chain view. Each committed operation is treated as
// its own transaction, and Advance moves the tip one block forward.
type Tip struct {
	mu        sync.Mutex
	height    uint64
	txCounter uint64
}

func NewTip(startHeight uint64) *Tip {
	return &Tip{
		height: startHeight,
	}
}

func (t *Tip) BlockHeight() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.height
}

// TxId returns a deterministic id derived from the current height and
// transaction counter
func (t *Tip) TxId() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:], t.height)
	binary.BigEndian.PutUint64(buf[8:], t.txCounter)
	txHash := sha256.Sum256(buf[:])
	return "0x" + hex.EncodeToString(txHash[:])
}

// Advance moves the tip forward one block and returns the new height
func (t *Tip) Advance() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.height++
	t.txCounter++
	return t.height
}
