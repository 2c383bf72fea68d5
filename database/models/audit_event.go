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

package models

// AuditEvent is the persisted mirror of an audit log entry. Rows are only
// ever inserted, mirroring the in-memory log's append-only contract.
type AuditEvent struct {
	EventType   string `gorm:"index;size:32"`
	Sender      string `gorm:"index"`
	TxID        string `gorm:"size:66"`
	ID          uint64 `gorm:"primarykey;autoIncrement:false"`
	FundID      uint64 `gorm:"index"`
	Amount      uint64
	BlockHeight uint64
}

func (AuditEvent) TableName() string {
	return "audit_event"
}
