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

// RegistryEntry is the persisted mirror of a registry directory entry
type RegistryEntry struct {
	Name           string `gorm:"uniqueIndex;size:50"`
	Creator        string `gorm:"index"`
	Location       string `gorm:"size:50"`
	Currency       string `gorm:"size:8"`
	FundID         uint64 `gorm:"primarykey;autoIncrement:false"`
	Goal           uint64
	CreatedAtBlock uint64
	Active         bool `gorm:"default:true"`
}

func (RegistryEntry) TableName() string {
	return "registry_entry"
}
