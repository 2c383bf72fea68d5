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

import "errors"

var ErrFundNotFound = errors.New("fund not found")

// Fund is the persisted mirror of an engine fund record
type Fund struct {
	Name             string `gorm:"uniqueIndex;size:50"`
	Creator          string `gorm:"index"`
	Currency         string `gorm:"size:8"`
	Location         string `gorm:"size:50"`
	ID               uint64 `gorm:"primarykey;autoIncrement:false"`
	Goal             uint64
	Duration         uint64
	Threshold        uint64
	Balance          uint64
	TotalContributed uint64
	MinContribution  uint64
	MaxContribution  uint64
	RewardRate       uint64
	Penalty          uint64
	CreatedAtBlock   uint64 `gorm:"index"`
	Active           bool   `gorm:"default:true"`
}

func (Fund) TableName() string {
	return "fund"
}

// FundUpdate is the persisted mirror of a fund's latest amendment record
type FundUpdate struct {
	Name           string `gorm:"size:50"`
	Updater        string `gorm:"index"`
	FundID         uint64 `gorm:"primarykey;autoIncrement:false"`
	Goal           uint64
	Duration       uint64
	UpdatedAtBlock uint64
}

func (FundUpdate) TableName() string {
	return "fund_update"
}
