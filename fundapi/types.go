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

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// RootResponse is the JSON body for GET /
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is the JSON body for GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// FundResponse is the JSON representation of a fund record
type FundResponse struct {
	Name             string `json:"name"`
	Creator          string `json:"creator"`
	Currency         string `json:"currency"`
	Location         string `json:"location"`
	Id               uint64 `json:"id"`
	Goal             uint64 `json:"goal"`
	Duration         uint64 `json:"duration"`
	Threshold        uint64 `json:"threshold"`
	Balance          uint64 `json:"balance"`
	TotalContributed uint64 `json:"total_contributed"`
	MinContribution  uint64 `json:"min_contribution"`
	MaxContribution  uint64 `json:"max_contribution"`
	RewardRate       uint64 `json:"reward_rate"`
	Penalty          uint64 `json:"penalty"`
	CreatedAtBlock   uint64 `json:"created_at_block"`
	Active           bool   `json:"active"`
}

// FundUpdateResponse is the JSON representation of a fund's latest amendment
type FundUpdateResponse struct {
	Name           string `json:"name"`
	Updater        string `json:"updater"`
	Goal           uint64 `json:"goal"`
	Duration       uint64 `json:"duration"`
	UpdatedAtBlock uint64 `json:"updated_at_block"`
}

// LogResponse is the JSON representation of an audit log entry
type LogResponse struct {
	EventType   string `json:"event_type"`
	Sender      string `json:"sender"`
	TxId        string `json:"tx_id"`
	Id          uint64 `json:"id"`
	FundId      uint64 `json:"fund_id"`
	Amount      uint64 `json:"amount"`
	BlockHeight uint64 `json:"block_height"`
}

// RegistryEntryResponse is the JSON representation of a registry entry
type RegistryEntryResponse struct {
	Name           string `json:"name"`
	Creator        string `json:"creator"`
	Location       string `json:"location"`
	Currency       string `json:"currency"`
	FundId         uint64 `json:"fund_id"`
	Goal           uint64 `json:"goal"`
	CreatedAtBlock uint64 `json:"created_at_block"`
	Active         bool   `json:"active"`
}
