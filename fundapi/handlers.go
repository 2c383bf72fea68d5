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
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/fundledger/auditlog"
	"github.com/blinklabs-io/fundledger/fund"
	"github.com/blinklabs-io/fundledger/internal/version"
	"github.com/blinklabs-io/fundledger/registry"
)

func (f *FundApi) writeJSON(
	w http.ResponseWriter,
	statusCode int,
	data any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		f.logger.Error(
			"failed to write API response",
			"error", err,
		)
	}
}

func (f *FundApi) writeError(
	w http.ResponseWriter,
	statusCode int,
	message string,
) {
	f.writeJSON(
		w,
		statusCode,
		ErrorResponse{
			Error:      http.StatusText(statusCode),
			Message:    message,
			StatusCode: statusCode,
		},
	)
}

func (f *FundApi) handleRoot(
	w http.ResponseWriter,
	r *http.Request,
) {
	// The "GET /" pattern also matches any path without a more specific
	// handler, so unknown paths get an explicit 404
	if r.URL.Path != "/" {
		f.writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	f.writeJSON(
		w,
		http.StatusOK,
		RootResponse{
			Name:    "fundledger",
			Version: version.GetVersionString(),
		},
	)
}

func (f *FundApi) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	f.writeJSON(
		w,
		http.StatusOK,
		HealthResponse{IsHealthy: true},
	)
}

func (f *FundApi) handleFunds(
	w http.ResponseWriter,
	r *http.Request,
) {
	pagination, err := ParsePagination(r)
	if err != nil {
		f.writeError(
			w,
			http.StatusBadRequest,
			err.Error(),
		)
		return
	}
	total := f.engine.FundCount()
	resp := []FundResponse{}
	start := uint64(pagination.Offset()) //nolint:gosec
	for id := start; id < total &&
		len(resp) < pagination.Count; id++ {
		record, ok := f.engine.GetFund(id)
		if !ok {
			continue
		}
		resp = append(resp, fundToResponse(record))
	}
	f.writeJSON(w, http.StatusOK, resp)
}

func (f *FundApi) handleFund(
	w http.ResponseWriter,
	r *http.Request,
) {
	fundId, ok := f.pathId(w, r)
	if !ok {
		return
	}
	record, ok := f.engine.GetFund(fundId)
	if !ok {
		f.writeError(w, http.StatusNotFound, "fund not found")
		return
	}
	f.writeJSON(w, http.StatusOK, fundToResponse(record))
}

func (f *FundApi) handleFundUpdate(
	w http.ResponseWriter,
	r *http.Request,
) {
	fundId, ok := f.pathId(w, r)
	if !ok {
		return
	}
	update, ok := f.engine.GetFundUpdate(fundId)
	if !ok {
		f.writeError(
			w,
			http.StatusNotFound,
			"fund update not found",
		)
		return
	}
	f.writeJSON(
		w,
		http.StatusOK,
		FundUpdateResponse{
			Name:           update.Name,
			Updater:        update.Updater,
			Goal:           update.Goal,
			Duration:       update.Duration,
			UpdatedAtBlock: update.UpdatedAtBlock,
		},
	)
}

func (f *FundApi) handleFundLogs(
	w http.ResponseWriter,
	r *http.Request,
) {
	fundId, ok := f.pathId(w, r)
	if !ok {
		return
	}
	pagination, err := ParsePagination(r)
	if err != nil {
		f.writeError(
			w,
			http.StatusBadRequest,
			err.Error(),
		)
		return
	}
	if _, ok := f.engine.GetFund(fundId); !ok {
		f.writeError(w, http.StatusNotFound, "fund not found")
		return
	}
	logIds := f.audit.LogsByFund(
		fundId,
		pagination.Offset(),
		pagination.Count,
	)
	f.writeJSON(w, http.StatusOK, f.logsToResponse(logIds))
}

func (f *FundApi) handleSenderLogs(
	w http.ResponseWriter,
	r *http.Request,
) {
	sender := r.PathValue("sender")
	if sender == "" {
		f.writeError(
			w,
			http.StatusBadRequest,
			"missing sender",
		)
		return
	}
	pagination, err := ParsePagination(r)
	if err != nil {
		f.writeError(
			w,
			http.StatusBadRequest,
			err.Error(),
		)
		return
	}
	logIds := f.audit.LogsBySender(
		sender,
		pagination.Offset(),
		pagination.Count,
	)
	f.writeJSON(w, http.StatusOK, f.logsToResponse(logIds))
}

func (f *FundApi) handleLog(
	w http.ResponseWriter,
	r *http.Request,
) {
	logId, ok := f.pathId(w, r)
	if !ok {
		return
	}
	entry, ok := f.audit.GetLog(logId)
	if !ok {
		f.writeError(w, http.StatusNotFound, "log not found")
		return
	}
	f.writeJSON(w, http.StatusOK, logToResponse(entry))
}

func (f *FundApi) handleRegistryEntry(
	w http.ResponseWriter,
	r *http.Request,
) {
	fundId, ok := f.pathId(w, r)
	if !ok {
		return
	}
	entry, ok := f.registry.GetFundById(fundId)
	if !ok {
		f.writeError(
			w,
			http.StatusNotFound,
			"registry entry not found",
		)
		return
	}
	f.writeJSON(
		w,
		http.StatusOK,
		registryEntryToResponse(fundId, entry),
	)
}

// pathId parses the {id} path segment, writing a 400 response on failure
func (f *FundApi) pathId(
	w http.ResponseWriter,
	r *http.Request,
) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		f.writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (f *FundApi) logsToResponse(logIds []uint64) []LogResponse {
	resp := []LogResponse{}
	for _, logId := range logIds {
		entry, ok := f.audit.GetLog(logId)
		if !ok {
			continue
		}
		resp = append(resp, logToResponse(entry))
	}
	return resp
}

func fundToResponse(record fund.Fund) FundResponse {
	return FundResponse{
		Name:             record.Name,
		Creator:          record.Creator,
		Currency:         record.Currency,
		Location:         record.Location,
		Id:               record.Id,
		Goal:             record.Goal,
		Duration:         record.Duration,
		Threshold:        record.Threshold,
		Balance:          record.Balance,
		TotalContributed: record.TotalContributed,
		MinContribution:  record.MinContribution,
		MaxContribution:  record.MaxContribution,
		RewardRate:       record.RewardRate,
		Penalty:          record.Penalty,
		CreatedAtBlock:   record.CreatedAtBlock,
		Active:           record.Active,
	}
}

func logToResponse(entry auditlog.Entry) LogResponse {
	return LogResponse{
		EventType:   string(entry.EventType),
		Sender:      entry.Sender,
		TxId:        entry.TxId,
		Id:          entry.Id,
		FundId:      entry.FundId,
		Amount:      entry.Amount,
		BlockHeight: entry.BlockHeight,
	}
}

func registryEntryToResponse(
	fundId uint64,
	entry registry.Entry,
) RegistryEntryResponse {
	return RegistryEntryResponse{
		Name:           entry.Name,
		Creator:        entry.Creator,
		Location:       entry.Location,
		Currency:       entry.Currency,
		FundId:         fundId,
		Goal:           entry.Goal,
		CreatedAtBlock: entry.CreatedAtBlock,
		Active:         entry.Active,
	}
}
