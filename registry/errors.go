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

package registry

// OpError is a validation failure from a registry operation. Each validation
// rule maps to exactly one error value with a stable numeric code.
type OpError struct {
	msg  string
	Code int
}

func (e *OpError) Error() string {
	return e.msg
}

var (
	ErrNotAuthorized     = &OpError{Code: 100, msg: "caller is not authorized"}
	ErrFundNotFound      = &OpError{Code: 101, msg: "fund is not registered"}
	ErrFundAlreadyExists = &OpError{Code: 102, msg: "fund name is already registered"}
	ErrInvalidName       = &OpError{Code: 103, msg: "name must be non-empty and at most 50 characters"}
	ErrInvalidGoal       = &OpError{Code: 104, msg: "goal must be greater than zero"}
	ErrInvalidStatus     = &OpError{Code: 105, msg: "fund is already in the requested state"}
	ErrInvalidCreator    = &OpError{Code: 106, msg: "creator must match the caller"}
	ErrInvalidLocation   = &OpError{Code: 107, msg: "location must be non-empty and at most 50 characters"}
	ErrInvalidCurrency   = &OpError{Code: 108, msg: "unsupported currency"}
	ErrMaxFundsExceeded  = &OpError{Code: 110, msg: "registry capacity reached"}
	ErrRegistryLocked    = &OpError{Code: 111, msg: "registry is locked"}
)
