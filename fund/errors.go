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

package fund

import "fmt"

// OpError is a validation failure from an engine operation. Each validation
// rule maps to exactly one error value, and the numeric codes are stable
// across releases.
type OpError struct {
	msg  string
	Code int
}

func (e *OpError) Error() string {
	return e.msg
}

var (
	ErrNotAuthorized          = &OpError{Code: 100, msg: "caller is not authorized"}
	ErrFundNotFound           = &OpError{Code: 101, msg: "fund does not exist"}
	ErrInvalidAmount          = &OpError{Code: 102, msg: "amount is outside the fund's contribution limits"}
	ErrFundAlreadyExists      = &OpError{Code: 103, msg: "fund name is already in use"}
	ErrInvalidName            = &OpError{Code: 104, msg: "name must be non-empty and at most 50 characters"}
	ErrInvalidGoal            = &OpError{Code: 105, msg: "goal must be greater than zero"}
	ErrInvalidDuration        = &OpError{Code: 106, msg: "duration must be greater than zero"}
	ErrInvalidThreshold       = &OpError{Code: 107, msg: "threshold must be between 1 and 100"}
	ErrInvalidStatus          = &OpError{Code: 108, msg: "fund is not active"}
	ErrInvalidCurrency        = &OpError{Code: 110, msg: "unsupported currency"}
	ErrInvalidLocation        = &OpError{Code: 111, msg: "location must be non-empty and at most 50 characters"}
	ErrInvalidMinContribution = &OpError{Code: 112, msg: "minimum contribution must be greater than zero"}
	ErrInvalidMaxContribution = &OpError{Code: 113, msg: "maximum contribution must be greater than zero"}
	ErrInvalidRewardRate      = &OpError{Code: 114, msg: "reward rate must not exceed 50 percent"}
	ErrInvalidPenalty         = &OpError{Code: 115, msg: "penalty must not exceed 20 percent"}
	ErrMaxFundsExceeded       = &OpError{Code: 116, msg: "fund capacity reached"}
	ErrInvalidUpdateParam     = &OpError{Code: 118, msg: "invalid configuration value"}
	ErrAuthorityNotSet        = &OpError{Code: 119, msg: "authority has not been set"}
	ErrAuthorityAlreadySet    = &OpError{Code: 119, msg: "authority has already been set"}
)

// DependencyError reports a collaborator or effect call that failed after
// the engine's own validation had passed. The engine's state is unchanged
// when this is returned.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
