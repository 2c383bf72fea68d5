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

package auditlog

// OpError is a validation failure from an audit logger operation. Each
// validation rule maps to exactly one error value, and the numeric codes
// are stable across releases.
type OpError struct {
	msg  string
	Code int
}

func (e *OpError) Error() string {
	return e.msg
}

var (
	ErrNotAuthorized    = &OpError{Code: 100, msg: "caller is not authorized to log events"}
	ErrInvalidEvent     = &OpError{Code: 101, msg: "unknown event type"}
	ErrInvalidAmount    = &OpError{Code: 102, msg: "amount must not be negative"}
	ErrInvalidFundId    = &OpError{Code: 103, msg: "fund id must not be negative"}
	ErrInvalidPrincipal = &OpError{Code: 104, msg: "sender must differ from caller"}
	ErrMaxLogsExceeded  = &OpError{Code: 107, msg: "log capacity reached"}
)
