// Copyright 2024 The czar Authors.
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

package facade

import "context"

// Status is a UserQuery's lifecycle state, mirrored into QMeta by whatever
// component owns query-metadata persistence.
type Status int

const (
	StatusExecuting Status = iota
	StatusSuccess
	StatusError
	StatusAborted
)

// String renders the status the way it is reported to QMeta/clients.
func (s Status) String() string {
	switch s {
	case StatusExecuting:
		return "EXECUTING"
	case StatusSuccess:
		return "COMPLETED"
	case StatusError:
		return "FAILED"
	case StatusAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// UserQuery is the common surface every query variant - SELECT, management
// call, result delete - exposes to the registry and the front-end proxy.
// Submit kicks off work without blocking; Join waits for it to finish and
// settles the final status; Status reports the last known status without
// blocking or re-running Join's side effects; Kill cancels a running query;
// Discard drops a completed query's result; GetMessageStore and
// GetResultLocation are read-only accessors used after Join.
type UserQuery interface {
	Submit(ctx context.Context) error
	Join(ctx context.Context) (Status, error)
	Status() Status
	Kill() error
	Discard(ctx context.Context) error
	GetMessageStore() *MessageStore
	GetResultLocation() string
}
