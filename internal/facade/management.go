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

import (
	"context"
	"sync"
	"time"

	"github.com/lsst/qserv-sub011/internal/czarerr"
)

// ManagementAction performs the admin operation named by a CALL
// QSERV_MANAGER(...) invocation: killing another registered query,
// reconfiguring a priority level, and so on. The façade itself does not
// own the state those actions touch, so the caller supplies the closure
// that actually performs them.
type ManagementAction func(ctx context.Context) error

// ManagementUserQuery is the management-call variant: it runs a single
// admin action and reports success or failure, without an executive or
// merger of its own.
type ManagementUserQuery struct {
	QueryID int64
	Command string

	action ManagementAction
	store  *MessageStore

	mu     sync.Mutex
	status Status
}

// NewManagementUserQuery returns a ManagementUserQuery that runs action
// when submitted. command is the admin command text, kept for reporting.
func NewManagementUserQuery(queryID int64, command string, action ManagementAction) *ManagementUserQuery {
	return &ManagementUserQuery{
		QueryID: queryID,
		Command: command,
		action:  action,
		store:   NewMessageStore(),
		status:  StatusExecuting,
	}
}

// Submit runs the admin action to completion; management calls are
// synchronous, unlike SELECT's fire-and-Join split.
func (q *ManagementUserQuery) Submit(ctx context.Context) error {
	err := q.action(ctx)
	q.mu.Lock()
	if err != nil {
		q.status = StatusError
	} else {
		q.status = StatusSuccess
	}
	q.mu.Unlock()
	if err != nil {
		q.store.ReportError(czarerr.SystemChunkID, 0, err, time.Now())
	}
	return err
}

// Join returns the status Submit already settled; a management call never
// blocks on Join.
func (q *ManagementUserQuery) Join(ctx context.Context) (Status, error) {
	return q.Status(), nil
}

// Status reports the last known status without blocking.
func (q *ManagementUserQuery) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status
}

// Kill marks the query aborted. A management action that is already
// synchronous by the time Kill could run has no in-flight work to cancel.
func (q *ManagementUserQuery) Kill() error {
	q.mu.Lock()
	q.status = StatusAborted
	q.mu.Unlock()
	return nil
}

// Discard is a no-op: a management call produces no result table.
func (q *ManagementUserQuery) Discard(ctx context.Context) error { return nil }

// GetMessageStore returns the query's accumulated diagnostics.
func (q *ManagementUserQuery) GetMessageStore() *MessageStore { return q.store }

// GetResultLocation always returns "": management calls have no result.
func (q *ManagementUserQuery) GetResultLocation() string { return "" }
