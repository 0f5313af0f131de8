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
	"fmt"
	"sync"
	"time"

	"github.com/lsst/qserv-sub011/internal/czarerr"
)

// ResultDeleteUserQuery is the CALL QSERV_RESULT_DELETE(qid) variant: it
// looks the referenced query up in the registry, refuses unless that query
// has already reached a terminal status, and then discards its result.
type ResultDeleteUserQuery struct {
	QueryID   int64
	TargetQID int64

	registry *Registry
	store    *MessageStore

	mu     sync.Mutex
	status Status
}

// NewResultDeleteUserQuery returns a ResultDeleteUserQuery targeting
// targetQID, looked up through registry.
func NewResultDeleteUserQuery(queryID, targetQID int64, registry *Registry) *ResultDeleteUserQuery {
	return &ResultDeleteUserQuery{
		QueryID:   queryID,
		TargetQID: targetQID,
		registry:  registry,
		store:     NewMessageStore(),
		status:    StatusExecuting,
	}
}

// Submit validates that the target query has completed and discards it.
func (q *ResultDeleteUserQuery) Submit(ctx context.Context) error {
	target, err := q.registry.Lookup(q.TargetQID)
	if err != nil {
		q.fail(err)
		return err
	}
	if status := target.Status(); status == StatusExecuting {
		err := czarerr.ErrInvariant.New(fmt.Sprintf("query %d has not completed", q.TargetQID))
		q.fail(err)
		return err
	}
	if err := target.Discard(ctx); err != nil {
		q.fail(err)
		return err
	}
	q.registry.Unregister(q.TargetQID)
	q.mu.Lock()
	q.status = StatusSuccess
	q.mu.Unlock()
	return nil
}

func (q *ResultDeleteUserQuery) fail(err error) {
	q.mu.Lock()
	q.status = StatusError
	q.mu.Unlock()
	q.store.ReportError(czarerr.SystemChunkID, 0, err, time.Now())
}

// Join returns the status Submit already settled.
func (q *ResultDeleteUserQuery) Join(ctx context.Context) (Status, error) {
	return q.Status(), nil
}

// Status reports the last known status without blocking.
func (q *ResultDeleteUserQuery) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status
}

// Kill marks the query aborted; a result-delete call has no in-flight work
// of its own to cancel.
func (q *ResultDeleteUserQuery) Kill() error {
	q.mu.Lock()
	q.status = StatusAborted
	q.mu.Unlock()
	return nil
}

// Discard is a no-op: the target query's result is what Submit discards,
// not this query's own (nonexistent) result.
func (q *ResultDeleteUserQuery) Discard(ctx context.Context) error { return nil }

// GetMessageStore returns the query's accumulated diagnostics.
func (q *ResultDeleteUserQuery) GetMessageStore() *MessageStore { return q.store }

// GetResultLocation always returns "": a result-delete call has no result.
func (q *ResultDeleteUserQuery) GetResultLocation() string { return "" }
