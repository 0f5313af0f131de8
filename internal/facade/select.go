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
	"strings"
	"sync"
	"sync/atomic"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/lsst/qserv-sub011/internal/chunk"
	"github.com/lsst/qserv-sub011/internal/czarerr"
	"github.com/lsst/qserv-sub011/internal/executive"
	"github.com/lsst/qserv-sub011/internal/merger"
	"github.com/lsst/qserv-sub011/internal/session"
)

// QuerySession is the subset of *session.Session the SELECT variant
// drives: analyze the text, resolve chunk coverage, expand it into
// per-chunk dispatchable queries, and report whether a merge stage is
// needed. Accepting this interface (rather than *session.Session
// directly) lets tests drive SelectUserQuery without standing up a real
// chunk partitioning.
type QuerySession interface {
	Analyze(sql string) error
	Finalize(ctx context.Context) (chunk.Vector, error)
	IterateChunks(specs chunk.Vector) []session.ChunkQuerySpec
	MakeMergeStmt() (stmt string, ok bool)
}

// SelectUserQuery is the SELECT variant: it wires together a query
// session, the executive, and the result merger, the way
// UserQuerySelect ties its analyze/execute/merge collaborators together.
type SelectUserQuery struct {
	QueryID  int64
	SQL      string
	Priority int
	// ResourceAddrFor resolves which worker a chunk's job should target.
	// Defaults to a constant address when nil, which is enough for tests
	// and for single-worker deployments.
	ResourceAddrFor func(chunkID int32) string

	session QuerySession
	exec    *executive.Executive
	mrg     *merger.InfileMerger
	store   *MessageStore
	log     *logrus.Entry

	mu         sync.Mutex
	submitted  bool
	status     Status
	joinErr    error
	resultLoc  string
	refCounter int64
}

// NewSelectUserQuery returns a SelectUserQuery ready to Submit sql under
// queryID. sess, exec and mrg must already be configured for this query
// (the session's catalog/index, the executive's transport/priority queue,
// and the merger's target table).
func NewSelectUserQuery(queryID int64, sql string, sess QuerySession, exec *executive.Executive, mrg *merger.InfileMerger, resourceAddrFor func(int32) string) *SelectUserQuery {
	if resourceAddrFor == nil {
		resourceAddrFor = func(int32) string { return "worker" }
	}
	correlationID := uuid.NewV4().String()
	return &SelectUserQuery{
		QueryID:         queryID,
		SQL:             sql,
		Priority:        1,
		ResourceAddrFor: resourceAddrFor,
		session:         sess,
		exec:            exec,
		mrg:             mrg,
		store:           NewMessageStore(),
		status:          StatusExecuting,
		log:             logrus.WithField("component", "facade.select").WithField("queryId", queryID).WithField("correlationId", correlationID),
	}
}

// MergeResultHandler returns the executive.ResultHandler that feeds a
// worker's successful result into mrg. Results are a toy wire format: rows
// separated by newlines, fields separated by tabs - the concrete worker
// protocol is out of scope, per the façade's own non-goals.
func MergeResultHandler(mrg *merger.InfileMerger) executive.ResultHandler {
	return func(job executive.JobDescription, result []byte) error {
		text := strings.TrimRight(string(result), "\n")
		if text == "" {
			return nil
		}
		var rows [][]string
		for _, line := range strings.Split(text, "\n") {
			rows = append(rows, strings.Split(line, "\t"))
		}
		return mrg.MergeChunkResult(context.Background(), job.ChunkID, rows)
	}
}

// Submit analyzes the query, resolves its chunk coverage, and queues one
// executive job per chunk (or chunk fragment). It returns once every job
// has been queued; it does not wait for them to run.
func (q *SelectUserQuery) Submit(ctx context.Context) error {
	q.mu.Lock()
	if q.submitted {
		q.mu.Unlock()
		return czarerr.ErrInvariant.New("query already submitted")
	}
	q.submitted = true
	q.mu.Unlock()

	q.log.WithField("sql", q.SQL).Info("submitting query")

	if err := q.session.Analyze(q.SQL); err != nil {
		q.log.WithError(err).Warn("analyze failed")
		q.fail(err)
		return err
	}
	specs, err := q.session.Finalize(ctx)
	if err != nil {
		q.log.WithError(err).Warn("chunk resolution failed")
		q.fail(err)
		return err
	}
	for _, cqs := range q.session.IterateChunks(specs) {
		ref := atomic.AddInt64(&q.refCounter, 1)
		job := executive.JobDescription{
			RefNum:       ref,
			ResourceAddr: q.ResourceAddrFor(cqs.ChunkID),
			ChunkID:      cqs.ChunkID,
			TaskMsg:      []byte(strings.Join(cqs.Queries, ";\n")),
			Priority:     q.Priority,
		}
		if err := q.exec.Add(ctx, job); err != nil {
			q.store.ReportError(cqs.ChunkID, 0, err, time.Now())
			if czarerr.ErrCancelled.Is(err) {
				q.settle(StatusAborted, err)
			} else {
				q.fail(err)
			}
			return err
		}
	}
	return nil
}

// Join waits for every dispatched chunk to finish, then runs the merger's
// finalize step. Calling Join again after it has already settled a
// terminal status just replays that status - the merge step runs exactly
// once.
func (q *SelectUserQuery) Join(ctx context.Context) (Status, error) {
	q.mu.Lock()
	if q.status != StatusExecuting {
		status, err := q.status, q.joinErr
		q.mu.Unlock()
		return status, err
	}
	q.mu.Unlock()

	ok, err := q.exec.Join()
	if !ok {
		q.settle(StatusAborted, err)
		return StatusAborted, err
	}
	if err != nil {
		q.store.ReportError(czarerr.SystemChunkID, czarerr.CodeMergeFailure, err, time.Now())
		q.settle(StatusError, err)
		return StatusError, err
	}

	mergeStmt, _ := q.session.MakeMergeStmt()
	table, ferr := q.mrg.Finalize(ctx, mergeStmt)
	if ferr != nil {
		q.store.ReportError(czarerr.SystemChunkID, czarerr.CodeMergeFailure, ferr, time.Now())
		q.settle(StatusError, ferr)
		return StatusError, ferr
	}

	q.mu.Lock()
	q.resultLoc = table
	q.mu.Unlock()
	q.settle(StatusSuccess, nil)
	q.log.WithField("resultTable", table).Info("query completed")
	return StatusSuccess, nil
}

func (q *SelectUserQuery) settle(status Status, err error) {
	q.mu.Lock()
	q.status = status
	q.joinErr = err
	q.mu.Unlock()
}

func (q *SelectUserQuery) fail(err error) {
	q.store.ReportError(czarerr.SystemChunkID, 0, err, time.Now())
	q.settle(StatusError, err)
}

// Status reports the last known status without blocking.
func (q *SelectUserQuery) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status
}

// Kill cancels every in-flight chunk job. A subsequent Join observes
// StatusAborted.
func (q *SelectUserQuery) Kill() error {
	q.log.Info("killing query")
	q.exec.Squash()
	return nil
}

// Discard drops the result tables. It refuses until Join has finalized the
// result, per the merger's own finished-flag guard.
func (q *SelectUserQuery) Discard(ctx context.Context) error {
	return q.mrg.Discard(ctx)
}

// GetMessageStore returns the query's accumulated diagnostics.
func (q *SelectUserQuery) GetMessageStore() *MessageStore {
	return q.store
}

// GetResultLocation returns the final result table name, set once Join has
// completed successfully.
func (q *SelectUserQuery) GetResultLocation() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.resultLoc
}
