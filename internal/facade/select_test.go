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
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/require"

	"github.com/lsst/qserv-sub011/internal/chunk"
	"github.com/lsst/qserv-sub011/internal/executive"
	"github.com/lsst/qserv-sub011/internal/merger"
	"github.com/lsst/qserv-sub011/internal/session"
)

// fakeSession is a QuerySession test double returning canned chunk
// coverage, so tests don't need to stand up a real chunk partitioning.
type fakeSession struct {
	analyzeErr  error
	finalizeErr error
	specs       chunk.Vector
	chunkQueries map[int32][]string
	mergeStmt   string
	hasMerge    bool
}

func (f *fakeSession) Analyze(sql string) error { return f.analyzeErr }

func (f *fakeSession) Finalize(ctx context.Context) (chunk.Vector, error) {
	return f.specs, f.finalizeErr
}

func (f *fakeSession) IterateChunks(specs chunk.Vector) []session.ChunkQuerySpec {
	var out []session.ChunkQuerySpec
	for _, spec := range specs {
		out = append(out, session.ChunkQuerySpec{ChunkID: spec.ChunkID, Queries: f.chunkQueries[spec.ChunkID]})
	}
	return out
}

func (f *fakeSession) MakeMergeStmt() (string, bool) { return f.mergeStmt, f.hasMerge }

func newTestExecutive(t *testing.T, transport executive.Transport, handler executive.ResultHandler) *executive.Executive {
	t.Helper()
	priQ := executive.NewPriQ()
	priQ.AddPriQueue(1, 1, 4)
	return executive.New(priQ, transport, handler, nil, opentracing.NoopTracer{})
}

func newMockMergerForFacade(t *testing.T, queryID int64) (*merger.InfileMerger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	m := merger.New(merger.Config{DB: db, QueryID: queryID, QueryText: "SELECT 1"})
	return m, mock
}

func TestSelectUserQueryFullLifecycleSucceeds(t *testing.T) {
	mrg, mock := newMockMergerForFacade(t, 1)
	mock.ExpectExec("LOAD DATA LOCAL INFILE").WillReturnResult(sqlmock.NewResult(0, 2))

	transport := executive.NewFakeTransport()
	transport.SetResponse(100, executive.TransportResult{Data: []byte("1\tfoo\n2\tbar\n")})
	exec := newTestExecutive(t, transport, MergeResultHandler(mrg))

	sess := &fakeSession{
		specs:        chunk.Vector{{ChunkID: 100}},
		chunkQueries: map[int32][]string{100: {"SELECT * FROM LSST.Object_100"}},
	}
	q := NewSelectUserQuery(1, "SELECT * FROM Object;", sess, exec, mrg, nil)

	require.NoError(t, q.Submit(context.Background()))
	status, err := q.Join(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.Equal(t, "result_1", q.GetResultLocation())
	require.Len(t, transport.Calls(), 1)
	require.NoError(t, mock.ExpectationsWereMet())

	// Join is idempotent: the merge step does not re-run.
	status2, err2 := q.Join(context.Background())
	require.NoError(t, err2)
	require.Equal(t, StatusSuccess, status2)
}

func TestSelectUserQueryAnalyzeFailurePreventsDispatch(t *testing.T) {
	mrg, _ := newMockMergerForFacade(t, 2)
	transport := executive.NewFakeTransport()
	exec := newTestExecutive(t, transport, MergeResultHandler(mrg))

	sess := &fakeSession{analyzeErr: errors.New("parse error: bad sql")}
	q := NewSelectUserQuery(2, "not sql", sess, exec, mrg, nil)

	err := q.Submit(context.Background())
	require.Error(t, err)
	require.Equal(t, StatusError, q.Status())
	require.Equal(t, 1, q.GetMessageStore().Count())
	require.Empty(t, transport.Calls())
}

func TestSelectUserQueryWorkerFailureSurfacesAsErrorStatus(t *testing.T) {
	mrg, _ := newMockMergerForFacade(t, 3)
	transport := executive.NewFakeTransport()
	transport.SetResponse(100, executive.TransportResult{Err: errors.New("boom")})
	exec := newTestExecutive(t, transport, MergeResultHandler(mrg))

	sess := &fakeSession{
		specs:        chunk.Vector{{ChunkID: 100}},
		chunkQueries: map[int32][]string{100: {"SELECT * FROM LSST.Object_100"}},
	}
	q := NewSelectUserQuery(3, "SELECT * FROM Object;", sess, exec, mrg, nil)

	require.NoError(t, q.Submit(context.Background()))
	status, err := q.Join(context.Background())
	require.Error(t, err)
	require.Equal(t, StatusError, status)
}

func TestSelectUserQueryKillAbortsJoin(t *testing.T) {
	mrg, _ := newMockMergerForFacade(t, 4)
	release := make(chan struct{})
	transport := &blockingFacadeTransport{release: release}
	exec := newTestExecutive(t, transport, MergeResultHandler(mrg))

	sess := &fakeSession{
		specs:        chunk.Vector{{ChunkID: 100}},
		chunkQueries: map[int32][]string{100: {"SELECT * FROM LSST.Object_100"}},
	}
	q := NewSelectUserQuery(4, "SELECT * FROM Object;", sess, exec, mrg, nil)
	require.NoError(t, q.Submit(context.Background()))

	q.Kill()
	status, err := q.Join(context.Background())
	require.Error(t, err)
	require.Equal(t, StatusAborted, status)
	close(release)
}

// TestSelectUserQueryKillDuringSubmitSettlesAborted exercises the race where
// Kill lands while Submit is still queueing per-chunk jobs: exec.Add starts
// refusing with czarerr.ErrCancelled once Squash has run, and that must
// settle the query as aborted, not failed.
func TestSelectUserQueryKillDuringSubmitSettlesAborted(t *testing.T) {
	mrg, _ := newMockMergerForFacade(t, 6)
	transport := executive.NewFakeTransport()
	exec := newTestExecutive(t, transport, MergeResultHandler(mrg))

	sess := &fakeSession{
		specs:        chunk.Vector{{ChunkID: 100}},
		chunkQueries: map[int32][]string{100: {"SELECT * FROM LSST.Object_100"}},
	}
	q := NewSelectUserQuery(6, "SELECT * FROM Object;", sess, exec, mrg, nil)

	exec.Squash()

	err := q.Submit(context.Background())
	require.Error(t, err)
	require.Equal(t, StatusAborted, q.Status())
}

type blockingFacadeTransport struct {
	release chan struct{}
}

func (b *blockingFacadeTransport) Dispatch(ctx context.Context, job executive.JobDescription) <-chan executive.TransportResult {
	ch := make(chan executive.TransportResult, 1)
	go func() {
		select {
		case <-b.release:
			ch <- executive.TransportResult{Data: []byte("ok")}
		case <-ctx.Done():
		}
	}()
	return ch
}

func TestSelectUserQueryCannotSubmitTwice(t *testing.T) {
	mrg, _ := newMockMergerForFacade(t, 5)
	transport := executive.NewFakeTransport()
	exec := newTestExecutive(t, transport, MergeResultHandler(mrg))

	sess := &fakeSession{specs: chunk.Vector{}}
	q := NewSelectUserQuery(5, "SELECT * FROM Object;", sess, exec, mrg, nil)

	require.NoError(t, q.Submit(context.Background()))
	err := q.Submit(context.Background())
	require.Error(t, err)
}
