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

package executive

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestPriQ() *PriQ {
	q := NewPriQ()
	q.AddPriQueue(1, 1, 4)
	q.AddPriQueue(0, 1, 2)
	return q
}

func TestExecutiveJoinSucceedsWithNoFailures(t *testing.T) {
	transport := NewFakeTransport()
	var mu sync.Mutex
	var drained []int32
	handler := func(job JobDescription, result []byte) error {
		mu.Lock()
		defer mu.Unlock()
		drained = append(drained, job.ChunkID)
		return nil
	}
	e := New(newTestPriQ(), transport, handler, nil, nil)

	for i := int32(0); i < 10; i++ {
		require.NoError(t, e.Add(context.Background(), JobDescription{RefNum: int64(i), ChunkID: i, Priority: 1}))
	}
	ok, err := e.Join()
	require.True(t, ok)
	require.NoError(t, err)
	require.Len(t, drained, 10)
	require.Equal(t, 0, e.InFlightCount())
}

func TestExecutiveJoinAggregatesWorkerFailures(t *testing.T) {
	transport := NewFakeTransport()
	transport.SetResponse(5, TransportResult{Err: errors.New("boom")})
	e := New(newTestPriQ(), transport, func(JobDescription, []byte) error { return nil }, nil, nil)

	for i := int32(0); i < 8; i++ {
		require.NoError(t, e.Add(context.Background(), JobDescription{RefNum: int64(i), ChunkID: i, Priority: 1}))
	}
	ok, err := e.Join()
	require.True(t, ok)
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestExecutiveSquashCancelsInFlightAndJoinReturnsFalse(t *testing.T) {
	block := make(chan struct{})
	transport := blockingTransport{release: block}
	e := New(newTestPriQ(), transport, func(JobDescription, []byte) error { return nil }, nil, nil)

	require.NoError(t, e.Add(context.Background(), JobDescription{RefNum: 1, ChunkID: 1, Priority: 1}))
	e.Squash()
	ok, err := e.Join()
	require.False(t, ok)
	require.Error(t, err)
	close(block)
}

func TestExecutiveAddAfterSquashIsCancelled(t *testing.T) {
	e := New(newTestPriQ(), NewFakeTransport(), nil, nil, nil)
	e.Squash()
	err := e.Add(context.Background(), JobDescription{RefNum: 1, ChunkID: 1, Priority: 1})
	require.Error(t, err)
}

func TestExecutiveAddRejectsUnknownPriority(t *testing.T) {
	e := New(newTestPriQ(), NewFakeTransport(), nil, nil, nil)
	err := e.Add(context.Background(), JobDescription{RefNum: 1, ChunkID: 1, Priority: 99})
	require.Error(t, err)
}

func TestPriQRunsUpToMaxConcurrentlyPerLevel(t *testing.T) {
	q := NewPriQ()
	q.AddPriQueue(1, 0, 2)

	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(2)
	for i := 0; i < 2; i++ {
		require.NoError(t, q.Queue(func() {
			started.Done()
			<-release
		}, 1))
	}
	started.Wait()
	require.Equal(t, 2, q.ActiveCount(1))
	close(release)
}

func TestChunkReporterIsCalledPerJob(t *testing.T) {
	var mu sync.Mutex
	reported := map[int32]error{}
	reporter := func(chunkID int32, err error) {
		mu.Lock()
		defer mu.Unlock()
		reported[chunkID] = err
	}
	transport := NewFakeTransport()
	transport.SetResponse(2, TransportResult{Err: errors.New("fail")})
	e := New(newTestPriQ(), transport, func(JobDescription, []byte) error { return nil }, reporter, nil)

	for i := int32(0); i < 3; i++ {
		require.NoError(t, e.Add(context.Background(), JobDescription{RefNum: int64(i), ChunkID: i, Priority: 1}))
	}
	_, _ = e.Join()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reported, 3)
	require.Error(t, reported[2])
	require.NoError(t, reported[0])
}

// blockingTransport never delivers a result until ctx is done, so Squash's
// cancellation is what unblocks the job.
type blockingTransport struct {
	release chan struct{}
}

func (b blockingTransport) Dispatch(ctx context.Context, job JobDescription) <-chan TransportResult {
	ch := make(chan TransportResult)
	go func() {
		select {
		case <-ctx.Done():
		case <-b.release:
			ch <- TransportResult{Data: []byte("late")}
		}
	}()
	return ch
}
