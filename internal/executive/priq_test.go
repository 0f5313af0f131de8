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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCanAdmitLockedBlocksBehindUnmetHigherMinimum exercises the admission
// predicate directly: a low-priority level with room under its own max must
// still be refused while a higher-priority level has pending work and
// hasn't reached its guaranteed minimum yet.
func TestCanAdmitLockedBlocksBehindUnmetHigherMinimum(t *testing.T) {
	q := NewPriQ()
	q.AddPriQueue(1, 2, 2) // high priority: guaranteed minimum of 2
	q.AddPriQueue(0, 0, 5) // low priority: no guaranteed minimum

	high := q.levels[1]
	low := q.levels[0]

	high.pendingCount = 1
	high.active = 0 // below its minimum of 2, with work still waiting

	q.mu.Lock()
	require.False(t, q.canAdmitLocked(low), "low priority must wait while high priority is below its guaranteed minimum")
	require.True(t, q.canAdmitLocked(high), "high priority itself is never blocked by its own unmet minimum")
	q.mu.Unlock()

	// Once high priority reaches its minimum, low priority is free to run.
	high.active = 2
	high.pendingCount = 0
	q.mu.Lock()
	require.True(t, q.canAdmitLocked(low))
	q.mu.Unlock()
}

// TestCanAdmitLockedIgnoresUnmetMinimumWithNoPendingWork: a higher-priority
// level below its minimum but with nothing queued right now must not starve
// lower-priority work - there's no pending demand left to reserve capacity
// for.
func TestCanAdmitLockedIgnoresUnmetMinimumWithNoPendingWork(t *testing.T) {
	q := NewPriQ()
	q.AddPriQueue(1, 2, 2)
	q.AddPriQueue(0, 0, 5)

	high := q.levels[1]
	low := q.levels[0]
	high.active = 0
	high.pendingCount = 0

	q.mu.Lock()
	defer q.mu.Unlock()
	require.True(t, q.canAdmitLocked(low))
}

// TestCanAdmitLockedEnforcesOwnMax confirms the per-level ceiling is still
// respected regardless of other levels.
func TestCanAdmitLockedEnforcesOwnMax(t *testing.T) {
	q := NewPriQ()
	q.AddPriQueue(0, 0, 2)
	lvl := q.levels[0]
	lvl.active = 2

	q.mu.Lock()
	defer q.mu.Unlock()
	require.False(t, q.canAdmitLocked(lvl))
}

// TestPriQAdmitsHigherPriorityWhileLowerRuns is a black-box check that a
// lower-priority job dispatched first does not prevent a higher-priority
// job from being admitted - both levels make progress independently once
// the higher one is not competing for a reserved minimum.
func TestPriQAdmitsHigherPriorityWhileLowerRuns(t *testing.T) {
	q := NewPriQ()
	q.AddPriQueue(1, 1, 1)
	q.AddPriQueue(0, 0, 1)

	lowRelease := make(chan struct{})
	var lowStarted, highStarted sync.WaitGroup
	lowStarted.Add(1)
	highStarted.Add(1)

	require.NoError(t, q.Queue(func() {
		lowStarted.Done()
		<-lowRelease
	}, 0))
	lowStarted.Wait()
	require.Equal(t, 1, q.ActiveCount(0))

	require.NoError(t, q.Queue(func() {
		highStarted.Done()
	}, 1))
	highStarted.Wait()
	require.Equal(t, 1, q.ActiveCount(1))

	close(lowRelease)
}
