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
	"sync"
)

// FakeTransport is an in-memory Transport test double: it records every
// dispatched job and replies with a configured canned response (default
// success with an empty payload) keyed by chunk id.
type FakeTransport struct {
	mu        sync.Mutex
	responses map[int32]TransportResult
	calls     []JobDescription
}

// NewFakeTransport returns a FakeTransport with no canned responses
// configured - every job succeeds with an empty payload until SetResponse
// says otherwise.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{responses: make(map[int32]TransportResult)}
}

// SetResponse configures the result FakeTransport delivers for jobs
// targeting chunkID.
func (f *FakeTransport) SetResponse(chunkID int32, res TransportResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[chunkID] = res
}

// Dispatch implements Transport.
func (f *FakeTransport) Dispatch(ctx context.Context, job JobDescription) <-chan TransportResult {
	ch := make(chan TransportResult, 1)
	f.mu.Lock()
	f.calls = append(f.calls, job)
	res, ok := f.responses[job.ChunkID]
	f.mu.Unlock()
	if !ok {
		res = TransportResult{}
	}
	go func() {
		select {
		case <-ctx.Done():
		case ch <- res:
		}
	}()
	return ch
}

// Calls returns every job Dispatch has been called with, in call order.
func (f *FakeTransport) Calls() []JobDescription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]JobDescription{}, f.calls...)
}
