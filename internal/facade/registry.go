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
	"sync"
	"sync/atomic"

	"github.com/lsst/qserv-sub011/internal/czarerr"
)

// Registry maps the integer query ids assigned on query creation to the
// owning UserQuery handle. It is the session registry the proxy addresses
// join/kill/discard calls through.
type Registry struct {
	mu      sync.RWMutex
	queries map[int64]UserQuery
	nextID  int64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{queries: make(map[int64]UserQuery)}
}

// Register assigns uq a fresh query id and returns it.
func (r *Registry) Register(uq UserQuery) int64 {
	id := r.NextID()
	r.Put(id, uq)
	return id
}

// NextID reserves and returns a fresh query id without registering
// anything under it yet. Callers that must construct a UserQuery with its
// id already known (the id feeds the result table name, log fields, and
// so on) reserve the id first, build the query, then Put it.
func (r *Registry) NextID() int64 {
	return atomic.AddInt64(&r.nextID, 1)
}

// Put registers uq under the given (typically previously reserved) id.
func (r *Registry) Put(id int64, uq UserQuery) {
	r.mu.Lock()
	r.queries[id] = uq
	r.mu.Unlock()
}

// Lookup returns the UserQuery registered under id, or
// czarerr.ErrMissingUserQuery if none is.
func (r *Registry) Lookup(id int64) (UserQuery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uq, ok := r.queries[id]
	if !ok {
		return nil, czarerr.ErrMissingUserQuery.New(id)
	}
	return uq, nil
}

// Unregister removes id from the registry. It is a no-op if id is unknown.
func (r *Registry) Unregister(id int64) {
	r.mu.Lock()
	delete(r.queries, id)
	r.mu.Unlock()
}

// Count returns the number of currently registered queries.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.queries)
}
