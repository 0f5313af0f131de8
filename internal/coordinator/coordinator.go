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

// Package coordinator wraps the UserQuery session registry behind the
// exact set of by-id operations spec.md's "toward the front-end proxy"
// interface names, as Go methods on a single embeddable type - the same
// "one object a server-side integration holds" role the teacher's
// top-level Engine plays.
package coordinator

import (
	"context"

	"github.com/lsst/qserv-sub011/internal/facade"
)

// QueryFactory builds the UserQuery variant for a freshly reserved id and
// SQL text. The caller decides, by inspecting sql, which variant to build
// - SELECT, CALL QSERV_MANAGER(...), or CALL QSERV_RESULT_DELETE(...).
type QueryFactory func(queryID int64, sql string) facade.UserQuery

// Coordinator is the single embeddable façade: it reserves ids, builds
// UserQuery variants through a factory, and dispatches by-id operations to
// the registered handle.
type Coordinator struct {
	registry *facade.Registry
	factory  QueryFactory
}

// New returns a Coordinator that builds each query's UserQuery via factory
// and tracks it in registry.
func New(registry *facade.Registry, factory QueryFactory) *Coordinator {
	return &Coordinator{registry: registry, factory: factory}
}

// NewQuery reserves a query id, builds its UserQuery variant, and
// registers it. It does not submit the query.
func (c *Coordinator) NewQuery(sql string) int64 {
	id := c.registry.NextID()
	uq := c.factory(id, sql)
	c.registry.Put(id, uq)
	return id
}

// Submit starts id's query running.
func (c *Coordinator) Submit(ctx context.Context, id int64) error {
	uq, err := c.registry.Lookup(id)
	if err != nil {
		return err
	}
	return uq.Submit(ctx)
}

// Join waits for id's query to reach a terminal state and reports it as
// "SUCCESS" or "ERROR", matching the proxy-facing join enumeration.
// "UNKNOWN" (the enumeration's third member, for an id the registry never
// saw) surfaces here as a Go error instead, since callers can already
// branch on that directly.
func (c *Coordinator) Join(ctx context.Context, id int64) (string, error) {
	uq, err := c.registry.Lookup(id)
	if err != nil {
		return "", err
	}
	status, joinErr := uq.Join(ctx)
	if status == facade.StatusSuccess {
		return "SUCCESS", nil
	}
	return "ERROR", joinErr
}

// Kill cancels id's query.
func (c *Coordinator) Kill(id int64) error {
	uq, err := c.registry.Lookup(id)
	if err != nil {
		return err
	}
	return uq.Kill()
}

// Discard drops id's result.
func (c *Coordinator) Discard(ctx context.Context, id int64) error {
	uq, err := c.registry.Lookup(id)
	if err != nil {
		return err
	}
	return uq.Discard(ctx)
}

// GetMessageCount returns the number of diagnostics recorded against id.
func (c *Coordinator) GetMessageCount(id int64) (int, error) {
	uq, err := c.registry.Lookup(id)
	if err != nil {
		return 0, err
	}
	return uq.GetMessageStore().Count(), nil
}

// GetMessage returns the idx'th diagnostic recorded against id.
func (c *Coordinator) GetMessage(id int64, idx int) (facade.Message, error) {
	uq, err := c.registry.Lookup(id)
	if err != nil {
		return facade.Message{}, err
	}
	return uq.GetMessageStore().Get(idx)
}

// GetQueryProcessingError returns the first diagnostic's description
// recorded against id, or "" if none has been recorded.
func (c *Coordinator) GetQueryProcessingError(id int64) (string, error) {
	uq, err := c.registry.Lookup(id)
	if err != nil {
		return "", err
	}
	store := uq.GetMessageStore()
	if store.Count() == 0 {
		return "", nil
	}
	msg, err := store.Get(0)
	if err != nil {
		return "", err
	}
	return msg.Description, nil
}

// GetResultLocation returns id's result table name, once it has one.
func (c *Coordinator) GetResultLocation(id int64) (string, error) {
	uq, err := c.registry.Lookup(id)
	if err != nil {
		return "", err
	}
	return uq.GetResultLocation(), nil
}
