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

package memstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/lsst/qserv-sub011/internal/czarerr"
	"github.com/lsst/qserv-sub011/internal/metastore"
)

// QMeta is an in-memory metastore.QMetaStore backed by a plain map.
type QMeta struct {
	nextID int64

	mu      sync.RWMutex
	queries map[int64]metastore.QueryInfo
}

// NewQMeta returns an empty QMeta.
func NewQMeta() *QMeta {
	return &QMeta{queries: make(map[int64]metastore.QueryInfo)}
}

// RegisterQuery implements metastore.QMetaStore.
func (q *QMeta) RegisterQuery(ctx context.Context, sql, database string, tableNames []string) (int64, error) {
	id := atomic.AddInt64(&q.nextID, 1)
	q.mu.Lock()
	q.queries[id] = metastore.QueryInfo{
		QueryID:    id,
		SQL:        sql,
		Database:   database,
		Status:     metastore.QueryStatusExecuting,
		TableNames: append([]string{}, tableNames...),
	}
	q.mu.Unlock()
	return id, nil
}

// CompleteQuery implements metastore.QMetaStore.
func (q *QMeta) CompleteQuery(ctx context.Context, queryID int64, status string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	info, ok := q.queries[queryID]
	if !ok {
		return czarerr.ErrMissingUserQuery.New(queryID)
	}
	info.Status = status
	q.queries[queryID] = info
	return nil
}

// AddChunks implements metastore.QMetaStore.
func (q *QMeta) AddChunks(ctx context.Context, queryID int64, chunkIDs []int32) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	info, ok := q.queries[queryID]
	if !ok {
		return czarerr.ErrMissingUserQuery.New(queryID)
	}
	info.ChunkIDs = append(info.ChunkIDs, chunkIDs...)
	q.queries[queryID] = info
	return nil
}

// GetQueryInfo implements metastore.QMetaStore.
func (q *QMeta) GetQueryInfo(ctx context.Context, queryID int64) (metastore.QueryInfo, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	info, ok := q.queries[queryID]
	if !ok {
		return metastore.QueryInfo{}, czarerr.ErrMissingUserQuery.New(queryID)
	}
	return info, nil
}

var _ metastore.QMetaStore = (*QMeta)(nil)
