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

// Package metastore declares the coordinator's two external persistence
// boundaries - the schema/striping/empty-chunk metadata store and the
// query-lifecycle (QMeta) store - as interfaces only, plus an in-memory
// reference implementation of each under memstore for tests and local
// wiring.
package metastore

import (
	"context"

	"github.com/lsst/qserv-sub011/internal/session"
)

// StripingParams names a database's chunk/sub-chunk partitioning
// geometry.
type StripingParams struct {
	Stripes             int
	SubStripesPerStripe int
}

// CatalogStore is the read-only key/value abstraction over the persistent
// metadata store: striping parameters, empty-chunk lists, table existence,
// partitioning kind, and director-column metadata. The coordinator never
// persists any of this itself.
type CatalogStore interface {
	StripingParams(ctx context.Context, db string) (StripingParams, error)
	EmptyChunks(ctx context.Context, db string) (map[int32]struct{}, error)
	TableExists(ctx context.Context, db, table string) (bool, error)
	PartitioningKind(ctx context.Context, db, table string) (session.PartitioningKind, error)
	DirectorColumn(ctx context.Context, db, table string) (column string, ok bool, err error)
	RaDeclColumns(ctx context.Context, db, table string) (ra, decl string, ok bool, err error)
}

// QueryInfo is the persisted record of one user query's lifecycle,
// returned by QMetaStore.GetQueryInfo.
type QueryInfo struct {
	QueryID    int64
	SQL        string
	Database   string
	Status     string
	TableNames []string
	ChunkIDs   []int32
}

// Query status strings, matching the QMeta status column's enumeration.
const (
	QueryStatusExecuting = "EXECUTING"
	QueryStatusCompleted = "COMPLETED"
	QueryStatusFailed    = "FAILED"
	QueryStatusAborted   = "ABORTED"
)

// QMetaStore is the read/write CRUD abstraction over the persistent
// query-metadata store.
type QMetaStore interface {
	RegisterQuery(ctx context.Context, sql, database string, tableNames []string) (queryID int64, err error)
	CompleteQuery(ctx context.Context, queryID int64, status string) error
	AddChunks(ctx context.Context, queryID int64, chunkIDs []int32) error
	GetQueryInfo(ctx context.Context, queryID int64) (QueryInfo, error)
}
