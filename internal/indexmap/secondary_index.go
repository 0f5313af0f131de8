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

package indexmap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lsst/qserv-sub011/internal/chunk"
	"github.com/lsst/qserv-sub011/internal/czarerr"
)

// SecIdxRestrictor names a director-table lookup: find the chunks (and
// sub-chunks) holding rows whose indexed column takes one of Values.
type SecIdxRestrictor struct {
	Database string
	Table    string
	Column   string
	Values   []string
}

func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '\'' || r == '"' || r == ';' {
			return '_'
		}
		return r
	}, s)
}

func indexTableName(db, table string) string {
	return sanitizeName(db) + "__" + sanitizeName(table)
}

// SecondaryIndex looks up chunk/sub-chunk coverage for director-table
// restrictors against a SQL-backed index table.
type SecondaryIndex struct {
	db            *sql.DB
	indexDatabase string
	queryTimeout  time.Duration
}

// NewSecondaryIndex returns a SecondaryIndex that issues lookups against db,
// reading from tables in indexDatabase (the database holding the director
// index tables, conventionally named "qservMeta" or similar).
func NewSecondaryIndex(db *sql.DB, indexDatabase string) *SecondaryIndex {
	return &SecondaryIndex{db: db, indexDatabase: indexDatabase}
}

// NewSecondaryIndexFromConfig returns a SecondaryIndex configured by cfg: db
// holds the index tables named in cfg.Database, and a
// "queryTimeoutSeconds" option, when present, bounds each lookup.
func NewSecondaryIndexFromConfig(db *sql.DB, cfg LookupConfig) *SecondaryIndex {
	si := NewSecondaryIndex(db, cfg.Database)
	si.queryTimeout = time.Duration(cfg.IntOption("queryTimeoutSeconds", 0)) * time.Second
	return si
}

// Lookup resolves restrictors into a normalized chunk.Vector, OR-ing results
// across restrictors.
func (si *SecondaryIndex) Lookup(ctx context.Context, restrictors []SecIdxRestrictor) (chunk.Vector, error) {
	var out chunk.Vector
	for _, r := range restrictors {
		specs, err := si.lookupOne(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, specs...)
	}
	return chunk.Normalize(out), nil
}

func (si *SecondaryIndex) lookupOne(ctx context.Context, r SecIdxRestrictor) (chunk.Vector, error) {
	if si.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, si.queryTimeout)
		defer cancel()
	}
	table := indexTableName(r.Database, r.Table)
	placeholders := make([]string, len(r.Values))
	args := make([]interface{}, len(r.Values))
	for i, v := range r.Values {
		placeholders[i] = "?"
		args[i] = v
	}
	query := fmt.Sprintf(
		"SELECT chunkId, subChunkId FROM %s.%s WHERE %s IN (%s)",
		si.indexDatabase, table, r.Column, strings.Join(placeholders, ","),
	)
	rows, err := si.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, czarerr.ErrQueryProcessing.Wrap(err, "lookup against "+table)
	}
	defer rows.Close()

	byChunk := map[int32][]int32{}
	var order []int32
	for rows.Next() {
		var chunkID, subChunkID int32
		if err := rows.Scan(&chunkID, &subChunkID); err != nil {
			return nil, czarerr.ErrQueryProcessing.Wrap(err, "scanning row from "+table)
		}
		if _, ok := byChunk[chunkID]; !ok {
			order = append(order, chunkID)
		}
		byChunk[chunkID] = append(byChunk[chunkID], subChunkID)
	}
	if err := rows.Err(); err != nil {
		return nil, czarerr.ErrQueryProcessing.Wrap(err, "iterating rows from "+table)
	}

	out := make(chunk.Vector, 0, len(order))
	for _, id := range order {
		spec := chunk.Spec{ChunkID: id, SubChunks: byChunk[id]}
		spec.Normalize()
		out = append(out, spec)
	}
	return out, nil
}
