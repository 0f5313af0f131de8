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

// Package memstore provides plain-map, mutex-guarded implementations of
// metastore.CatalogStore and metastore.QMetaStore for tests and local,
// single-process deployments - the same role the teacher's own in-memory
// database plays in standing in for a real storage engine.
package memstore

import (
	"context"
	"sync"

	"github.com/lsst/qserv-sub011/internal/czarerr"
	"github.com/lsst/qserv-sub011/internal/metastore"
	"github.com/lsst/qserv-sub011/internal/session"
)

// TableDefinition seeds one table's catalog entry.
type TableDefinition struct {
	Partitioning session.PartitioningKind
	DirectorCol  string
	Ra, Decl     string
}

// Catalog is an in-memory metastore.CatalogStore backed by plain maps.
type Catalog struct {
	mu        sync.RWMutex
	striping  map[string]metastore.StripingParams
	empty     map[string]map[int32]struct{}
	tables    map[string]TableDefinition
}

// NewCatalog returns an empty Catalog; use AddTable/SetStripingParams/
// SetEmptyChunks to seed it.
func NewCatalog() *Catalog {
	return &Catalog{
		striping: make(map[string]metastore.StripingParams),
		empty:    make(map[string]map[int32]struct{}),
		tables:   make(map[string]TableDefinition),
	}
}

func tableKey(db, table string) string { return db + "." + table }

// AddTable registers def under db.table.
func (c *Catalog) AddTable(db, table string, def TableDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[tableKey(db, table)] = def
}

// SetStripingParams registers db's partitioning geometry.
func (c *Catalog) SetStripingParams(db string, params metastore.StripingParams) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.striping[db] = params
}

// SetEmptyChunks registers db's empty-chunk set.
func (c *Catalog) SetEmptyChunks(db string, chunkIDs []int32) {
	set := make(map[int32]struct{}, len(chunkIDs))
	for _, id := range chunkIDs {
		set[id] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.empty[db] = set
}

// StripingParams implements metastore.CatalogStore.
func (c *Catalog) StripingParams(ctx context.Context, db string) (metastore.StripingParams, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	params, ok := c.striping[db]
	if !ok {
		return metastore.StripingParams{}, czarerr.ErrAnalysis.New("no striping parameters registered for database " + db)
	}
	return params, nil
}

// EmptyChunks implements metastore.CatalogStore.
func (c *Catalog) EmptyChunks(ctx context.Context, db string) (map[int32]struct{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int32]struct{}, len(c.empty[db]))
	for id := range c.empty[db] {
		out[id] = struct{}{}
	}
	return out, nil
}

// TableExists implements metastore.CatalogStore.
func (c *Catalog) TableExists(ctx context.Context, db, table string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tables[tableKey(db, table)]
	return ok, nil
}

// PartitioningKind implements metastore.CatalogStore.
func (c *Catalog) PartitioningKind(ctx context.Context, db, table string) (session.PartitioningKind, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tables[tableKey(db, table)].Partitioning, nil
}

// DirectorColumn implements metastore.CatalogStore.
func (c *Catalog) DirectorColumn(ctx context.Context, db, table string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.tables[tableKey(db, table)]
	if !ok || def.DirectorCol == "" {
		return "", false, nil
	}
	return def.DirectorCol, true, nil
}

// RaDeclColumns implements metastore.CatalogStore.
func (c *Catalog) RaDeclColumns(ctx context.Context, db, table string) (string, string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.tables[tableKey(db, table)]
	if !ok || def.Ra == "" {
		return "", "", false, nil
	}
	return def.Ra, def.Decl, true, nil
}

var _ metastore.CatalogStore = (*Catalog)(nil)
