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

package metastore

import (
	"context"
	"sync"

	"github.com/lsst/qserv-sub011/internal/session"
)

type tableMeta struct {
	exists       bool
	partitioning session.PartitioningKind
	directorCol  string
	hasDirector  bool
	ra, decl     string
	hasRaDecl    bool
}

// CachingCatalog adapts a CatalogStore (context-aware, erroring, likely
// backed by a real database round trip) into session.Catalog (synchronous,
// infallible - the session's rewrite plugins have no room for either). A
// table must be Warm'd before the session package will see it; this keeps
// the warm-up's I/O and error handling out of the hot analysis path, the
// same split the teacher draws between a table's catalog registration and
// its query-time lookup.
type CachingCatalog struct {
	store CatalogStore

	mu     sync.RWMutex
	tables map[string]tableMeta
}

// NewCachingCatalog returns a CachingCatalog backed by store.
func NewCachingCatalog(store CatalogStore) *CachingCatalog {
	return &CachingCatalog{store: store, tables: make(map[string]tableMeta)}
}

func catalogKey(db, table string) string { return db + "." + table }

// Warm loads db.table's metadata from the backing store and caches it.
// Call it once per table before the session package's Catalog interface is
// consulted for that table - typically at startup, or the first time a
// query references a previously-unseen table.
func (c *CachingCatalog) Warm(ctx context.Context, db, table string) error {
	exists, err := c.store.TableExists(ctx, db, table)
	if err != nil {
		return err
	}
	meta := tableMeta{exists: exists}
	if exists {
		meta.partitioning, err = c.store.PartitioningKind(ctx, db, table)
		if err != nil {
			return err
		}
		if col, ok, derr := c.store.DirectorColumn(ctx, db, table); derr != nil {
			return derr
		} else if ok {
			meta.directorCol, meta.hasDirector = col, true
		}
		if ra, decl, ok, rerr := c.store.RaDeclColumns(ctx, db, table); rerr != nil {
			return rerr
		} else if ok {
			meta.ra, meta.decl, meta.hasRaDecl = ra, decl, true
		}
	}

	c.mu.Lock()
	c.tables[catalogKey(db, table)] = meta
	c.mu.Unlock()
	return nil
}

// TableExists implements session.Catalog.
func (c *CachingCatalog) TableExists(db, table string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tables[catalogKey(db, table)].exists
}

// PartitioningKind implements session.Catalog.
func (c *CachingCatalog) PartitioningKind(db, table string) session.PartitioningKind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tables[catalogKey(db, table)].partitioning
}

// DirectorColumn implements session.Catalog.
func (c *CachingCatalog) DirectorColumn(db, table string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := c.tables[catalogKey(db, table)]
	return m.directorCol, m.hasDirector
}

// RaDeclColumns implements session.Catalog.
func (c *CachingCatalog) RaDeclColumns(db, table string) (string, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := c.tables[catalogKey(db, table)]
	return m.ra, m.decl, m.hasRaDecl
}

var _ session.Catalog = (*CachingCatalog)(nil)
