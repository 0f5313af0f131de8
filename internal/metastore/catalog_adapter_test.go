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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsst/qserv-sub011/internal/metastore/memstore"
	"github.com/lsst/qserv-sub011/internal/session"
)

func TestCachingCatalogWarmsAndServesSynchronously(t *testing.T) {
	backing := memstore.NewCatalog()
	backing.AddTable("LSST", "Object", memstore.TableDefinition{
		Partitioning: session.SubChunked,
		DirectorCol:  "objectIdObjTest",
		Ra:           "ra",
		Decl:         "decl",
	})

	cache := NewCachingCatalog(backing)
	require.False(t, cache.TableExists("LSST", "Object"))

	require.NoError(t, cache.Warm(context.Background(), "LSST", "Object"))
	require.True(t, cache.TableExists("LSST", "Object"))
	require.Equal(t, session.SubChunked, cache.PartitioningKind("LSST", "Object"))

	col, ok := cache.DirectorColumn("LSST", "Object")
	require.True(t, ok)
	require.Equal(t, "objectIdObjTest", col)

	ra, decl, ok := cache.RaDeclColumns("LSST", "Object")
	require.True(t, ok)
	require.Equal(t, "ra", ra)
	require.Equal(t, "decl", decl)
}

func TestCachingCatalogWarmsNonexistentTableAsAbsent(t *testing.T) {
	backing := memstore.NewCatalog()
	cache := NewCachingCatalog(backing)

	require.NoError(t, cache.Warm(context.Background(), "LSST", "Ghost"))
	require.False(t, cache.TableExists("LSST", "Ghost"))
	_, ok := cache.DirectorColumn("LSST", "Ghost")
	require.False(t, ok)
}
