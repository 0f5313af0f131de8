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

// Package indexmap resolves a query's spatial and director-table
// restrictors into the set of chunks (and sub-chunks) that can possibly
// hold matching rows.
package indexmap

import (
	"context"

	"github.com/lsst/qserv-sub011/internal/chunk"
	"github.com/lsst/qserv-sub011/internal/czarerr"
	"github.com/lsst/qserv-sub011/internal/sphgeom"
)

// IndexMap combines the sky's chunk partitioning with an optional
// SecondaryIndex to compute chunk coverage for a query's restrictors.
//
// Per the original implementation's documented limitation (DM-2888,
// DM-4017), spatial restrictors are OR'd together, secondary-index
// restrictors are OR'd together, and the two groups are then AND'd: there
// is no support for an arbitrary boolean combination of the two restrictor
// classes.
type IndexMap struct {
	chunker *chunk.Chunker
	si      *SecondaryIndex
}

// New returns an IndexMap over chunker, optionally backed by si for
// director-table (secondary index) lookups. si may be nil if the deployment
// has no director tables.
func New(chunker *chunk.Chunker, si *SecondaryIndex) *IndexMap {
	return &IndexMap{chunker: chunker, si: si}
}

// GetAllChunks returns the chunk coverage for the entire partitioning
// scheme, with every chunk's sub-chunk list left empty (meaning "all").
func (m *IndexMap) GetAllChunks() chunk.Vector {
	ids := m.chunker.GetAllChunks()
	out := make(chunk.Vector, len(ids))
	for i, id := range ids {
		out[i] = chunk.Spec{ChunkID: id}
	}
	return out
}

// GetChunks computes the chunk (and sub-chunk) coverage implied by areas
// (spatial restrictors, OR'd together) and secIdx (director-table
// restrictors, OR'd together), with the two groups AND'd. Either group may
// be empty; if both are empty, GetChunks returns the full partitioning.
func (m *IndexMap) GetChunks(ctx context.Context, areas []sphgeom.Region, secIdx []SecIdxRestrictor) (chunk.Vector, error) {
	spatial, haveSpatial := m.spatialCoverage(areas)
	var indexed chunk.Vector
	haveIndexed := len(secIdx) > 0
	if haveIndexed {
		if m.si == nil {
			return nil, czarerr.ErrQueryProcessing.New("secondary-index restrictor given but no SecondaryIndex is configured")
		}
		var err error
		indexed, err = m.si.Lookup(ctx, secIdx)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case haveSpatial && haveIndexed:
		return chunk.Intersect(spatial, indexed), nil
	case haveSpatial:
		return chunk.Normalize(spatial), nil
	case haveIndexed:
		return chunk.Normalize(indexed), nil
	default:
		return m.GetAllChunks(), nil
	}
}

func (m *IndexMap) spatialCoverage(areas []sphgeom.Region) (chunk.Vector, bool) {
	if len(areas) == 0 {
		return nil, false
	}
	var out chunk.Vector
	for _, r := range areas {
		for _, sc := range m.chunker.GetSubChunksIntersecting(r) {
			out = append(out, chunk.Spec{ChunkID: sc.ChunkID, SubChunks: sc.SubChunkIDs})
		}
	}
	return out, true
}
