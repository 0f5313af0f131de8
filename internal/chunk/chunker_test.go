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

package chunk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsst/qserv-sub011/internal/sphgeom"
)

func TestNewChunkerRejectsNonPositiveCounts(t *testing.T) {
	_, err := NewChunker(0, 5)
	require.Error(t, err)
	_, err = NewChunker(5, 0)
	require.Error(t, err)
}

func TestNewChunkerRejectsOversizedSubdivision(t *testing.T) {
	_, err := NewChunker(1000000, 1000000)
	require.Error(t, err)
}

func TestGetAllChunksNonEmpty(t *testing.T) {
	c, err := NewChunker(85, 12)
	require.NoError(t, err)
	ids := c.GetAllChunks()
	require.NotEmpty(t, ids)
	seen := map[int32]bool{}
	for _, id := range ids {
		require.False(t, seen[id], "duplicate chunk id %d", id)
		seen[id] = true
	}
}

func TestGetAllSubChunksNonEmpty(t *testing.T) {
	c, err := NewChunker(85, 12)
	require.NoError(t, err)
	all := c.GetAllChunks()
	require.NotEmpty(t, all)
	sub := c.GetAllSubChunks(all[0])
	require.NotEmpty(t, sub)
}

func TestGetChunksIntersectingFullSphereReturnsAllChunks(t *testing.T) {
	c, err := NewChunker(85, 12)
	require.NoError(t, err)
	full := sphgeom.FullBox()
	got := c.GetChunksIntersecting(full)
	want := c.GetAllChunks()
	require.ElementsMatch(t, want, got)
}

func TestGetChunksIntersectingSmallRegionIsSubsetOfAll(t *testing.T) {
	c, err := NewChunker(85, 12)
	require.NoError(t, err)
	box := sphgeom.NewBoxFromDegrees(-1, -1, 1, 1)
	got := c.GetChunksIntersecting(box)
	require.NotEmpty(t, got)
	all := map[int32]bool{}
	for _, id := range c.GetAllChunks() {
		all[id] = true
	}
	for _, id := range got {
		require.True(t, all[id])
	}
}

func TestGetSubChunksIntersectingMatchesChunks(t *testing.T) {
	c, err := NewChunker(85, 12)
	require.NoError(t, err)
	box := sphgeom.NewBoxFromDegrees(-2, -2, 2, 2)
	chunks := c.GetChunksIntersecting(box)
	subChunks := c.GetSubChunksIntersecting(box)
	require.Len(t, subChunks, len(chunks))
	for _, sc := range subChunks {
		require.NotEmpty(t, sc.SubChunkIDs)
	}
}
