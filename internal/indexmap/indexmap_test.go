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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsst/qserv-sub011/internal/chunk"
	"github.com/lsst/qserv-sub011/internal/sphgeom"
)

func testChunker(t *testing.T) *chunk.Chunker {
	t.Helper()
	c, err := chunk.NewChunker(85, 12)
	require.NoError(t, err)
	return c
}

func TestGetAllChunksWithNoRestrictors(t *testing.T) {
	m := New(testChunker(t), nil)
	got, err := m.GetChunks(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, m.GetAllChunks(), got)
}

func TestGetChunksSpatialOnly(t *testing.T) {
	m := New(testChunker(t), nil)
	box := sphgeom.NewBoxFromDegrees(-1, -1, 1, 1)
	got, err := m.GetChunks(context.Background(), []sphgeom.Region{box}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.Less(t, len(got), len(m.GetAllChunks()))
}

func TestGetChunksSpatialOrCombinesMultipleRegions(t *testing.T) {
	m := New(testChunker(t), nil)
	a := sphgeom.NewBoxFromDegrees(-1, -1, 1, 1)
	b := sphgeom.NewBoxFromDegrees(89, 89, 91, 90)
	onlyA, err := m.GetChunks(context.Background(), []sphgeom.Region{a}, nil)
	require.NoError(t, err)
	both, err := m.GetChunks(context.Background(), []sphgeom.Region{a, b}, nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(both), len(onlyA))
}

func TestGetChunksSecIdxWithoutSecondaryIndexErrors(t *testing.T) {
	m := New(testChunker(t), nil)
	_, err := m.GetChunks(context.Background(), nil, []SecIdxRestrictor{
		{Database: "db", Table: "Object", Column: "objectId", Values: []string{"1"}},
	})
	require.Error(t, err)
}
