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

package sphgeom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCircleComplementDegenerateMapsToFull pins the resolution of the
// open question on whether a single-point or empty circle's complement
// should be the full circle: it should, matching the original
// implementation's behavior.
func TestCircleComplementDegenerateMapsToFull(t *testing.T) {
	point := NewCircle(NewLonLatFromDegrees(10, 20).Vector(), 0)
	require.True(t, point.Complement().IsFull())

	empty := EmptyCircle()
	require.True(t, empty.Complement().IsFull())
}

func TestCircleComplementOfFullIsFull(t *testing.T) {
	require.True(t, FullCircle().Complement().IsFull())
}

func TestCircleComplementInvolution(t *testing.T) {
	c := NewCircle(NewLonLatFromDegrees(30, -15).Vector(), 0.3)
	cc := c.Complement().Complement()
	require.InDelta(t, c.squaredChordRadius, cc.squaredChordRadius, 1e-12)
	require.InDelta(t, c.center.X, cc.center.X, 1e-12)
	require.InDelta(t, c.center.Y, cc.center.Y, 1e-12)
	require.InDelta(t, c.center.Z, cc.center.Z, 1e-12)
}

func TestCircleComplementDisjointFromOriginal(t *testing.T) {
	c := NewCircle(NewLonLatFromDegrees(0, 0).Vector(), 0.2)
	comp := c.Complement()
	center := c.center
	require.True(t, c.Contains(center))
	require.False(t, comp.Contains(center))
}

func TestCircleBoundingBoxCoversPole(t *testing.T) {
	c := NewCircle(NewLonLatFromDegrees(0, 89).Vector(), 0.1)
	bbox := c.BoundingBox()
	require.True(t, bbox.Lon().IsFull())
}
