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

func TestUnitVector3dLonLatRoundTrip(t *testing.T) {
	ll := NewLonLatFromDegrees(123, -45)
	v := ll.Vector()
	require.InDelta(t, ll.Lon.Radians(), v.Lon().Radians(), 1e-9)
	require.InDelta(t, ll.Lat.Radians(), v.Lat().Radians(), 1e-9)
}

func TestVector3dNormalize(t *testing.T) {
	v := Vector3d{X: 3, Y: 4, Z: 0}
	u := v.Normalize()
	require.InDelta(t, 1.0, u.Vector3d().Norm(), 1e-12)
}

func TestSquaredChordLengthZeroForSamePoint(t *testing.T) {
	v := NewLonLatFromDegrees(12, 34).Vector()
	require.Equal(t, 0.0, v.SquaredChordLength(v))
}

func TestSquaredChordLengthMaxForAntipodes(t *testing.T) {
	v := NewLonLatFromDegrees(0, 0).Vector()
	w := NewLonLatFromDegrees(180, 0).Vector()
	require.InDelta(t, maxSquaredChordLength, v.SquaredChordLength(w), 1e-9)
}
