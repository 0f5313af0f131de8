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

func TestOrientationAntisymmetry(t *testing.T) {
	a := NewLonLatFromDegrees(10, 20).Vector()
	b := NewLonLatFromDegrees(30, -5).Vector()
	c := NewLonLatFromDegrees(-40, 60).Vector()

	require.Equal(t, Orientation(a, b, c), -Orientation(b, a, c))
	require.Equal(t, Orientation(a, b, c), -Orientation(a, c, b))
}

func TestOrientationZeroOnRepeatedInput(t *testing.T) {
	a := NewLonLatFromDegrees(10, 20).Vector()
	b := NewLonLatFromDegrees(30, -5).Vector()

	require.Equal(t, 0, Orientation(a, a, b))
	require.Equal(t, 0, Orientation(a, b, a))
	require.Equal(t, 0, Orientation(a, b, b))
}

func TestOrientationExactFallbackAgreesWithApprox(t *testing.T) {
	// Three points chosen to be very nearly colinear so the fast path's
	// error bound cannot rule out a sign flip, forcing the exact path.
	a := UnitVector3d{X: 1, Y: 0, Z: 0}
	b := UnitVector3d{X: 1, Y: 1e-20, Z: 0}.Vector3d().Normalize()
	c := UnitVector3d{X: -1, Y: 0, Z: 0}

	got := Orientation(a, b, c)
	want := orientationExact(a.Vector3d(), b.Vector3d(), c.Vector3d())
	require.Equal(t, want, got)
}

func TestOrientationDeterministic(t *testing.T) {
	a := NewLonLatFromDegrees(1, 1).Vector()
	b := NewLonLatFromDegrees(2, 2).Vector()
	c := NewLonLatFromDegrees(3, -1).Vector()

	first := Orientation(a, b, c)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, Orientation(a, b, c))
	}
}
