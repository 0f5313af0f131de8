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

func TestNewBoxFromDegreesContains(t *testing.T) {
	b := NewBoxFromDegrees(-10, -5, 10, 5)
	require.True(t, b.Contains(NewLonLatFromDegrees(0, 0).Vector()))
	require.False(t, b.Contains(NewLonLatFromDegrees(50, 0).Vector()))
}

func TestBoxInvertedLatIsEmpty(t *testing.T) {
	b := NewBox(NewNormalizedAngle(0), NewNormalizedAngle(1), AngleFromDegrees(20), AngleFromDegrees(-20))
	require.True(t, b.IsEmpty())
}

func TestBoxWrappingLongitude(t *testing.T) {
	b := NewBoxFromDegrees(350, -5, 10, 5)
	require.True(t, b.Lon().Wraps())
	require.True(t, b.Contains(NewLonLatFromDegrees(355, 0).Vector()))
	require.True(t, b.Contains(NewLonLatFromDegrees(5, 0).Vector()))
	require.False(t, b.Contains(NewLonLatFromDegrees(180, 0).Vector()))
}

func TestBoxDilatedExpandsBothAxes(t *testing.T) {
	b := NewBoxFromDegrees(-1, -1, 1, 1)
	d := b.Dilated(AngleFromDegrees(10))
	require.True(t, d.Contains(NewLonLatFromDegrees(9, 0).Vector()))
	require.False(t, b.Contains(NewLonLatFromDegrees(9, 0).Vector()))
}

func TestFullBoxContainsEverything(t *testing.T) {
	full := FullBox()
	require.True(t, full.IsFull())
	for _, ll := range []LonLat{
		NewLonLatFromDegrees(0, 0),
		NewLonLatFromDegrees(180, 89),
		NewLonLatFromDegrees(-170, -89),
	} {
		require.True(t, full.Contains(ll.Vector()))
	}
}
