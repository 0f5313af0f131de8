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

// LonLat is a point in spherical coordinates, in radians.
type LonLat struct {
	Lon NormalizedAngle
	Lat Angle
}

// NewLonLatFromDegrees builds a LonLat from degree values.
func NewLonLatFromDegrees(lonDeg, latDeg float64) LonLat {
	return LonLat{
		Lon: NewNormalizedAngle(AngleFromDegrees(lonDeg).Radians()),
		Lat: AngleFromDegrees(latDeg),
	}
}

// Vector returns the unit vector corresponding to ll.
func (ll LonLat) Vector() UnitVector3d {
	return NewUnitVector3dFromLonLat(ll.Lon, ll.Lat)
}
