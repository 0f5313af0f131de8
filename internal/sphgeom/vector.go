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

import "math"

// Vector3d is a 3-dimensional real vector. It need not have unit norm.
type Vector3d struct {
	X, Y, Z float64
}

// Dot returns the dot product of v and w.
func (v Vector3d) Dot(w Vector3d) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product of v and w.
func (v Vector3d) Cross(w Vector3d) Vector3d {
	return Vector3d{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Sub returns v - w.
func (v Vector3d) Sub(w Vector3d) Vector3d {
	return Vector3d{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Add returns v + w.
func (v Vector3d) Add(w Vector3d) Vector3d {
	return Vector3d{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Scale returns v scaled by s.
func (v Vector3d) Scale(s float64) Vector3d {
	return Vector3d{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// SquaredNorm returns the squared Euclidean norm of v.
func (v Vector3d) SquaredNorm() float64 {
	return v.Dot(v)
}

// Norm returns the Euclidean norm of v.
func (v Vector3d) Norm() float64 {
	return math.Sqrt(v.SquaredNorm())
}

// Normalize returns v scaled to unit length as a UnitVector3d. The zero
// vector normalizes to the zero vector (callers must not rely on it
// having unit norm in that degenerate case).
func (v Vector3d) Normalize() UnitVector3d {
	n := v.Norm()
	if n == 0 {
		return UnitVector3d{}
	}
	return UnitVector3d(v.Scale(1 / n))
}

// UnitVector3d is a Vector3d of (approximately) unit norm, used to
// represent points on the sphere.
type UnitVector3d Vector3d

// NewUnitVector3dFromLonLat builds the unit vector for a point given by
// longitude and latitude (both in radians, latitude in [-Pi/2, Pi/2]).
func NewUnitVector3dFromLonLat(lon NormalizedAngle, lat Angle) UnitVector3d {
	cosLat := math.Cos(lat.Radians())
	return UnitVector3d{
		X: math.Cos(lon.Radians()) * cosLat,
		Y: math.Sin(lon.Radians()) * cosLat,
		Z: math.Sin(lat.Radians()),
	}
}

// Vector3d returns v as a plain Vector3d.
func (v UnitVector3d) Vector3d() Vector3d {
	return Vector3d(v)
}

// Dot returns the dot product of v and w.
func (v UnitVector3d) Dot(w UnitVector3d) float64 {
	return Vector3d(v).Dot(Vector3d(w))
}

// SquaredChordLength returns the square of the Euclidean (chord)
// distance between v and w, which is a monotonic, numerically cheaper
// stand-in for angular separation when only ordering matters.
func (v UnitVector3d) SquaredChordLength(w UnitVector3d) float64 {
	d := Vector3d(v).Sub(Vector3d(w))
	return d.SquaredNorm()
}

// Lon returns the longitude of v.
func (v UnitVector3d) Lon() NormalizedAngle {
	if v.X == 0 && v.Y == 0 {
		return 0
	}
	return NewNormalizedAngle(math.Atan2(v.Y, v.X))
}

// Lat returns the latitude of v.
func (v UnitVector3d) Lat() Angle {
	return Angle(math.Atan2(v.Z, math.Hypot(v.X, v.Y)))
}

// Equal reports whether v and w have exactly equal components; no
// scaling or tolerance is applied. Used by orientation's degenerate-input
// checks.
func (v UnitVector3d) Equal(w UnitVector3d) bool {
	return v.X == w.X && v.Y == w.Y && v.Z == w.Z
}
