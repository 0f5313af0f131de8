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

// Matrix3d is a 3x3 real matrix, used by Ellipse to hold the orthogonal
// transform that maps its center to the north pole.
type Matrix3d [3][3]float64

// Identity3d returns the 3x3 identity matrix.
func Identity3d() Matrix3d {
	return Matrix3d{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Mul returns m * v.
func (m Matrix3d) Mul(v Vector3d) Vector3d {
	return Vector3d{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// MulM returns m * n.
func (m Matrix3d) MulM(n Matrix3d) Matrix3d {
	var out Matrix3d
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += m[i][k] * n[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// rotationAboutAxis returns the matrix that rotates vectors by angle
// radians counter-clockwise about axis, using Rodrigues' rotation
// formula.
func rotationAboutAxis(axis Vector3d, angle Angle) Matrix3d {
	u := axis.Normalize()
	s, c := math.Sin(angle.Radians()), math.Cos(angle.Radians())
	cc := 1 - c
	return Matrix3d{
		{c + u.X*u.X*cc, u.X*u.Y*cc - u.Z*s, u.X*u.Z*cc + u.Y*s},
		{u.Y*u.X*cc + u.Z*s, c + u.Y*u.Y*cc, u.Y*u.Z*cc - u.X*s},
		{u.Z*u.X*cc - u.Y*s, u.Z*u.Y*cc + u.X*s, c + u.Z*u.Z*cc},
	}
}

// rotationToPole returns the orthogonal matrix that maps center to the
// north pole (0,0,1), followed by an additional rotation about the pole
// of `orientation` radians (used to align the ellipse's major axis).
func rotationToPole(center UnitVector3d, orientation Angle) Matrix3d {
	north := Vector3d{Z: 1}
	c := center.Vector3d()
	dot := clamp(c.Dot(north), -1, 1)
	theta := Angle(math.Acos(dot))

	var toPole Matrix3d
	if math.Abs(theta.Radians()) < 1e-15 {
		toPole = Identity3d()
	} else if math.Abs(theta.Radians()-Pi) < 1e-15 {
		// Antipodal to the pole: any axis perpendicular to north works.
		toPole = rotationAboutAxis(Vector3d{X: 1}, Angle(Pi))
	} else {
		axis := c.Cross(north)
		toPole = rotationAboutAxis(axis, theta)
	}
	return rotationAboutAxis(north, orientation).MulM(toPole)
}
