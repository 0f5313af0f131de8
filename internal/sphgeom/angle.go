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

// Package sphgeom implements the spherical-geometry kernel that chunk
// resolution is built on: angles, longitude/latitude boxes, circles,
// ellipses, convex polygons, and the exact orientation predicate they all
// rely on for pairwise relation tests.
package sphgeom

import "math"

const (
	// Pi is the ratio of a circle's circumference to its diameter, kept
	// as a named constant rather than math.Pi at every call site because
	// several formulas below read more clearly in terms of fractions of
	// Pi.
	Pi = math.Pi
	twoPi = 2 * Pi
)

// Angle is a real-valued angle in radians. Arithmetic on Angle preserves
// finite-or-NaN: combining finite angles yields a finite angle, and NaN
// propagates.
type Angle float64

// NewAngle returns the Angle for the given radian value.
func NewAngle(radians float64) Angle {
	return Angle(radians)
}

// AngleFromDegrees converts a value in degrees to an Angle in radians.
func AngleFromDegrees(degrees float64) Angle {
	return Angle(degrees * Pi / 180)
}

// Radians returns the angle's value in radians.
func (a Angle) Radians() float64 {
	return float64(a)
}

// Degrees returns the angle's value in degrees.
func (a Angle) Degrees() float64 {
	return float64(a) * 180 / Pi
}

// IsNaN reports whether a is NaN.
func (a Angle) IsNaN() bool {
	return math.IsNaN(float64(a))
}

// Abs returns the absolute value of a.
func (a Angle) Abs() Angle {
	return Angle(math.Abs(float64(a)))
}

func (a Angle) String() string {
	return floatString(a.Radians()) + "r"
}

// NormalizedAngle is an Angle constrained to [0, 2*Pi), or NaN.
// Normalization happens exactly at construction.
type NormalizedAngle float64

// NewNormalizedAngle reduces radians into [0, 2*Pi) and returns the
// result. NaN maps to NaN.
func NewNormalizedAngle(radians float64) NormalizedAngle {
	if math.IsNaN(radians) {
		return NormalizedAngle(math.NaN())
	}
	r := math.Mod(radians, twoPi)
	if r < 0 {
		r += twoPi
	}
	// math.Mod can return twoPi itself for inputs extremely close to a
	// multiple of twoPi because of floating point rounding; clamp back
	// into range so the invariant "always < 2*Pi" holds exactly.
	if r >= twoPi {
		r = 0
	}
	return NormalizedAngle(r)
}

// Radians returns the angle's value in radians.
func (a NormalizedAngle) Radians() float64 {
	return float64(a)
}

// IsNaN reports whether a is NaN.
func (a NormalizedAngle) IsNaN() bool {
	return math.IsNaN(float64(a))
}

// Angle returns a as a plain Angle.
func (a NormalizedAngle) Angle() Angle {
	return Angle(a)
}

func (a NormalizedAngle) String() string {
	return floatString(a.Radians()) + "r"
}
