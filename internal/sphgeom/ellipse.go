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
	"fmt"
	"math"
)

// Ellipse is a region bounded by the intersection of the unit sphere with
// an elliptical cone through the origin. It is stored as the orthogonal
// transform S mapping its center to the north pole (with the major axis
// aligned to the tangent-plane x-axis) plus the two half-axis angles;
// Contains evaluates the ellipse's defining quadratic form on the
// tangent-plane projection of S*v, per spec.md 4.1.
type Ellipse struct {
	center             UnitVector3d
	s                  Matrix3d
	semiMajor, semiMinor Angle
	empty              bool
}

// NewEllipse returns the ellipse centered at center with the given
// semi-major and semi-minor angular half-axes and orientation (the angle
// from the local north direction to the major axis, measured
// counter-clockwise). Returns an error if the half-axes are not both
// positive and at most Pi/2, or semiMinor > semiMajor.
func NewEllipse(center UnitVector3d, semiMajor, semiMinor, orientation Angle) (Ellipse, error) {
	if semiMajor.Radians() <= 0 || semiMinor.Radians() <= 0 {
		return Ellipse{}, fmt.Errorf("sphgeom: ellipse semi-axes must be positive")
	}
	if semiMajor.Radians() > Pi/2 || semiMinor.Radians() > Pi/2 {
		return Ellipse{}, fmt.Errorf("sphgeom: ellipse semi-axes must not exceed Pi/2")
	}
	if semiMinor.Radians() > semiMajor.Radians() {
		return Ellipse{}, fmt.Errorf("sphgeom: semi-minor axis must not exceed semi-major axis")
	}
	return Ellipse{
		center:    center,
		s:         rotationToPole(center, orientation),
		semiMajor: semiMajor,
		semiMinor: semiMinor,
	}, nil
}

// EmptyEllipse returns the empty ellipse.
func EmptyEllipse() Ellipse {
	return Ellipse{empty: true}
}

// IsEmpty reports whether the ellipse contains no points.
func (e Ellipse) IsEmpty() bool {
	return e.empty
}

// Center returns the ellipse's center.
func (e Ellipse) Center() UnitVector3d {
	return e.center
}

// SemiAxes returns the ellipse's semi-major and semi-minor half-axis
// angles.
func (e Ellipse) SemiAxes() (major, minor Angle) {
	return e.semiMajor, e.semiMinor
}

// Contains reports whether v lies within the ellipse.
func (e Ellipse) Contains(v UnitVector3d) bool {
	if e.empty {
		return false
	}
	w := e.s.Mul(v.Vector3d())
	if w.Z <= 0 {
		return false
	}
	tanA := math.Tan(e.semiMajor.Radians())
	tanB := math.Tan(e.semiMinor.Radians())
	u := w.X / w.Z
	t := w.Y / w.Z
	return (u*u)/(tanA*tanA)+(t*t)/(tanB*tanB) <= 1
}

// BoundingBox implements Region, via the ellipse's bounding circle.
func (e Ellipse) BoundingBox() Box {
	return e.BoundingCircle().BoundingBox()
}

// BoundingCircle implements Region: a circle centered on the ellipse's
// center with angular radius equal to the semi-major axis, which by
// construction contains every point of the ellipse.
func (e Ellipse) BoundingCircle() Circle {
	if e.empty {
		return EmptyCircle()
	}
	chordSq := 2 - 2*math.Cos(e.semiMajor.Radians())
	return NewCircle(e.center, chordSq)
}

// Relate implements Region.
func (e Ellipse) Relate(other Region) Relation {
	if e.IsEmpty() || other.IsEmpty() {
		return Disjoint
	}
	switch o := other.(type) {
	case Ellipse:
		return conservativeRelate(e, o)
	case Box, Circle, ConvexPolygon:
		return conservativeRelate(e, o.(Region))
	default:
		return conservativeRelate(e, other)
	}
}
