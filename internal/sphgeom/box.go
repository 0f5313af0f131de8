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

// Box is a longitude/latitude bounding box on the sphere. The longitude
// interval is normalized and may wrap through 0; the latitude interval is
// clamped into [-Pi/2, Pi/2] at construction. A NaN endpoint on either
// axis makes the whole box empty, and an empty latitude interval implies
// an empty longitude interval and vice versa.
type Box struct {
	lon NormalizedAngleInterval
	lat AngleInterval
}

// EmptyBox returns the empty box.
func EmptyBox() Box {
	return Box{
		lon: NormalizedAngleInterval{A: NormalizedAngle(math.NaN()), B: NormalizedAngle(math.NaN())},
		lat: AngleInterval{A: Angle(math.NaN()), B: Angle(math.NaN())},
	}
}

// FullBox returns the box spanning the entire sphere.
func FullBox() Box {
	return Box{lon: FullNormalizedAngleInterval(), lat: AngleInterval{A: -Pi / 2, B: Pi / 2}}
}

// NewBox returns the box with the given longitude and latitude bounds (in
// radians). Latitude is clamped into [-Pi/2, Pi/2]; if either bound is
// NaN, or the clamped latitude interval is inverted, the result is empty.
func NewBox(lonA, lonB NormalizedAngle, latA, latB Angle) Box {
	if lonA.IsNaN() || lonB.IsNaN() || latA.IsNaN() || latB.IsNaN() {
		return EmptyBox()
	}
	la := Angle(clamp(latA.Radians(), -Pi/2, Pi/2))
	lb := Angle(clamp(latB.Radians(), -Pi/2, Pi/2))
	if la.Radians() > lb.Radians() {
		return EmptyBox()
	}
	return Box{lon: NewNormalizedAngleInterval(lonA, lonB), lat: AngleInterval{A: la, B: lb}}
}

// NewBoxFromDegrees returns the box spanning [lonMin, lonMax] x
// [latMin, latMax], all in degrees - the parameter convention used by
// the qserv_areaspec_box area restrictor.
func NewBoxFromDegrees(lonMin, latMin, lonMax, latMax float64) Box {
	return NewBox(
		NewNormalizedAngle(AngleFromDegrees(lonMin).Radians()),
		NewNormalizedAngle(AngleFromDegrees(lonMax).Radians()),
		AngleFromDegrees(latMin),
		AngleFromDegrees(latMax),
	)
}

// Lon returns the box's longitude interval.
func (b Box) Lon() NormalizedAngleInterval {
	return b.lon
}

// Lat returns the box's latitude interval.
func (b Box) Lat() AngleInterval {
	return b.lat
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool {
	return b.lat.IsEmpty() || b.lon.IsEmpty()
}

// IsFull reports whether the box spans the entire sphere.
func (b Box) IsFull() bool {
	return !b.IsEmpty() && b.lon.IsFull() && b.lat.A.Radians() <= -Pi/2 && b.lat.B.Radians() >= Pi/2
}

// Contains reports whether v lies within the box.
func (b Box) Contains(v UnitVector3d) bool {
	if b.IsEmpty() {
		return false
	}
	return b.lon.Contains(v.Lon()) && b.lat.Contains(v.Lat())
}

// Dilated returns b with both longitude and latitude intervals expanded
// by w (and the latitude interval re-clamped into range).
func (b Box) Dilated(w Angle) Box {
	if b.IsEmpty() {
		return b
	}
	lat := AngleInterval{
		A: Angle(clamp(b.lat.A.Radians()-w.Radians(), -Pi/2, Pi/2)),
		B: Angle(clamp(b.lat.B.Radians()+w.Radians(), -Pi/2, Pi/2)),
	}
	return Box{lon: b.lon.Dilated(w), lat: lat}
}

// BoundingBox implements Region.
func (b Box) BoundingBox() Box {
	return b
}

// BoundingCircle implements Region; the returned circle is the smallest
// one the implementation computes directly containing every corner of
// the box, which is conservative by construction.
func (b Box) BoundingCircle() Circle {
	if b.IsEmpty() {
		return EmptyCircle()
	}
	if b.IsFull() {
		return FullCircle()
	}
	center := b.center()
	maxChord := 0.0
	for _, v := range b.corners() {
		d := center.SquaredChordLength(v)
		if d > maxChord {
			maxChord = d
		}
	}
	return NewCircle(center, maxChord)
}

func (b Box) center() UnitVector3d {
	lon := NewNormalizedAngle(b.lon.A.Radians() + angularWidth(b.lon)/2)
	lat := Angle((b.lat.A.Radians() + b.lat.B.Radians()) / 2)
	return NewUnitVector3dFromLonLat(lon, lat)
}

func angularWidth(iv NormalizedAngleInterval) float64 {
	if iv.Wraps() {
		return twoPi - iv.A.Radians() + iv.B.Radians()
	}
	return iv.B.Radians() - iv.A.Radians()
}

func (b Box) corners() []UnitVector3d {
	return []UnitVector3d{
		NewUnitVector3dFromLonLat(b.lon.A, b.lat.A),
		NewUnitVector3dFromLonLat(b.lon.A, b.lat.B),
		NewUnitVector3dFromLonLat(b.lon.B, b.lat.A),
		NewUnitVector3dFromLonLat(b.lon.B, b.lat.B),
	}
}

// Relate implements Region. Box/Box is computed exactly from the two
// interval relations; every other pairing is dispatched to the other
// region's precise routine (via invertSpatialRelations) or, failing
// that, to a conservative bounding-circle test.
func (b Box) Relate(other Region) Relation {
	if b.IsEmpty() || other.IsEmpty() {
		return Disjoint
	}
	switch o := other.(type) {
	case Box:
		return relateBoxBox(b, o)
	case Circle:
		return invertSpatialRelations(relateBoxCircle(b, o))
	case Ellipse:
		return conservativeRelate(b, o)
	case ConvexPolygon:
		return conservativeRelate(b, o)
	default:
		return conservativeRelate(b, other)
	}
}

func relateBoxBox(a, b Box) Relation {
	if !a.lon.Intersects(b.lon) || !intervalsIntersect(a.lat, b.lat) {
		return Disjoint
	}
	var rel Relation
	lonEq := a.lon.ContainsInterval(b.lon)
	latEq := intervalContains(a.lat, b.lat)
	if lonEq && latEq {
		rel |= Contains
	}
	if b.lon.ContainsInterval(a.lon) && intervalContains(b.lat, a.lat) {
		rel |= Within
	}
	rel |= Intersects
	return rel
}

func intervalsIntersect(a, b AngleInterval) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	return a.A.Radians() <= b.B.Radians() && b.A.Radians() <= a.B.Radians()
}

func intervalContains(outer, inner AngleInterval) bool {
	if inner.IsEmpty() {
		return true
	}
	if outer.IsEmpty() {
		return false
	}
	return outer.A.Radians() <= inner.A.Radians() && inner.B.Radians() <= outer.B.Radians()
}

// conservativeRelate computes Relation using only bounding circles: safe
// for any pair of region types, at the cost of never reporting CONTAINS
// or WITHIN when the true relation is in fact one of those.
func conservativeRelate(a, b Region) Relation {
	ac, bc := a.BoundingCircle(), b.BoundingCircle()
	d := ac.center.SquaredChordLength(bc.center)
	sumRadius := chordLengthFromSquared(ac.squaredChordRadius) + chordLengthFromSquared(bc.squaredChordRadius)
	if chordLengthFromSquared(d) > sumRadius {
		return Disjoint
	}
	return Intersects
}

func chordLengthFromSquared(sq float64) float64 {
	if sq < 0 {
		return 0
	}
	return math.Sqrt(sq)
}
