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

// AngleInterval is a closed interval [A, B] of Angle values. It is empty
// if and only if either endpoint is NaN.
type AngleInterval struct {
	A, B Angle
}

// NewAngleInterval returns the interval [a, b].
func NewAngleInterval(a, b Angle) AngleInterval {
	return AngleInterval{A: a, B: b}
}

// IsEmpty reports whether the interval is empty.
func (iv AngleInterval) IsEmpty() bool {
	return iv.A.IsNaN() || iv.B.IsNaN()
}

// Contains reports whether a lies within the interval, inclusive of
// endpoints.
func (iv AngleInterval) Contains(a Angle) bool {
	if iv.IsEmpty() {
		return false
	}
	return a.Radians() >= iv.A.Radians() && a.Radians() <= iv.B.Radians()
}

// NormalizedAngleInterval is an interval over NormalizedAngle values. Its
// endpoints are normalized to [0, 2*Pi), but unlike AngleInterval, A may
// exceed B: that represents an interval that wraps through the 0/2*Pi
// boundary. The full circle is represented by A == 0, B == 2*Pi exactly
// (FullNormalizedAngleInterval).
type NormalizedAngleInterval struct {
	A, B NormalizedAngle
}

// NewNormalizedAngleInterval returns the interval from a to b, preserving
// a > b as a wrapped interval.
func NewNormalizedAngleInterval(a, b NormalizedAngle) NormalizedAngleInterval {
	return NormalizedAngleInterval{A: a, B: b}
}

// FullNormalizedAngleInterval returns the interval spanning the entire
// circle.
func FullNormalizedAngleInterval() NormalizedAngleInterval {
	return NormalizedAngleInterval{A: 0, B: NormalizedAngle(twoPi)}
}

// IsEmpty reports whether the interval is empty.
func (iv NormalizedAngleInterval) IsEmpty() bool {
	return iv.A.IsNaN() || iv.B.IsNaN()
}

// IsFull reports whether the interval spans the whole circle.
func (iv NormalizedAngleInterval) IsFull() bool {
	return !iv.IsEmpty() && iv.B.Radians()-iv.A.Radians() >= twoPi
}

// Wraps reports whether the interval crosses the 0/2*Pi boundary, i.e.
// A > B.
func (iv NormalizedAngleInterval) Wraps() bool {
	return !iv.IsEmpty() && iv.A.Radians() > iv.B.Radians()
}

// Contains reports whether a lies within the interval.
func (iv NormalizedAngleInterval) Contains(a NormalizedAngle) bool {
	if iv.IsEmpty() {
		return false
	}
	if iv.IsFull() {
		return true
	}
	if iv.Wraps() {
		return a.Radians() >= iv.A.Radians() || a.Radians() <= iv.B.Radians()
	}
	return a.Radians() >= iv.A.Radians() && a.Radians() <= iv.B.Radians()
}

// Intersects reports whether the two intervals share at least one point.
func (iv NormalizedAngleInterval) Intersects(other NormalizedAngleInterval) bool {
	if iv.IsEmpty() || other.IsEmpty() {
		return false
	}
	if iv.IsFull() || other.IsFull() {
		return true
	}
	if !iv.Wraps() && !other.Wraps() {
		return iv.A.Radians() <= other.B.Radians() && other.A.Radians() <= iv.B.Radians()
	}
	// At least one interval wraps: split each into at most two
	// non-wrapping pieces and test pairwise.
	for _, p1 := range iv.pieces() {
		for _, p2 := range other.pieces() {
			if p1.A.Radians() <= p2.B.Radians() && p2.A.Radians() <= p1.B.Radians() {
				return true
			}
		}
	}
	return false
}

// ContainsInterval reports whether other lies entirely within iv.
func (iv NormalizedAngleInterval) ContainsInterval(other NormalizedAngleInterval) bool {
	if other.IsEmpty() {
		return true
	}
	if iv.IsEmpty() {
		return false
	}
	if iv.IsFull() {
		return true
	}
	if !iv.Wraps() {
		if other.Wraps() || other.IsFull() {
			return false
		}
		return iv.A.Radians() <= other.A.Radians() && other.B.Radians() <= iv.B.Radians()
	}
	// iv wraps.
	if other.IsFull() {
		return false
	}
	if other.Wraps() {
		return other.A.Radians() >= iv.A.Radians() && other.B.Radians() <= iv.B.Radians()
	}
	return other.A.Radians() >= iv.A.Radians() || other.B.Radians() <= iv.B.Radians()
}

func (iv NormalizedAngleInterval) pieces() []NormalizedAngleInterval {
	if !iv.Wraps() {
		return []NormalizedAngleInterval{iv}
	}
	return []NormalizedAngleInterval{
		{A: iv.A, B: NormalizedAngle(twoPi)},
		{A: 0, B: iv.B},
	}
}

// Dilated returns iv expanded by w on each side (and renormalized).
func (iv NormalizedAngleInterval) Dilated(w Angle) NormalizedAngleInterval {
	if iv.IsEmpty() {
		return iv
	}
	if iv.IsFull() || 2*w.Radians() >= twoPi-angularWidth(iv) {
		return FullNormalizedAngleInterval()
	}
	return NormalizedAngleInterval{
		A: NewNormalizedAngle(iv.A.Radians() - w.Radians()),
		B: NewNormalizedAngle(iv.B.Radians() + w.Radians()),
	}
}
