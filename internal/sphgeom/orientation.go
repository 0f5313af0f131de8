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
	"math"
	"math/big"
)

// maxAbsoluteError and relativeErrorCoefficient bound the error of the
// floating point determinant computed by orientation's fast path; see
// Orientation for how they are used.
const (
	maxAbsoluteError       = 1.7e-15
	relativeErrorCoefficient = 5.6e-16
	relativeErrorFloor     = 4e-307
)

// Orientation computes the orientation of three unit vectors a, b and c:
// +1 if they are in counter-clockwise order, -1 if clockwise, and 0 if
// they are coplanar, colinear, or identical. It is equivalent to the sign
// of the determinant of the 3x3 matrix with a, b, c as rows.
//
// Orientation is total and deterministic for all finite inputs: it first
// computes a double precision approximation of the determinant together
// with a rigorous error bound; if the bound cannot rule out a sign
// change, it falls back to exact arbitrary-precision arithmetic.
func Orientation(a, b, c UnitVector3d) int {
	if a.Equal(b) || b.Equal(c) || a.Equal(c) {
		return 0
	}
	det, bound := approxDeterminant(a.Vector3d(), b.Vector3d(), c.Vector3d())
	if det > bound {
		return 1
	}
	if det < -bound {
		return -1
	}
	return orientationExact(a.Vector3d(), b.Vector3d(), c.Vector3d())
}

// approxDeterminant returns det[a;b;c] computed in double precision along
// with an absolute error bound above which the computed sign is
// guaranteed correct.
func approxDeterminant(a, b, c Vector3d) (det, bound float64) {
	det = a.X*(b.Y*c.Z-b.Z*c.Y) -
		a.Y*(b.X*c.Z-b.Z*c.X) +
		a.Z*(b.X*c.Y-b.Y*c.X)

	permanent := math.Abs(a.X)*math.Abs(b.Y)*math.Abs(c.Z) +
		math.Abs(a.X)*math.Abs(b.Z)*math.Abs(c.Y) +
		math.Abs(a.Y)*math.Abs(b.X)*math.Abs(c.Z) +
		math.Abs(a.Y)*math.Abs(b.Z)*math.Abs(c.X) +
		math.Abs(a.Z)*math.Abs(b.X)*math.Abs(c.Y) +
		math.Abs(a.Z)*math.Abs(b.Y)*math.Abs(c.X)

	bound = relativeErrorCoefficient*permanent + relativeErrorFloor
	if bound < maxAbsoluteError {
		bound = maxAbsoluteError
	}
	return det, bound
}

// exactTerm is a signed product of three float64 values represented
// exactly as mantissa*2^exponent, mantissa possibly negative.
type exactTerm struct {
	mantissa *big.Int
	exponent int
}

func floatToExact(f float64) exactTerm {
	if f == 0 {
		return exactTerm{mantissa: big.NewInt(0), exponent: 0}
	}
	frac, exp := math.Frexp(f)
	// frac * 2^53 is an exact integer since float64 has a 52-bit
	// mantissa (53 bits of precision including the implicit leading
	// bit).
	m := int64(frac * (1 << 53))
	return exactTerm{mantissa: big.NewInt(m), exponent: exp - 53}
}

func mulExactTerm(sign int64, factors ...float64) exactTerm {
	mant := big.NewInt(sign)
	exp := 0
	for _, f := range factors {
		t := floatToExact(f)
		mant.Mul(mant, t.mantissa)
		exp += t.exponent
	}
	return exactTerm{mantissa: mant, exponent: exp}
}

// orientationExact computes the sign of det[a;b;c] using arbitrary
// precision arithmetic: each of the six monomials of the determinant
// expansion is represented exactly as mantissa*2^exponent, the six terms
// are aligned to their common minimum exponent by left-shifting, and the
// resulting wide integers are summed; the sign of the sum is the answer.
func orientationExact(a, b, c Vector3d) int {
	terms := []exactTerm{
		mulExactTerm(1, a.X, b.Y, c.Z),
		mulExactTerm(-1, a.X, b.Z, c.Y),
		mulExactTerm(-1, a.Y, b.X, c.Z),
		mulExactTerm(1, a.Y, b.Z, c.X),
		mulExactTerm(1, a.Z, b.X, c.Y),
		mulExactTerm(-1, a.Z, b.Y, c.X),
	}

	minExp := terms[0].exponent
	for _, t := range terms[1:] {
		if t.exponent < minExp {
			minExp = t.exponent
		}
	}

	sum := new(big.Int)
	shifted := new(big.Int)
	for _, t := range terms {
		shifted.Set(t.mantissa)
		shifted.Lsh(shifted, uint(t.exponent-minExp))
		sum.Add(sum, shifted)
	}
	return sum.Sign()
}
