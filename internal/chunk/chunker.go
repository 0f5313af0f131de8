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

// Package chunk subdivides the unit sphere into chunks and sub-chunks and
// resolves which of them a spatial region can intersect.
package chunk

import (
	"fmt"
	"math"

	"github.com/lsst/qserv-sub011/internal/sphgeom"
)

type stripe struct {
	chunkWidth        sphgeom.Angle
	numChunksPerStripe int32
	numSubChunksPerChunk int32
}

type subStripe struct {
	subChunkWidth        sphgeom.Angle
	numSubChunksPerChunk int32
}

// SubChunks is the set of sub-chunk ids belonging to a single chunk that
// intersect a region.
type SubChunks struct {
	ChunkID    int32
	SubChunkIDs []int32
}

// Chunker partitions the sphere into latitude stripes of fixed height, each
// broken into an integral number of longitude chunks of approximately equal
// width; each stripe is further divided into sub-stripes and sub-chunks
// using the same scheme, at a finer granularity.
type Chunker struct {
	numStripes            int32
	numSubStripesPerStripe int32
	numSubStripes          int32
	maxSubChunksPerSubStripeChunk int32
	subStripeHeight       sphgeom.Angle
	stripes               []stripe
	subStripes            []subStripe
}

// NewChunker returns the Chunker dividing the sphere into numStripes
// latitude stripes, each split into numSubStripesPerStripe sub-stripes.
func NewChunker(numStripes, numSubStripesPerStripe int32) (*Chunker, error) {
	if numStripes < 1 || numSubStripesPerStripe < 1 {
		return nil, fmt.Errorf("chunk: number of stripes and sub-stripes per stripe must be positive")
	}
	if int64(numStripes)*int64(numSubStripesPerStripe) > 180*3600 {
		return nil, fmt.Errorf("chunk: sub-stripes are too small")
	}
	c := &Chunker{
		numStripes:             numStripes,
		numSubStripesPerStripe: numSubStripesPerStripe,
		numSubStripes:          numStripes * numSubStripesPerStripe,
	}
	c.subStripeHeight = sphgeom.Angle(sphgeom.Pi / float64(c.numSubStripes))
	stripeHeight := sphgeom.Angle(sphgeom.Pi / float64(numStripes))
	c.stripes = make([]stripe, numStripes)
	c.subStripes = make([]subStripe, c.numSubStripes)
	for s := int32(0); s < numStripes; s++ {
		sLatA := sphgeom.Angle(float64(s)*stripeHeight.Radians() - sphgeom.Pi/2)
		sLatB := sphgeom.Angle(float64(s+1)*stripeHeight.Radians() - sphgeom.Pi/2)
		nc := computeNumSegments(sLatA, sLatB, stripeHeight)
		st := stripe{chunkWidth: sphgeom.Angle(2 * sphgeom.Pi / float64(nc)), numChunksPerStripe: nc}
		ssStart := s * numSubStripesPerStripe
		for ss := ssStart; ss < ssStart+numSubStripesPerStripe; ss++ {
			ssLatA := sphgeom.Angle(float64(ss)*c.subStripeHeight.Radians() - sphgeom.Pi/2)
			ssLatB := sphgeom.Angle(float64(ss+1)*c.subStripeHeight.Radians() - sphgeom.Pi/2)
			nsc := computeNumSegments(ssLatA, ssLatB, c.subStripeHeight) / nc
			if nsc < 1 {
				nsc = 1
			}
			st.numSubChunksPerChunk += nsc
			if nsc > c.maxSubChunksPerSubStripeChunk {
				c.maxSubChunksPerSubStripeChunk = nsc
			}
			c.subStripes[ss] = subStripe{
				subChunkWidth:        sphgeom.Angle(2 * sphgeom.Pi / float64(nsc*nc)),
				numSubChunksPerChunk: nsc,
			}
		}
		c.stripes[s] = st
	}
	return c, nil
}

// computeNumSegments returns the number of equal-width longitude segments a
// stripe of the given latitude bounds and height should be divided into, so
// that any two points in the stripe separated by at least one segment width
// in longitude have angular separation of at least height.
func computeNumSegments(latA, latB, width sphgeom.Angle) int32 {
	if width.Radians() > sphgeom.Pi {
		return 1
	}
	maxAbsLat := math.Max(math.Abs(latA.Radians()), math.Abs(latB.Radians()))
	if maxAbsLat > 0.5*sphgeom.Pi-4.85e-6 {
		return 1
	}
	cosWidth := math.Cos(width.Radians())
	sinLat := math.Sin(maxAbsLat)
	cosLat := math.Cos(maxAbsLat)
	x := cosWidth - sinLat*sinLat
	u := cosLat * cosLat
	y := math.Sqrt(math.Abs(u*u - x*x))
	n := int32(math.Floor(2 * sphgeom.Pi / math.Abs(math.Atan2(y, x))))
	if n < 1 {
		n = 1
	}
	return n
}

func (c *Chunker) getStripe(chunkID int32) int32 {
	return chunkID / (2 * c.numStripes)
}

func (c *Chunker) getChunkID(stripeIdx, chunk int32) int32 {
	return stripeIdx*2*c.numStripes + chunk
}

func (c *Chunker) getSubChunkID(stripeIdx, subStripeIdx, chunk, subChunk int32) int32 {
	y := subStripeIdx - stripeIdx*c.numSubStripesPerStripe
	x := subChunk - chunk*c.subStripes[subStripeIdx].numSubChunksPerChunk
	return y*c.maxSubChunksPerSubStripeChunk + x
}

func (c *Chunker) chunkBoundingBox(stripeIdx, chunkIdx int32) sphgeom.Box {
	width := c.stripes[stripeIdx].chunkWidth
	lon := sphgeom.NewNormalizedAngleInterval(
		sphgeom.NewNormalizedAngle(width.Radians()*float64(chunkIdx)),
		sphgeom.NewNormalizedAngle(width.Radians()*float64(chunkIdx+1)),
	)
	ssStart := stripeIdx * c.numSubStripesPerStripe
	ssEnd := ssStart + c.numSubStripesPerStripe
	latA := sphgeom.Angle(float64(ssStart)*c.subStripeHeight.Radians() - sphgeom.Pi/2)
	latB := sphgeom.Angle(float64(ssEnd)*c.subStripeHeight.Radians() - sphgeom.Pi/2)
	b := sphgeom.NewBox(lon.A, lon.B, latA, latB)
	return b.Dilated(sphgeom.EPSILON)
}

func (c *Chunker) subChunkBoundingBox(subStripeIdx, subChunkIdx int32) sphgeom.Box {
	width := c.subStripes[subStripeIdx].subChunkWidth
	lon := sphgeom.NewNormalizedAngleInterval(
		sphgeom.NewNormalizedAngle(width.Radians()*float64(subChunkIdx)),
		sphgeom.NewNormalizedAngle(width.Radians()*float64(subChunkIdx+1)),
	)
	latA := sphgeom.Angle(float64(subStripeIdx)*c.subStripeHeight.Radians() - sphgeom.Pi/2)
	latB := sphgeom.Angle(float64(subStripeIdx+1)*c.subStripeHeight.Radians() - sphgeom.Pi/2)
	b := sphgeom.NewBox(lon.A, lon.B, latA, latB)
	return b.Dilated(sphgeom.EPSILON)
}

// stripeRangeFor returns the inclusive [minS, maxS] stripe range whose
// sub-stripes fall within the dilated bounding box's latitude interval.
func (c *Chunker) stripeRangeFor(b sphgeom.Box) (minS, maxS int32) {
	ya := math.Floor((b.Lat().A.Radians() + sphgeom.Pi/2) / c.subStripeHeight.Radians())
	yb := math.Floor((b.Lat().B.Radians() + sphgeom.Pi/2) / c.subStripeHeight.Radians())
	minSS := int32(math.Min(ya, float64(c.numSubStripes-1)))
	maxSS := int32(math.Min(yb, float64(c.numSubStripes-1)))
	return minSS / c.numSubStripesPerStripe, maxSS / c.numSubStripesPerStripe
}

func chunkRangeFor(lon sphgeom.NormalizedAngleInterval, width sphgeom.Angle, nc int32) (ca, cb int32) {
	xa := math.Floor(lon.A.Radians() / width.Radians())
	xb := math.Floor(lon.B.Radians() / width.Radians())
	ca = int32(math.Min(xa, float64(nc-1)))
	cb = int32(math.Min(xb, float64(nc-1)))
	if ca == cb && lon.Wraps() {
		return 0, nc - 1
	}
	return ca, cb
}

// GetChunksIntersecting returns every chunk id that may intersect r. The
// result may include false positives (chunks whose bounding box intersects
// r's bounding box but r does not actually reach), but never a false
// negative.
func (c *Chunker) GetChunksIntersecting(r sphgeom.Region) []int32 {
	var ids []int32
	b := r.BoundingBox().Dilated(sphgeom.EPSILON)
	minS, maxS := c.stripeRangeFor(b)
	for s := minS; s <= maxS; s++ {
		width := c.stripes[s].chunkWidth
		nc := c.stripes[s].numChunksPerStripe
		ca, cb := chunkRangeFor(b.Lon(), width, nc)
		visit := func(ch int32) {
			if r.Relate(c.chunkBoundingBox(s, ch))&sphgeom.Intersects != 0 {
				ids = append(ids, c.getChunkID(s, ch))
			}
		}
		if ca <= cb {
			for ch := ca; ch <= cb; ch++ {
				visit(ch)
			}
		} else {
			for ch := int32(0); ch <= cb; ch++ {
				visit(ch)
			}
			for ch := ca; ch < nc; ch++ {
				visit(ch)
			}
		}
	}
	return ids
}

// GetSubChunksIntersecting returns, per chunk that may intersect r, the
// sub-chunks that may intersect it. A chunk entirely contained by r
// contributes all of its sub-chunks without testing each individually.
func (c *Chunker) GetSubChunksIntersecting(r sphgeom.Region) []SubChunks {
	var out []SubChunks
	b := r.BoundingBox().Dilated(sphgeom.EPSILON)
	minS, maxS := c.stripeRangeFor(b)
	for s := minS; s <= maxS; s++ {
		width := c.stripes[s].chunkWidth
		nc := c.stripes[s].numChunksPerStripe
		ca, cb := chunkRangeFor(b.Lon(), width, nc)
		visit := func(ch int32) {
			if sc := c.subChunksOf(r, b.Lon(), s, ch, minS, maxS); len(sc.SubChunkIDs) > 0 {
				out = append(out, sc)
			}
		}
		if ca <= cb {
			for ch := ca; ch <= cb; ch++ {
				visit(ch)
			}
		} else {
			for ch := int32(0); ch <= cb; ch++ {
				visit(ch)
			}
			for ch := ca; ch < nc; ch++ {
				visit(ch)
			}
		}
	}
	return out
}

func (c *Chunker) subChunksOf(r sphgeom.Region, lon sphgeom.NormalizedAngleInterval, s, chunk, minSS, maxSS int32) SubChunks {
	out := SubChunks{ChunkID: c.getChunkID(s, chunk)}
	if r.Relate(c.chunkBoundingBox(s, chunk))&sphgeom.Contains != 0 {
		out.SubChunkIDs = c.GetAllSubChunks(out.ChunkID)
		return out
	}
	minSS = int32(math.Max(float64(minSS), float64(s*c.numSubStripesPerStripe)))
	maxSS = int32(math.Min(float64(maxSS), float64((s+1)*c.numSubStripesPerStripe-1)))
	nc := c.stripes[s].numChunksPerStripe
	for ss := minSS; ss <= maxSS; ss++ {
		width := c.subStripes[ss].subChunkWidth
		nsc := c.subStripes[ss].numSubChunksPerChunk
		sca, scb := chunkRangeFor(lon, width, nc*nsc)
		minSC := chunk * nsc
		maxSC := (chunk+1)*nsc - 1
		visit := func(sc int32) {
			if r.Relate(c.subChunkBoundingBox(ss, sc))&sphgeom.Intersects != 0 {
				out.SubChunkIDs = append(out.SubChunkIDs, c.getSubChunkID(s, ss, chunk, sc))
			}
		}
		if sca <= scb {
			lo, hi := maxInt32(sca, minSC), minInt32(scb, maxSC)
			for sc := lo; sc <= hi; sc++ {
				visit(sc)
			}
		} else {
			lo, hi := maxInt32(sca, minSC), minInt32(maxSC, maxSC)
			for sc := lo; sc <= hi; sc++ {
				visit(sc)
			}
			lo2, hi2 := minSC, minInt32(scb, maxSC)
			for sc := lo2; sc <= hi2; sc++ {
				visit(sc)
			}
		}
	}
	return out
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// GetAllChunks returns every chunk id in the sky subdivision.
func (c *Chunker) GetAllChunks() []int32 {
	var ids []int32
	for s := int32(0); s < c.numStripes; s++ {
		for ch := int32(0); ch < c.stripes[s].numChunksPerStripe; ch++ {
			ids = append(ids, c.getChunkID(s, ch))
		}
	}
	return ids
}

// GetAllSubChunks returns every sub-chunk id belonging to chunkID.
func (c *Chunker) GetAllSubChunks(chunkID int32) []int32 {
	s := c.getStripe(chunkID)
	ssStart := s * c.numSubStripesPerStripe
	ssEnd := ssStart + c.numSubStripesPerStripe
	var ids []int32
	for ss := ssStart; ss < ssEnd; ss++ {
		y := ss - ssStart
		for sc := int32(0); sc < c.subStripes[ss].numSubChunksPerChunk; sc++ {
			ids = append(ids, y*c.maxSubChunksPerSubStripeChunk+sc)
		}
	}
	return ids
}
