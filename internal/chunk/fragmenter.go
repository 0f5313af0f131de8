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

package chunk

// Fragmenter iterates a Spec's sub-chunks in batches of goodSubChunkCount,
// so a chunk carrying an unwieldy number of sub-chunks of interest can be
// dispatched as several smaller chunk queries instead of one huge one.
type Fragmenter struct {
	original Spec
	pos      int
}

// NewFragmenter returns a Fragmenter over s.
func NewFragmenter(s Spec) *Fragmenter {
	return &Fragmenter{original: s}
}

// Get returns the current fragment.
func (f *Fragmenter) Get() Spec {
	if len(f.original.SubChunks) == 0 {
		return f.original
	}
	end := f.pos + goodSubChunkCount
	if end > len(f.original.SubChunks) {
		end = len(f.original.SubChunks)
	}
	return Spec{ChunkID: f.original.ChunkID, SubChunks: f.original.SubChunks[f.pos:end]}
}

// Next advances to the following fragment.
func (f *Fragmenter) Next() {
	f.pos += goodSubChunkCount
}

// IsDone reports whether every fragment has been produced.
func (f *Fragmenter) IsDone() bool {
	if len(f.original.SubChunks) == 0 {
		return f.pos > 0
	}
	return f.pos >= len(f.original.SubChunks)
}

// Single is a Spec restricted to exactly one sub-chunk, the granularity at
// which an individual chunk query is ultimately dispatched.
type Single struct {
	ChunkID    int32
	SubChunkID int32
}

// MakeSingles expands s into one Single per sub-chunk. A Spec with no
// sub-chunks (meaning "all of them") expands to a single Single with
// SubChunkID -1, meaning "the whole chunk, unsplit".
func MakeSingles(s Spec) []Single {
	if len(s.SubChunks) == 0 {
		return []Single{{ChunkID: s.ChunkID, SubChunkID: -1}}
	}
	out := make([]Single, len(s.SubChunks))
	for i, sc := range s.SubChunks {
		out[i] = Single{ChunkID: s.ChunkID, SubChunkID: sc}
	}
	return out
}
