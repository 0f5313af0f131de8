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

package session

import (
	"strconv"
	"strings"
)

// QueryTemplate is a query string holding %CC% and (optionally) %SS%
// placeholders for the chunk and sub-chunk number to substitute at
// dispatch time.
type QueryTemplate string

// Render substitutes chunkID for %CC% and, if subChunkID is non-nil,
// subChunkID for %SS%.
func (t QueryTemplate) Render(chunkID int32, subChunkID *int32) string {
	s := string(t)
	s = strings.ReplaceAll(s, "%CC%", strconv.FormatInt(int64(chunkID), 10))
	if subChunkID != nil {
		s = strings.ReplaceAll(s, "%SS%", strconv.FormatInt(int64(*subChunkID), 10))
	}
	return s
}

// HasSubChunk reports whether t references %SS% and therefore must be
// rendered once per sub-chunk rather than once per chunk.
func (t QueryTemplate) HasSubChunk() bool {
	return strings.Contains(string(t), "%SS%")
}
