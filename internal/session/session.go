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
	"context"

	"github.com/lsst/qserv-sub011/internal/chunk"
	"github.com/lsst/qserv-sub011/internal/czarerr"
	"github.com/lsst/qserv-sub011/internal/indexmap"
	"github.com/lsst/qserv-sub011/internal/sphgeom"
)

// ChunkQuerySpec is one unit of dispatchable work: a chunk (or a fragment
// of one, for chunks with many sub-chunks) plus the concrete SQL text each
// worker should run against it.
type ChunkQuerySpec struct {
	ChunkID     int32
	SubChunkIDs []int32
	Queries     []string
}

// Session carries one query through analyze, finalize, and chunk
// iteration. A Session is single-use: build a new one per query.
type Session struct {
	chain   Chain
	catalog Catalog
	index   *indexmap.IndexMap

	plan *Plan
}

// New returns a Session that resolves chunk coverage via index and
// validates table references against catalog, running the default rewrite
// plugin chain. defaultDatabase is used to resolve unqualified table
// references.
func New(catalog Catalog, index *indexmap.IndexMap, defaultDatabase string) *Session {
	return &Session{
		chain:   DefaultChain(),
		catalog: catalog,
		index:   index,
		plan: &Plan{
			DefaultDatabase: defaultDatabase,
			Catalog:         catalog,
		},
	}
}

// Analyze parses sql and runs the rewrite plugin chain over it, producing
// parallel chunk-query templates and (when aggregation requires one) a
// merge statement. A syntax failure is reported as czarerr.ErrParse; a
// semantic rejection (unknown table, unsupported join) is reported as
// czarerr.ErrAnalysis.
func (s *Session) Analyze(sql string) error {
	stmt, err := Parse(sql)
	if err != nil {
		return czarerr.ErrParse.New(err.Error())
	}
	s.plan.Stmt = stmt
	return s.chain.Run(s.plan)
}

// Finalize resolves the chunk/sub-chunk coverage for the analyzed query by
// consulting the index map with the extracted area and secondary-index
// restrictors. It must be called after a successful Analyze.
func (s *Session) Finalize(ctx context.Context) (chunk.Vector, error) {
	var areas []sphgeom.Region
	for _, ar := range s.plan.AreaRestrictors {
		r, err := ar.Region()
		if err != nil {
			return nil, czarerr.ErrAnalysis.New(err.Error())
		}
		areas = append(areas, r)
	}
	if !s.plan.NeedsChunking {
		return chunk.Vector{{ChunkID: czarerr.SystemChunkID}}, nil
	}
	return s.index.GetChunks(ctx, areas, s.plan.SecIdxRestrictors)
}

// IterateChunks expands specs into per-chunk (or per-chunk-fragment)
// dispatchable query specs, rendering %CC%/%SS% templates and splitting
// any chunk with more sub-chunks than the fragmenter's batch size allows
// into multiple fragments.
func (s *Session) IterateChunks(specs chunk.Vector) []ChunkQuerySpec {
	var out []ChunkQuerySpec
	for _, spec := range specs {
		for _, frag := range fragmentSpec(spec) {
			out = append(out, s.renderFragment(frag))
		}
	}
	return out
}

func fragmentSpec(spec chunk.Spec) []chunk.Spec {
	if !spec.ShouldSplit() {
		return []chunk.Spec{spec}
	}
	var frags []chunk.Spec
	f := chunk.NewFragmenter(spec)
	for !f.IsDone() {
		frags = append(frags, f.Get())
		f.Next()
	}
	return frags
}

func (s *Session) renderFragment(frag chunk.Spec) ChunkQuerySpec {
	cqs := ChunkQuerySpec{ChunkID: frag.ChunkID, SubChunkIDs: frag.SubChunks}
	if len(frag.SubChunks) == 0 {
		for _, t := range s.plan.ParallelTemplates {
			cqs.Queries = append(cqs.Queries, t.Render(frag.ChunkID, nil))
		}
		return cqs
	}
	for _, sc := range frag.SubChunks {
		sc := sc
		for _, t := range s.plan.ParallelTemplates {
			cqs.Queries = append(cqs.Queries, t.Render(frag.ChunkID, &sc))
		}
	}
	return cqs
}

// MakeMergeStmt returns the SQL template the result merger should run
// against the staged per-chunk results (with %RESULT% substituted for the
// merger's actual staging table name), and whether a merge stage is
// required at all - a plain (non-aggregate) query has none.
func (s *Session) MakeMergeStmt() (stmt string, ok bool) {
	if s.plan.MergeStmt == "" {
		return "", false
	}
	return s.plan.MergeStmt, true
}

// GetResultOrderBy returns the ORDER BY clause body (without the keywords)
// the proxy should apply to the fully merged result, or "" if the query
// had none.
func (s *Session) GetResultOrderBy() string {
	return s.plan.ResultOrderBy
}

// HasAggregate reports whether the analyzed query contained a rewritten
// aggregate.
func (s *Session) HasAggregate() bool {
	return len(s.plan.Aggregates) > 0
}

// NeedsChunking reports whether the analyzed query references at least one
// partitioned table.
func (s *Session) NeedsChunking() bool {
	return s.plan.NeedsChunking
}
