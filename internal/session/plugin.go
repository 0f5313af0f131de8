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
	"github.com/lsst/qserv-sub011/internal/indexmap"
)

// ResolvedTable pairs a parsed TableRef with the partitioning metadata the
// catalog reports for it.
type ResolvedTable struct {
	TableRef
	Partitioning PartitioningKind
}

// AggregateRewrite describes how a single aggregate projection is split
// into a per-chunk parallel expression and a merge-side expression applied
// once partial results are combined.
type AggregateRewrite struct {
	// Original is the aggregate expression as written by the user, e.g.
	// "AVG(taiMidPoint)".
	Original string
	// Parallel are the projection expressions (with aliases) each chunk
	// query computes in place of Original.
	Parallel []string
	// Merge is the expression (referencing Parallel's aliases) that
	// produces Original's value once partial results are combined.
	Merge string
}

// Plan is the mutable state threaded through the rewrite plugin chain: it
// starts as a freshly parsed statement and accumulates the restrictors,
// partitioning decisions, and rewritten templates each plugin contributes.
type Plan struct {
	Stmt            *SelectStmt
	DefaultDatabase string
	Catalog         Catalog

	Tables []ResolvedTable

	AreaRestrictors []AreaRestrictor
	SecIdxRestrictors []indexmap.SecIdxRestrictor

	NeedsChunking   bool
	SubChunkOverlap bool

	Aggregates []AggregateRewrite

	nonAggregateColumns []string
	remainingWhere      []string

	ParallelTemplates []QueryTemplate
	MergeStmt         string
	ResultOrderBy     string
}

// Plugin rewrites or validates part of a Plan. It returns a czarerr-typed
// error (ErrAnalysis) on semantic rejection.
type Plugin func(p *Plan) error

// Chain runs an ordered sequence of Plugins, stopping at the first error.
type Chain []Plugin

// Run executes every plugin in order against p.
func (c Chain) Run(p *Plan) error {
	for _, plugin := range c {
		if err := plugin(p); err != nil {
			return err
		}
	}
	return nil
}

// DefaultChain is the rewrite plugin chain a Session runs by default: table
// resolution, then restrictor extraction, then join/partitioning analysis,
// then aggregate rewriting, then final template construction.
func DefaultChain() Chain {
	return Chain{
		resolveTablesPlugin,
		extractAreaRestrictorsPlugin,
		extractSecIdxRestrictorsPlugin,
		partitioningAnalysisPlugin,
		aggregateRewritePlugin,
		buildTemplatesPlugin,
	}
}
