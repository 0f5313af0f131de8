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
	"fmt"
	"regexp"
	"strings"

	"github.com/lsst/qserv-sub011/internal/czarerr"
	"github.com/lsst/qserv-sub011/internal/indexmap"
)

// remaining returns the WHERE conjuncts still awaiting disposition,
// lazily seeding the working copy from Stmt.Where on first use.
func (p *Plan) remaining() []string {
	if p.remainingWhere == nil {
		p.remainingWhere = append([]string{}, p.Stmt.Where...)
	}
	return p.remainingWhere
}

// resolveTablesPlugin validates every FROM-clause table against the
// catalog and records its partitioning kind. It also seeds the Plan's
// working copy of the WHERE list for downstream restrictor-extraction
// plugins.
func resolveTablesPlugin(p *Plan) error {
	p.remainingWhere = append([]string{}, p.Stmt.Where...)
	for _, ref := range p.Stmt.Tables {
		db := ref.Database
		if db == "" {
			db = p.DefaultDatabase
		}
		if !p.Catalog.TableExists(db, ref.Table) {
			return czarerr.ErrAnalysis.New(fmt.Sprintf("Invalid db/table: %s.%s", db, ref.Table))
		}
		resolved := ref
		resolved.Database = db
		p.Tables = append(p.Tables, ResolvedTable{
			TableRef:     resolved,
			Partitioning: p.Catalog.PartitioningKind(db, ref.Table),
		})
	}
	return nil
}

// extractAreaRestrictorsPlugin pulls qserv_areaspec_* conjuncts out of the
// WHERE list (they are not valid SQL and must be translated into scisql
// factors) and records them as spatial restrictors for chunk resolution.
func extractAreaRestrictorsPlugin(p *Plan) error {
	var kept []string
	for _, c := range p.remaining() {
		if ar, ok := matchAreaRestrictor(c); ok {
			if _, err := ar.Region(); err != nil {
				return czarerr.ErrAnalysis.New(err.Error())
			}
			p.AreaRestrictors = append(p.AreaRestrictors, ar)
			continue
		}
		kept = append(kept, c)
	}
	p.remainingWhere = kept
	return nil
}

// extractSecIdxRestrictorsPlugin recognizes "col IN (...)" conjuncts whose
// column is a resolved table's director column. Unlike area restrictors,
// these are already valid SQL and stay in the WHERE list for per-row
// filtering; they are additionally recorded so the chunk resolver can use
// them to narrow chunk coverage.
func extractSecIdxRestrictorsPlugin(p *Plan) error {
	for _, c := range p.remaining() {
		col, values, ok := matchSecIdxCandidate(c)
		if !ok {
			continue
		}
		for _, t := range p.Tables {
			dirCol, ok := p.Catalog.DirectorColumn(t.Database, t.Table)
			if !ok || dirCol != col {
				continue
			}
			p.SecIdxRestrictors = append(p.SecIdxRestrictors, indexmap.SecIdxRestrictor{
				Database: t.Database,
				Table:    t.Table,
				Column:   col,
				Values:   values,
			})
			break
		}
	}
	return nil
}

// partitioningAnalysisPlugin decides whether the query needs chunked
// dispatch at all and, for joins between partitioned tables, whether the
// join is evaluable. Only a join between exactly two sub-chunked tables
// (the self-join / near-neighbor pattern) is supported; anything broader
// is rejected up front rather than dispatched and silently mis-executed.
func partitioningAnalysisPlugin(p *Plan) error {
	var partitioned []ResolvedTable
	for _, t := range p.Tables {
		if t.Partitioning != NotPartitioned {
			partitioned = append(partitioned, t)
		}
	}
	p.NeedsChunking = len(partitioned) > 0
	switch len(partitioned) {
	case 0, 1:
		return nil
	case 2:
		if partitioned[0].Partitioning != SubChunked || partitioned[1].Partitioning != SubChunked {
			return czarerr.ErrAnalysis.New("query involves partitioned table joins that cannot be evaluated: both sides of a partitioned join must be sub-chunked")
		}
		p.SubChunkOverlap = true
		return nil
	default:
		return czarerr.ErrAnalysis.New("query involves partitioned table joins that cannot be evaluated: more than two partitioned tables in one query is not supported")
	}
}

var aggregateRE = regexp.MustCompile(`(?i)^(AVG|COUNT|SUM|MIN|MAX)\s*\(\s*(\*|[^()]+)\s*\)$`)

// aggregateRewritePlugin splits each recognized aggregate projection into a
// per-chunk parallel expression and a merge-side expression, so a partial
// result from every chunk can be combined into the correct final value.
func aggregateRewritePlugin(p *Plan) error {
	n := 0
	for _, col := range p.Stmt.Columns {
		m := aggregateRE.FindStringSubmatch(strings.TrimSpace(col))
		if m == nil {
			p.nonAggregateColumns = append(p.nonAggregateColumns, col)
			continue
		}
		n++
		fn := strings.ToUpper(m[1])
		arg := strings.TrimSpace(m[2])
		switch fn {
		case "AVG":
			countAlias := fmt.Sprintf("QS%d_COUNT", n)
			sumAlias := fmt.Sprintf("QS%d_SUM", n)
			p.Aggregates = append(p.Aggregates, AggregateRewrite{
				Original: col,
				Parallel: []string{
					fmt.Sprintf("COUNT(%s) AS %s", arg, countAlias),
					fmt.Sprintf("SUM(%s) AS %s", arg, sumAlias),
				},
				Merge: fmt.Sprintf("SUM(%s)/SUM(%s) AS `%s`", sumAlias, countAlias, col),
			})
		case "COUNT", "SUM":
			alias := fmt.Sprintf("QS%d_%s", n, fn)
			p.Aggregates = append(p.Aggregates, AggregateRewrite{
				Original: col,
				Parallel: []string{fmt.Sprintf("%s(%s) AS %s", fn, arg, alias)},
				Merge:    fmt.Sprintf("SUM(%s) AS `%s`", alias, col),
			})
		case "MIN", "MAX":
			alias := fmt.Sprintf("QS%d_%s", n, fn)
			p.Aggregates = append(p.Aggregates, AggregateRewrite{
				Original: col,
				Parallel: []string{fmt.Sprintf("%s(%s) AS %s", fn, arg, alias)},
				Merge:    fmt.Sprintf("%s(%s) AS `%s`", fn, alias, col),
			})
		}
	}
	return nil
}

// buildTemplatesPlugin renders the final per-chunk QueryTemplate(s), the
// merge statement (when aggregation requires one), and the result-level
// ORDER BY the proxy should apply once merged results are available.
func buildTemplatesPlugin(p *Plan) error {
	cols := append(append([]string{}, p.nonAggregateColumns...))
	for _, a := range p.Aggregates {
		cols = append(cols, a.Parallel...)
	}
	if len(cols) == 0 {
		cols = []string{"*"}
	}

	from, aliases, err := p.fromClause()
	if err != nil {
		return err
	}

	where := append([]string{}, p.remainingWhere...)
	if len(p.Tables) > 0 {
		table := p.Tables[0]
		raCol, declCol, ok := p.Catalog.RaDeclColumns(table.Database, table.Table)
		if ok {
			for _, ar := range p.AreaRestrictors {
				where = append(where, ar.AsSciSQLFactor(aliases[0], raCol, declCol))
			}
		}
	}

	selectKeyword := "SELECT "
	if p.Stmt.Distinct {
		selectKeyword = "SELECT DISTINCT "
	}
	query := selectKeyword + strings.Join(cols, ", ") + " FROM " + from
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if len(p.Aggregates) > 0 && len(p.Stmt.GroupBy) > 0 {
		query += " GROUP BY " + strings.Join(p.Stmt.GroupBy, ", ")
	}
	if p.Stmt.Having != "" {
		query += " HAVING " + p.Stmt.Having
	}
	p.ParallelTemplates = []QueryTemplate{QueryTemplate(query)}

	if len(p.Aggregates) > 0 {
		mergeCols := append(append([]string{}, p.nonAggregateColumns...))
		for _, a := range p.Aggregates {
			mergeCols = append(mergeCols, a.Merge)
		}
		merge := "SELECT " + strings.Join(mergeCols, ", ") + " FROM %RESULT%"
		if len(p.Stmt.GroupBy) > 0 {
			merge += " GROUP BY " + strings.Join(p.Stmt.GroupBy, ", ")
		}
		p.MergeStmt = merge
	}

	if len(p.Stmt.OrderBy) > 0 {
		terms := make([]string, len(p.Stmt.OrderBy))
		for i, t := range p.Stmt.OrderBy {
			terms[i] = t.String()
		}
		p.ResultOrderBy = strings.Join(terms, ", ")
	}
	return nil
}

// fromClause renders the FROM clause for the (so far, single-table or
// two-table sub-chunk join) query, substituting %CC%/%SS% templating for
// partitioned tables, and returns the alias assigned to each table in
// p.Tables order.
func (p *Plan) fromClause() (string, []string, error) {
	if len(p.Tables) == 0 {
		return "", nil, czarerr.ErrAnalysis.New("query has no FROM-clause tables")
	}
	parts := make([]string, len(p.Tables))
	aliases := make([]string, len(p.Tables))
	for i, t := range p.Tables {
		name := fmt.Sprintf("%s.%s", t.Database, t.Table)
		switch {
		case t.Partitioning == SubChunked && p.SubChunkOverlap:
			name += "_%CC%_%SS%"
		case t.Partitioning != NotPartitioned:
			name += "_%CC%"
		}
		alias := t.Alias
		if alias == "" {
			alias = fmt.Sprintf("QST_%d_", i+1)
		}
		aliases[i] = alias
		parts[i] = name + " AS " + alias
	}
	return strings.Join(parts, ", "), aliases, nil
}
