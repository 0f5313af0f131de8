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

// Package session implements the query session: parse, rewrite-plugin
// chain, and chunk-query template rendering. Parsing a SQL string into a
// typed AST is treated as an external collaborator's job - Parse here is a
// stand-in small enough to exercise the rewrite chain on the literal query
// shapes the rewrite passes care about, not a SQL grammar.
package session

import (
	"fmt"
	"strconv"
	"strings"
)

// PartitioningKind describes how a table is spatially partitioned.
type PartitioningKind int

const (
	// NotPartitioned tables are replicated in full to every worker.
	NotPartitioned PartitioningKind = iota
	// Chunked tables are split by chunk only.
	Chunked
	// SubChunked tables are split by chunk and sub-chunk.
	SubChunked
)

// TableRef is a reference to a table in a FROM clause, optionally qualified
// by database and/or aliased.
type TableRef struct {
	Database string
	Table    string
	Alias    string
}

// Name returns the alias if present, else the table name - the identifier
// other clauses use to refer to this table.
func (t TableRef) Name() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Table
}

// OrderTerm is a single ORDER BY key.
type OrderTerm struct {
	Column string
	Desc   bool
}

func (o OrderTerm) String() string {
	if o.Desc {
		return o.Column + " DESC"
	}
	return o.Column
}

// SelectStmt is the minimal typed AST the rewrite chain operates on: just
// enough structure to recognize the shapes the rewrite passes care about
// (area/secondary-index restrictors, aggregates, partitioned joins), without
// attempting to model SQL in general.
type SelectStmt struct {
	Columns  []string
	Tables   []TableRef
	Where    []string
	GroupBy  []string
	Having   string
	OrderBy  []OrderTerm
	Distinct bool
	Limit    *int
}

// Catalog is the read-only metadata-store collaborator consulted by the
// rewrite plugins: table existence and per-table partitioning/director
// column metadata. Transport and persistence of the catalog are out of
// scope here.
type Catalog interface {
	TableExists(db, table string) bool
	PartitioningKind(db, table string) PartitioningKind
	DirectorColumn(db, table string) (column string, ok bool)
	RaDeclColumns(db, table string) (ra, decl string, ok bool)
}

var clauseKeywords = []string{" WHERE ", " GROUP BY ", " ORDER BY ", " LIMIT "}

// Parse reads sql into a SelectStmt. It understands a single top-level
// SELECT ... FROM ... [WHERE ...] [GROUP BY ...] [ORDER BY ...] [LIMIT n]
// shape; this is the boundary where a full SQL parser would sit.
func Parse(sql string) (*SelectStmt, error) {
	sql = strings.TrimSpace(sql)
	sql = strings.TrimSuffix(strings.TrimSpace(sql), ";")
	upperSQL := strings.ToUpper(sql)

	if !strings.HasPrefix(upperSQL, "SELECT ") {
		return nil, fmt.Errorf("session: expected a SELECT statement")
	}
	fromIdx := strings.Index(upperSQL, " FROM ")
	if fromIdx < 0 {
		return nil, fmt.Errorf("session: missing FROM clause")
	}

	stmt := &SelectStmt{}
	selectBody := sql[len("SELECT "):fromIdx]
	for _, c := range splitTopLevel(selectBody, ',') {
		stmt.Columns = append(stmt.Columns, strings.TrimSpace(c))
	}

	rest := sql[fromIdx+len(" FROM "):]
	upperRest := strings.ToUpper(rest)

	bounds := map[string]int{}
	for _, kw := range clauseKeywords {
		bounds[kw] = indexOfOrEnd(upperRest, kw, len(rest))
	}
	tablesEnd := len(rest)
	for _, kw := range clauseKeywords {
		if bounds[kw] < tablesEnd {
			tablesEnd = bounds[kw]
		}
	}

	tables, err := parseTables(strings.TrimSpace(rest[:tablesEnd]))
	if err != nil {
		return nil, err
	}
	stmt.Tables = tables

	clauseBody := func(kw string) (string, bool) {
		start := bounds[kw]
		if start >= len(rest) {
			return "", false
		}
		end := len(rest)
		for _, other := range clauseKeywords {
			if other == kw {
				continue
			}
			if bounds[other] > start && bounds[other] < end {
				end = bounds[other]
			}
		}
		return strings.TrimSpace(rest[start+len(kw) : end]), true
	}

	if body, ok := clauseBody(" WHERE "); ok {
		for _, c := range splitTopLevelKeyword(body, "AND") {
			stmt.Where = append(stmt.Where, strings.TrimSpace(c))
		}
	}
	if body, ok := clauseBody(" GROUP BY "); ok {
		for _, c := range splitTopLevel(body, ',') {
			stmt.GroupBy = append(stmt.GroupBy, strings.TrimSpace(c))
		}
	}
	if body, ok := clauseBody(" ORDER BY "); ok {
		for _, c := range splitTopLevel(body, ',') {
			c = strings.TrimSpace(c)
			term := OrderTerm{Column: c}
			switch {
			case strings.HasSuffix(strings.ToUpper(c), " DESC"):
				term.Desc = true
				term.Column = strings.TrimSpace(c[:len(c)-len(" DESC")])
			case strings.HasSuffix(strings.ToUpper(c), " ASC"):
				term.Column = strings.TrimSpace(c[:len(c)-len(" ASC")])
			}
			stmt.OrderBy = append(stmt.OrderBy, term)
		}
	}
	if body, ok := clauseBody(" LIMIT "); ok {
		n, err := strconv.Atoi(body)
		if err != nil {
			return nil, fmt.Errorf("session: invalid LIMIT %q", body)
		}
		stmt.Limit = &n
	}
	return stmt, nil
}

func indexOfOrEnd(upper, kw string, end int) int {
	idx := strings.Index(upper, kw)
	if idx < 0 {
		return end
	}
	return idx
}

func parseTables(body string) ([]TableRef, error) {
	parts := splitTopLevel(body, ',')
	out := make([]TableRef, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		fields := strings.Fields(p)
		if len(fields) == 0 {
			return nil, fmt.Errorf("session: empty table reference")
		}
		dbTable := fields[0]
		var alias string
		switch len(fields) {
		case 1:
		case 2:
			alias = fields[1]
		case 3:
			if !strings.EqualFold(fields[1], "AS") {
				return nil, fmt.Errorf("session: unexpected table reference %q", p)
			}
			alias = fields[2]
		default:
			return nil, fmt.Errorf("session: unexpected table reference %q", p)
		}
		ref := TableRef{Alias: alias}
		if dot := strings.Index(dbTable, "."); dot >= 0 {
			ref.Database = dbTable[:dot]
			ref.Table = dbTable[dot+1:]
		} else {
			ref.Table = dbTable
		}
		out = append(out, ref)
	}
	return out, nil
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// parentheses.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// splitTopLevelKeyword splits s on whitespace-bounded occurrences of kw
// (case-insensitive), ignoring matches nested inside parentheses.
func splitTopLevelKeyword(s string, kw string) []string {
	upper := strings.ToUpper(s)
	needle := " " + strings.ToUpper(kw) + " "
	var out []string
	depth := 0
	start := 0
	i := 0
	for i < len(s) {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && i > 0 && s[i-1] == ' ' && strings.HasPrefix(" "+upper[i:], needle) {
			out = append(out, s[start:i])
			i += len(kw)
			start = i
			continue
		}
		i++
	}
	out = append(out, s[start:])
	return out
}
