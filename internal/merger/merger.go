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

// Package merger streams per-chunk query results into a target table and,
// once every chunk has reported in, runs the session's merge statement to
// produce the final result.
package merger

import (
	"bufio"
	"context"
	"crypto/md5"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/lsst/qserv-sub011/internal/czarerr"
)

// Config names the merge target and the query it belongs to.
type Config struct {
	// DB is the local connection the merger stages and loads results
	// through.
	DB *sql.DB
	// QueryID is the owning query's id, used to name the result table and
	// staging files.
	QueryID int64
	// QueryText is hashed into staging file names so concurrent chunks of
	// the same query never collide with another query's files.
	QueryText string
	// TargetTable overrides the default result_<queryId> naming, mostly
	// for tests.
	TargetTable string
}

// StagingFileName returns the name LOAD DATA LOCAL INFILE stages chunk
// seq's result under: r_<queryId>_<md5(queryText)>_<chunkId>_<seq>.
func StagingFileName(queryID int64, queryText string, chunkID int32, seq int) string {
	sum := md5.Sum([]byte(queryText))
	return fmt.Sprintf("r_%d_%x_%d_%d", queryID, sum, chunkID, seq)
}

// ResultTableName returns the default target table name for queryID.
func ResultTableName(queryID int64) string {
	return fmt.Sprintf("result_%d", queryID)
}

// InfileMerger stages each chunk's result as a local file and LOADs it
// into the target table, then runs the query session's merge statement
// (if any) over the combined rows once every chunk has reported in.
type InfileMerger struct {
	db          *sql.DB
	queryID     int64
	queryText   string
	targetTable string

	mu       sync.Mutex
	finished bool
	chunkSeq map[int32]int
}

// New returns an InfileMerger for cfg. The target table is not created
// here; the first MergeChunkResult's LOAD DATA is expected to run against
// a schema the caller has already prepared (or discovered).
func New(cfg Config) *InfileMerger {
	target := cfg.TargetTable
	if target == "" {
		target = ResultTableName(cfg.QueryID)
	}
	return &InfileMerger{
		db:          cfg.DB,
		queryID:     cfg.QueryID,
		queryText:   cfg.QueryText,
		targetTable: target,
		chunkSeq:    make(map[int32]int),
	}
}

// TargetTable returns the table chunk results are staged into.
func (m *InfileMerger) TargetTable() string {
	return m.targetTable
}

// MergeChunkResult stages rows (already rendered as strings) as a tab
// separated file and LOAD DATA LOCAL INFILEs them into the target table.
// It is safe to call concurrently from multiple worker-result goroutines;
// each call holds the merger's mutex for its whole staging and LOAD, so
// concurrent ingestions are serialized by the merger itself.
func (m *InfileMerger) MergeChunkResult(ctx context.Context, chunkID int32, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished {
		return czarerr.ErrMerge.New("cannot merge a chunk result into an already finalized query")
	}
	seq := m.chunkSeq[chunkID]
	m.chunkSeq[chunkID] = seq + 1

	path, err := m.stageFile(chunkID, seq, rows)
	if err != nil {
		return czarerr.ErrMerge.New(err.Error())
	}
	defer os.Remove(path)

	query := fmt.Sprintf("LOAD DATA LOCAL INFILE '%s' INTO TABLE %s", path, m.targetTable)
	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return czarerr.ErrMerge.New(err.Error())
	}
	return nil
}

func (m *InfileMerger) stageFile(chunkID int32, seq int, rows [][]string) (string, error) {
	name := StagingFileName(m.queryID, m.queryText, chunkID, seq)
	f, err := os.CreateTemp("", name+"-*.tsv")
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, row := range rows {
		if _, err := w.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// Finalize runs mergeStmtTemplate (with %RESULT% substituted for the
// staged target table) to produce the final result table, and marks the
// merger finished so Discard is now permitted. If mergeStmtTemplate is
// empty (the query had no aggregation requiring a merge stage), the
// staged target table already holds the final result.
func (m *InfileMerger) Finalize(ctx context.Context, mergeStmtTemplate string) (string, error) {
	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return "", czarerr.ErrMerge.New("query has already been finalized")
	}
	m.finished = true
	m.mu.Unlock()

	if mergeStmtTemplate == "" {
		return m.targetTable, nil
	}

	finalTable := m.targetTable + "_final"
	stmt := strings.ReplaceAll(mergeStmtTemplate, "%RESULT%", m.targetTable)
	create := fmt.Sprintf("CREATE TABLE %s AS %s", finalTable, stmt)
	if _, err := m.db.ExecContext(ctx, create); err != nil {
		return "", czarerr.ErrMerge.New(err.Error())
	}
	return finalTable, nil
}

// Discard drops the staged target table (and the finalized table, if
// Finalize produced a separate one). Per the merger's finished-flag
// guard, it refuses to run until Finalize has completed - a result still
// being assembled must not be dropped out from under in-flight chunks.
func (m *InfileMerger) Discard(ctx context.Context) error {
	m.mu.Lock()
	finished := m.finished
	m.mu.Unlock()
	if !finished {
		return czarerr.ErrMerge.New("cannot discard a result that has not been finalized")
	}
	for _, table := range []string{m.targetTable + "_final", m.targetTable} {
		if _, err := m.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return czarerr.ErrMerge.New(err.Error())
		}
	}
	return nil
}
