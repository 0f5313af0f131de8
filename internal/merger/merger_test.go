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

package merger

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMockMerger(t *testing.T, queryID int64) (*InfileMerger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	m := New(Config{DB: db, QueryID: queryID, QueryText: "SELECT * FROM Object"})
	return m, mock
}

func TestResultTableNameConvention(t *testing.T) {
	require.Equal(t, "result_42", ResultTableName(42))
}

func TestStagingFileNameIsStableForSameQueryAndVaries(t *testing.T) {
	a := StagingFileName(1, "SELECT 1", 100, 0)
	b := StagingFileName(1, "SELECT 1", 100, 0)
	require.Equal(t, a, b)

	c := StagingFileName(1, "SELECT 1", 100, 1)
	require.NotEqual(t, a, c)

	d := StagingFileName(1, "SELECT 2", 100, 0)
	require.NotEqual(t, a, d)
}

func TestMergeChunkResultLoadsStagedFile(t *testing.T) {
	m, mock := newMockMerger(t, 7)
	mock.ExpectExec(regexp.QuoteMeta("LOAD DATA LOCAL INFILE")).WillReturnResult(sqlmock.NewResult(0, 2))

	err := m.MergeChunkResult(context.Background(), 100, [][]string{{"1", "a"}, {"2", "b"}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeChunkResultAfterFinalizeErrors(t *testing.T) {
	m, mock := newMockMerger(t, 7)
	_, err := m.Finalize(context.Background(), "")
	require.NoError(t, err)

	err = m.MergeChunkResult(context.Background(), 100, [][]string{{"1"}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeWithoutMergeStmtReturnsTargetTable(t *testing.T) {
	m, _ := newMockMerger(t, 7)
	table, err := m.Finalize(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "result_7", table)
}

func TestFinalizeWithMergeStmtCreatesFinalTable(t *testing.T) {
	m, mock := newMockMerger(t, 7)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE result_7_final AS SELECT objectId, SUM(QS1_SUM) FROM result_7 GROUP BY objectId")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	table, err := m.Finalize(context.Background(), "SELECT objectId, SUM(QS1_SUM) FROM %RESULT% GROUP BY objectId")
	require.NoError(t, err)
	require.Equal(t, "result_7_final", table)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeTwiceErrors(t *testing.T) {
	m, _ := newMockMerger(t, 7)
	_, err := m.Finalize(context.Background(), "")
	require.NoError(t, err)
	_, err = m.Finalize(context.Background(), "")
	require.Error(t, err)
}

func TestDiscardBeforeFinalizeErrors(t *testing.T) {
	m, _ := newMockMerger(t, 7)
	require.Error(t, m.Discard(context.Background()))
}

func TestDiscardAfterFinalizeDropsTables(t *testing.T) {
	m, mock := newMockMerger(t, 7)
	_, err := m.Finalize(context.Background(), "")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS result_7_final")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS result_7")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, m.Discard(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
