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

package indexmap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteAndReadConfigFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "director.cfg")

	cfg1 := NewLookupConfig("db_name", "table_name", "objectId", "pilosa", map[string]string{
		"port": "10101",
		"host": "localhost",
	})

	require.NoError(t, WriteConfigFile(file, cfg1))
	cfg2, err := ReadConfigFile(file)
	require.NoError(t, err)
	require.Equal(t, cfg1, cfg2)
}

func TestReadConfigFileMissing(t *testing.T) {
	_, err := ReadConfigFile(filepath.Join(t.TempDir(), "missing.cfg"))
	require.Error(t, err)
}

func TestProcessingFileLifecycle(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".processing")

	ok, err := ExistsProcessingFile(file)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, CreateProcessingFile(file))

	ok, err = ExistsProcessingFile(file)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, RemoveProcessingFile(file))

	ok, err = ExistsProcessingFile(file)
	require.NoError(t, err)
	require.False(t, ok)
}
