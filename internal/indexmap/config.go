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
	"encoding/gob"
	"fmt"
	"os"

	"github.com/spf13/cast"
)

// LookupConfig describes where a director table's secondary index lives and
// how to reach it: the logical database/table/column it indexes, plus the
// driver-specific settings for the engine backing the lookup (e.g. a Pilosa
// cluster for a bitmap-index deployment).
type LookupConfig struct {
	Database string
	Table    string
	Column   string
	Driver   string
	Options  map[string]string
}

// NewLookupConfig returns the config for db.table.column, backed by driver
// with the given driver-specific options.
func NewLookupConfig(db, table, column, driver string, options map[string]string) LookupConfig {
	return LookupConfig{Database: db, Table: table, Column: column, Driver: driver, Options: options}
}

// IntOption coerces Options[key] into an int, falling back to def when the
// key is absent or cannot be coerced. Driver options round-trip through
// gob/YAML as strings, so callers that want a numeric setting (a query
// timeout, a connection pool size) go through this rather than parsing
// ad-hoc at each call site.
func (c LookupConfig) IntOption(key string, def int) int {
	v, ok := c.Options[key]
	if !ok {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

// WriteConfigFile persists cfg to path using gob encoding.
func WriteConfigFile(path string, cfg LookupConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("indexmap: create config file: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("indexmap: encode config: %w", err)
	}
	return nil
}

// ReadConfigFile reads a LookupConfig previously written by WriteConfigFile.
func ReadConfigFile(path string) (LookupConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return LookupConfig{}, fmt.Errorf("indexmap: open config file: %w", err)
	}
	defer f.Close()
	var cfg LookupConfig
	if err := gob.NewDecoder(f).Decode(&cfg); err != nil {
		return LookupConfig{}, fmt.Errorf("indexmap: decode config: %w", err)
	}
	return cfg, nil
}

// ExistsProcessingFile reports whether a rebuild-in-progress marker exists
// at path.
func ExistsProcessingFile(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// CreateProcessingFile marks a secondary index as being (re)built, so that
// lookups against it can be deferred until the build finishes.
func CreateProcessingFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}

// RemoveProcessingFile clears the rebuild-in-progress marker at path.
func RemoveProcessingFile(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
