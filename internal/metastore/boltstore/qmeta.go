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

// Package boltstore persists query-metadata records to a local boltdb
// file, for a single-process deployment that wants QMeta history to
// survive a restart without standing up a separate database. The
// catalog side of the metadata store has no boltstore counterpart:
// memstore.Catalog's read-mostly, operator-populated shape fits a plain
// map better than a KV bucket that something else would need to seed.
package boltstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"sync/atomic"

	bolt "github.com/boltdb/bolt"

	"github.com/lsst/qserv-sub011/internal/czarerr"
	"github.com/lsst/qserv-sub011/internal/metastore"
)

var queriesBucket = []byte("queries")

// QMeta is a metastore.QMetaStore backed by a boltdb file: one bucket,
// keyed by the big-endian encoding of the query id, holding a
// gob-encoded metastore.QueryInfo.
type QMeta struct {
	db     *bolt.DB
	nextID int64
}

// Open returns a QMeta backed by the boltdb file at path, creating it
// (and the queries bucket) if it doesn't already exist. The returned
// QMeta's id counter resumes from the highest id found in the file.
func Open(path string) (*QMeta, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	q := &QMeta{db: db}
	err = db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists(queriesBucket)
		if err != nil {
			return err
		}
		return bkt.ForEach(func(k, v []byte) error {
			id := int64(binary.BigEndian.Uint64(k))
			if id > q.nextID {
				q.nextID = id
			}
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return q, nil
}

// Close releases the underlying boltdb file.
func (q *QMeta) Close() error {
	return q.db.Close()
}

func idKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func (q *QMeta) get(tx *bolt.Tx, id int64) (metastore.QueryInfo, bool, error) {
	raw := tx.Bucket(queriesBucket).Get(idKey(id))
	if raw == nil {
		return metastore.QueryInfo{}, false, nil
	}
	var info metastore.QueryInfo
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&info); err != nil {
		return metastore.QueryInfo{}, false, err
	}
	return info, true, nil
}

func (q *QMeta) put(tx *bolt.Tx, info metastore.QueryInfo) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(info); err != nil {
		return err
	}
	return tx.Bucket(queriesBucket).Put(idKey(info.QueryID), buf.Bytes())
}

// RegisterQuery implements metastore.QMetaStore.
func (q *QMeta) RegisterQuery(ctx context.Context, sql, database string, tableNames []string) (int64, error) {
	id := atomic.AddInt64(&q.nextID, 1)
	info := metastore.QueryInfo{
		QueryID:    id,
		SQL:        sql,
		Database:   database,
		Status:     metastore.QueryStatusExecuting,
		TableNames: append([]string{}, tableNames...),
	}
	err := q.db.Update(func(tx *bolt.Tx) error { return q.put(tx, info) })
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CompleteQuery implements metastore.QMetaStore.
func (q *QMeta) CompleteQuery(ctx context.Context, queryID int64, status string) error {
	return q.db.Update(func(tx *bolt.Tx) error {
		info, ok, err := q.get(tx, queryID)
		if err != nil {
			return err
		}
		if !ok {
			return czarerr.ErrMissingUserQuery.New(queryID)
		}
		info.Status = status
		return q.put(tx, info)
	})
}

// AddChunks implements metastore.QMetaStore.
func (q *QMeta) AddChunks(ctx context.Context, queryID int64, chunkIDs []int32) error {
	return q.db.Update(func(tx *bolt.Tx) error {
		info, ok, err := q.get(tx, queryID)
		if err != nil {
			return err
		}
		if !ok {
			return czarerr.ErrMissingUserQuery.New(queryID)
		}
		info.ChunkIDs = append(info.ChunkIDs, chunkIDs...)
		return q.put(tx, info)
	})
}

// GetQueryInfo implements metastore.QMetaStore.
func (q *QMeta) GetQueryInfo(ctx context.Context, queryID int64) (metastore.QueryInfo, error) {
	var info metastore.QueryInfo
	err := q.db.View(func(tx *bolt.Tx) error {
		var ok bool
		var err error
		info, ok, err = q.get(tx, queryID)
		if err != nil {
			return err
		}
		if !ok {
			return czarerr.ErrMissingUserQuery.New(queryID)
		}
		return nil
	})
	if err != nil {
		return metastore.QueryInfo{}, err
	}
	return info, nil
}

var _ metastore.QMetaStore = (*QMeta)(nil)
