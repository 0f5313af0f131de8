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

// Command czar wires together the query coordinator's pieces - metadata
// stores, the executive's priority queue, the result merger, the session
// registry - behind the Coordinator façade. It does not listen on a
// network socket itself; a front-end proxy integration would sit in
// front of the Coordinator returned by buildCoordinator, and is out of
// scope here.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/lsst/qserv-sub011/internal/chunk"
	"github.com/lsst/qserv-sub011/internal/coordinator"
	"github.com/lsst/qserv-sub011/internal/executive"
	"github.com/lsst/qserv-sub011/internal/facade"
	"github.com/lsst/qserv-sub011/internal/indexmap"
	"github.com/lsst/qserv-sub011/internal/merger"
	"github.com/lsst/qserv-sub011/internal/metastore"
	"github.com/lsst/qserv-sub011/internal/metastore/boltstore"
	"github.com/lsst/qserv-sub011/internal/metastore/memstore"
	"github.com/lsst/qserv-sub011/internal/session"
)

func main() {
	configPath := flag.String("config", "czar.yaml", "path to czar's YAML config file")
	qmetaPath := flag.String("qmeta-db", "qmeta.bolt", "path to the boltdb file backing the query-metadata store")
	flag.Parse()

	log := logrus.WithField("component", "cmd.czar")

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Warn("could not load config file, continuing with defaults")
		cfg = DefaultConfig()
	}
	if lvl, lerr := logrus.ParseLevel(cfg.LogLevel); lerr == nil {
		logrus.SetLevel(lvl)
	}

	coord, cleanup, err := buildCoordinator(cfg, *qmetaPath)
	if err != nil {
		log.WithError(err).Fatal("failed to build coordinator")
	}
	defer cleanup()

	// A front-end proxy transport (accepting CALL/SELECT text over a
	// wire protocol and translating it into coord.NewQuery/Submit/Join
	// calls) would attach here. None is implemented - see the Non-goals.
	_ = coord

	log.Info("czar coordinator ready")
}

// buildCoordinator constructs every piece a running czar process needs -
// the metadata stores, the chunk/index geometry, the executive's
// priority queue, and the merger's SQL connection - and returns a
// Coordinator ready to serve NewQuery/Submit/Join/... calls, plus a
// cleanup func that releases the opened resources.
func buildCoordinator(cfg Config, qmetaPath string) (*coordinator.Coordinator, func(), error) {
	catalogStore := memstore.NewCatalog()
	qmetaStore, err := boltstore.Open(qmetaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open qmeta store: %w", err)
	}

	catalog := metastore.NewCachingCatalog(catalogStore)

	chunker, err := chunk.NewChunker(int32(cfg.StripingDefaults.Stripes), int32(cfg.StripingDefaults.SubStripesPerStripe))
	if err != nil {
		qmetaStore.Close()
		return nil, nil, fmt.Errorf("build chunker: %w", err)
	}

	var mergeDB *sql.DB
	if cfg.MergeDSN != "" {
		mergeDB, err = sql.Open("pgx", cfg.MergeDSN)
		if err != nil {
			qmetaStore.Close()
			return nil, nil, fmt.Errorf("open merge DB: %w", err)
		}
	}

	var indexDB *sql.DB
	if cfg.MetadataDSN != "" {
		indexDB, err = sql.Open("pgx", cfg.MetadataDSN)
		if err != nil {
			qmetaStore.Close()
			return nil, nil, fmt.Errorf("open index DB: %w", err)
		}
	}
	secIdx := indexmap.NewSecondaryIndex(indexDB, "qservMeta")
	index := indexmap.New(chunker, secIdx)

	priQ := executive.NewPriQ()
	for _, lvl := range cfg.PriorityLevels {
		priQ.AddPriQueue(lvl.Priority, lvl.Min, lvl.Max)
	}

	registry := facade.NewRegistry()

	factory := newQueryFactory(catalog, index, priQ, mergeDB, registry, qmetaStore)
	coord := coordinator.New(registry, factory)

	cleanup := func() {
		qmetaStore.Close()
		if mergeDB != nil {
			mergeDB.Close()
		}
		if indexDB != nil {
			indexDB.Close()
		}
	}
	return coord, cleanup, nil
}

// newQueryFactory returns the coordinator.QueryFactory that picks a
// UserQuery variant by inspecting sql: a CALL QSERV_MANAGER(...) becomes
// a ManagementUserQuery, a CALL QSERV_RESULT_DELETE(qid) becomes a
// ResultDeleteUserQuery, and everything else is treated as a SELECT.
func newQueryFactory(
	catalog session.Catalog,
	index *indexmap.IndexMap,
	priQ *executive.PriQ,
	mergeDB *sql.DB,
	registry *facade.Registry,
	qmetaStore *boltstore.QMeta,
) coordinator.QueryFactory {
	return func(queryID int64, sql string) facade.UserQuery {
		switch classifyQuery(sql) {
		case queryKindResultDelete:
			targetQID, ok := parseResultDeleteArg(sql)
			if !ok {
				return facade.NewManagementUserQuery(queryID, sql, func(ctx context.Context) error {
					return fmt.Errorf("cmd/czar: could not parse QSERV_RESULT_DELETE argument from %q", sql)
				})
			}
			return facade.NewResultDeleteUserQuery(queryID, targetQID, registry)
		case queryKindManagement:
			return facade.NewManagementUserQuery(queryID, sql, func(ctx context.Context) error {
				_, err := qmetaStore.GetQueryInfo(ctx, queryID)
				return err
			})
		default:
			sess := session.New(catalog, index, "")
			mrg := merger.New(merger.Config{DB: mergeDB, QueryID: queryID, QueryText: sql})
			// No wire transport to a worker fleet is implemented (out of
			// scope per the Non-goals); FakeTransport stands in so the
			// executive has somewhere to dispatch jobs in a single-process
			// deployment.
			exec := executive.New(priQ, executive.NewFakeTransport(), facade.MergeResultHandler(mrg), nil, nil)
			return facade.NewSelectUserQuery(queryID, sql, sess, exec, mrg, nil)
		}
	}
}

type queryKind int

const (
	queryKindSelect queryKind = iota
	queryKindManagement
	queryKindResultDelete
)

func classifyQuery(sql string) queryKind {
	upper := strings.ToUpper(sql)
	switch {
	case strings.Contains(upper, "QSERV_RESULT_DELETE"):
		return queryKindResultDelete
	case strings.Contains(upper, "QSERV_MANAGER"):
		return queryKindManagement
	default:
		return queryKindSelect
	}
}

// parseResultDeleteArg extracts the integer query id argument from a
// "CALL QSERV_RESULT_DELETE(123)" invocation.
func parseResultDeleteArg(sql string) (int64, bool) {
	open := strings.IndexByte(sql, '(')
	close := strings.IndexByte(sql, ')')
	if open < 0 || close < 0 || close <= open {
		return 0, false
	}
	var id int64
	if _, err := fmt.Sscanf(sql[open+1:close], "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}
