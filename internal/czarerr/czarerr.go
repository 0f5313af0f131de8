// Package czarerr declares the typed error taxonomy shared by every
// component of the query coordinator, so callers can distinguish a parse
// failure from an analysis failure from a worker failure by Kind rather
// than by string matching.
package czarerr

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrParse is returned when the SQL text cannot be parsed into a
	// SELECT AST. The query is never registered with the query-metadata
	// store when this kind is returned.
	ErrParse = errors.NewKind("parse error: %s")

	// ErrAnalysis is returned when a query is syntactically valid but is
	// semantically rejected by the rewrite plugin chain: an unknown
	// table, an unsupported join, a missing dominant database. The query
	// is registered and then transitioned to FAILED.
	ErrAnalysis = errors.NewKind("AnalysisError: %s")

	// ErrQueryProcessing covers failures talking to the director database
	// during chunk resolution (secondary index lookup).
	ErrQueryProcessing = errors.NewKind("query processing error: %s")

	// ErrDispatch is returned when a job description cannot be serialized
	// or enqueued onto the priority thread pool.
	ErrDispatch = errors.NewKind("dispatch error: %s")

	// ErrWorker wraps a failure reported by a worker for a specific
	// chunk.
	ErrWorker = errors.NewKind("worker error on chunk %d: %s")

	// ErrMerge wraps a LOAD or finalize SQL failure in the result
	// merger. Reported to clients with code 1105.
	ErrMerge = errors.NewKind("merge error: %s")

	// ErrCancelled is returned by join() when the query was killed before
	// completion. QMeta status is ABORTED, not FAILED, in this case.
	ErrCancelled = errors.NewKind("query cancelled")

	// ErrMissingUserQuery is returned by the session registry when an
	// unknown query id is looked up.
	ErrMissingUserQuery = errors.NewKind("no such user query: %d")

	// ErrInvariant marks an internal bug - e.g. a ChunkSpec merge across
	// mismatched chunk ids. It is never caught or folded into the
	// message store; callers are expected to let it propagate.
	ErrInvariant = errors.NewKind("invariant violation: %s")
)

// System-level error codes surfaced to the SQL client alongside a
// negative chunkId, per spec.md section 6.
const (
	// CodeMergeFailure is reported when InfileMerger.finalize or an
	// ingestion LOAD fails.
	CodeMergeFailure = 1105
	// CodeTableDoesNotExist is reported when a referenced result or
	// message table is missing.
	CodeTableDoesNotExist = 1146
)

// SystemChunkID is the chunkId used for message-store entries that are
// not attributable to any single chunk (merge failures, cancellation).
const SystemChunkID = -1
