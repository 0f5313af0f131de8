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

package executive

// JobDescription names one unit of dispatchable work: a chunk query sent
// to a specific resource (worker) address.
type JobDescription struct {
	// RefNum uniquely identifies this job within its Executive's in-flight
	// map.
	RefNum int64
	// ResourceAddr names the worker this job targets.
	ResourceAddr string
	// ChunkID is the chunk (or chunk fragment) this job computes over, for
	// error attribution and reporting.
	ChunkID int32
	// TaskMsg is the serialized task message sent over Transport.
	TaskMsg []byte
	// Priority selects which PriQ level this job is queued under.
	Priority int
}

// ResultHandler drains a successfully dispatched job's result into the
// merger (or wherever results are consumed). A non-nil return fails the
// job.
type ResultHandler func(job JobDescription, result []byte) error

// ChunkReporter is notified once per completed job, successful or not.
// It is the hook an async per-chunk QMeta status reporter would use; the
// default is a no-op.
type ChunkReporter func(chunkID int32, err error)
