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

// Package facade exposes the polymorphic UserQuery variants (SELECT,
// management call, result delete) behind a common interface, plus the
// integer-keyed session registry the front-end proxy addresses queries by.
package facade

import (
	"sync"
	"time"

	"github.com/lsst/qserv-sub011/internal/czarerr"
)

// Message is one diagnostic entry attributable to a chunk (or
// czarerr.SystemChunkID for query-wide diagnostics).
type Message struct {
	ChunkID     int32
	Code        int
	Severity    string
	Timestamp   time.Time
	Description string
}

// MessageStore accumulates diagnostics for one query. Reads are
// consistent at chunk granularity: a reader sees either all or none of a
// given AddMessage call, never a partial message.
type MessageStore struct {
	mu       sync.Mutex
	messages []Message
}

// NewMessageStore returns an empty MessageStore.
func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

// AddMessage appends a diagnostic. now is accepted as a parameter (rather
// than calling time.Now() internally) so callers can stamp deterministic
// times in tests.
func (s *MessageStore) AddMessage(chunkID int32, code int, severity, description string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{
		ChunkID:     chunkID,
		Code:        code,
		Severity:    severity,
		Timestamp:   now,
		Description: description,
	})
}

// Count returns the number of messages recorded.
func (s *MessageStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Get returns the message at idx.
func (s *MessageStore) Get(idx int) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.messages) {
		return Message{}, czarerr.ErrInvariant.New("message index out of range")
	}
	return s.messages[idx], nil
}

// ReportError records err (if non-nil) against chunkID using
// czarerr.CodeMergeFailure-style conventions: callers pass the specific
// code that applies, since not every error is a merge failure.
func (s *MessageStore) ReportError(chunkID int32, code int, err error, now time.Time) {
	if err == nil {
		return
	}
	s.AddMessage(chunkID, code, "ERROR", err.Error(), now)
}
