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

package facade

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type discardTrackingQuery struct {
	stubUserQuery
	discardCalled bool
	discardErr    error
}

func (d *discardTrackingQuery) Discard(ctx context.Context) error {
	d.discardCalled = true
	return d.discardErr
}

func TestResultDeleteDiscardsCompletedQuery(t *testing.T) {
	r := NewRegistry()
	target := &discardTrackingQuery{stubUserQuery: stubUserQuery{status: StatusSuccess}}
	targetID := r.Register(target)

	q := NewResultDeleteUserQuery(99, targetID, r)
	require.NoError(t, q.Submit(context.Background()))
	require.True(t, target.discardCalled)
	require.Equal(t, StatusSuccess, q.Status())

	_, err := r.Lookup(targetID)
	require.Error(t, err)
}

func TestResultDeleteRefusesUnfinishedQuery(t *testing.T) {
	r := NewRegistry()
	target := &discardTrackingQuery{stubUserQuery: stubUserQuery{status: StatusExecuting}}
	targetID := r.Register(target)

	q := NewResultDeleteUserQuery(99, targetID, r)
	err := q.Submit(context.Background())
	require.Error(t, err)
	require.False(t, target.discardCalled)
	require.Equal(t, StatusError, q.Status())
}

func TestResultDeleteUnknownTargetFails(t *testing.T) {
	r := NewRegistry()
	q := NewResultDeleteUserQuery(99, 12345, r)
	err := q.Submit(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no such user query")
}

func TestResultDeletePropagatesDiscardFailure(t *testing.T) {
	r := NewRegistry()
	target := &discardTrackingQuery{
		stubUserQuery: stubUserQuery{status: StatusSuccess},
		discardErr:    errors.New("drop failed"),
	}
	targetID := r.Register(target)

	q := NewResultDeleteUserQuery(99, targetID, r)
	err := q.Submit(context.Background())
	require.Error(t, err)
	require.Equal(t, StatusError, q.Status())
}
