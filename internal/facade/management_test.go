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

func TestManagementUserQuerySucceeds(t *testing.T) {
	called := false
	q := NewManagementUserQuery(1, "CALL QSERV_MANAGER('CANCEL', 42)", func(ctx context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, q.Submit(context.Background()))
	require.True(t, called)
	status, err := q.Join(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)
	require.Equal(t, StatusSuccess, q.Status())
	require.Empty(t, q.GetResultLocation())
}

func TestManagementUserQueryFailurePopulatesMessageStore(t *testing.T) {
	q := NewManagementUserQuery(2, "CALL QSERV_MANAGER('BOGUS')", func(ctx context.Context) error {
		return errors.New("unknown admin command")
	})

	err := q.Submit(context.Background())
	require.Error(t, err)
	require.Equal(t, StatusError, q.Status())
	require.Equal(t, 1, q.GetMessageStore().Count())
}

func TestManagementUserQueryKill(t *testing.T) {
	q := NewManagementUserQuery(3, "CALL QSERV_MANAGER('NOOP')", func(ctx context.Context) error { return nil })
	require.NoError(t, q.Kill())
	require.Equal(t, StatusAborted, q.Status())
}
