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

import "context"

// TransportResult is a worker's response to a dispatched job: either its
// raw result bytes or an error.
type TransportResult struct {
	Data []byte
	Err  error
}

// Transport sends a job's task message to its resource address and
// delivers the result asynchronously. Implementations must respect ctx
// cancellation by closing down the in-flight request; they are not
// required to deliver a value on the returned channel once ctx is done.
type Transport interface {
	Dispatch(ctx context.Context, job JobDescription) <-chan TransportResult
}
