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

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/lsst/qserv-sub011/internal/czarerr"
)

type inFlightEntry struct {
	job    JobDescription
	cancel context.CancelFunc
}

// Executive dispatches a query's per-chunk jobs onto a PriQ, tracks them in
// an in-flight map, and lets the submitting goroutine Join on completion or
// Squash to cancel everything cooperatively.
type Executive struct {
	priQ      *PriQ
	transport Transport
	handler   ResultHandler
	reporter  ChunkReporter
	tracer    opentracing.Tracer
	log       *logrus.Entry

	mu        sync.Mutex
	cond      *sync.Cond
	inFlight  map[int64]inFlightEntry
	cancelled bool
	errs      *multierror.Error
}

// New returns an Executive dispatching onto priQ via transport, draining
// successful results through handler, and notifying reporter once per
// completed job. reporter and tracer may be nil.
func New(priQ *PriQ, transport Transport, handler ResultHandler, reporter ChunkReporter, tracer opentracing.Tracer) *Executive {
	if reporter == nil {
		reporter = func(int32, error) {}
	}
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}
	e := &Executive{
		priQ:      priQ,
		transport: transport,
		handler:   handler,
		reporter:  reporter,
		tracer:    tracer,
		log:       logrus.WithField("component", "executive"),
		inFlight:  make(map[int64]inFlightEntry),
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Add registers job in the in-flight map and queues it for dispatch at its
// priority. It fails with czarerr.ErrCancelled if the executive has
// already been squashed, and with czarerr.ErrDispatch if the job's
// priority level was never registered on the PriQ.
func (e *Executive) Add(ctx context.Context, job JobDescription) error {
	e.mu.Lock()
	if e.cancelled {
		e.mu.Unlock()
		return czarerr.ErrCancelled.New()
	}
	jobCtx, cancel := context.WithCancel(ctx)
	e.inFlight[job.RefNum] = inFlightEntry{job: job, cancel: cancel}
	e.mu.Unlock()

	span, jobCtx := opentracing.StartSpanFromContextWithTracer(jobCtx, e.tracer, "executive.job")
	err := e.priQ.Queue(func() {
		defer span.Finish()
		e.runJob(jobCtx, job)
	}, job.Priority)
	if err != nil {
		span.Finish()
		e.mu.Lock()
		delete(e.inFlight, job.RefNum)
		e.mu.Unlock()
		cancel()
		return czarerr.ErrDispatch.New(err.Error())
	}
	return nil
}

func (e *Executive) runJob(ctx context.Context, job JobDescription) {
	var jobErr error
	select {
	case <-ctx.Done():
		jobErr = czarerr.ErrCancelled.New()
	default:
		resultCh := e.transport.Dispatch(ctx, job)
		select {
		case res := <-resultCh:
			switch {
			case res.Err != nil:
				jobErr = czarerr.ErrWorker.New(job.ChunkID, res.Err.Error())
			case e.handler != nil:
				if herr := e.handler(job, res.Data); herr != nil {
					jobErr = czarerr.ErrWorker.New(job.ChunkID, herr.Error())
				}
			}
		case <-ctx.Done():
			jobErr = czarerr.ErrCancelled.New()
		}
	}

	if jobErr != nil {
		e.log.WithError(jobErr).WithField("chunk", job.ChunkID).Warn("job failed")
	}
	e.reporter(job.ChunkID, jobErr)
	e.commandFinish(job.RefNum, jobErr)
}

func (e *Executive) commandFinish(ref int64, jobErr error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, ref)
	if jobErr != nil {
		e.errs = multierror.Append(e.errs, jobErr)
	}
	if len(e.inFlight) == 0 {
		e.cond.Broadcast()
	}
}

// Join blocks until every added job has completed, or until Squash is
// called. It returns (false, czarerr.ErrCancelled) in the squashed case,
// matching the query's ABORTED transition; otherwise it returns (true,
// err) where err aggregates any per-job failures via multierror.
func (e *Executive) Join() (bool, error) {
	e.mu.Lock()
	for len(e.inFlight) > 0 && !e.cancelled {
		e.cond.Wait()
	}
	cancelled := e.cancelled
	var err error
	if e.errs != nil {
		err = e.errs.ErrorOrNil()
	}
	e.mu.Unlock()
	if cancelled {
		return false, czarerr.ErrCancelled.New()
	}
	return true, err
}

// Squash sets the cancellation flag, cancels every in-flight job's
// context (the per-job handler observes this and aborts I/O), and wakes
// any Join waiter. It is idempotent and safe from any goroutine.
func (e *Executive) Squash() {
	e.mu.Lock()
	e.cancelled = true
	entries := make([]inFlightEntry, 0, len(e.inFlight))
	for _, entry := range e.inFlight {
		entries = append(entries, entry)
	}
	e.cond.Broadcast()
	e.mu.Unlock()

	for _, entry := range entries {
		entry.cancel()
	}
	e.priQ.PrepareShutdown()
}

// InFlightCount reports how many jobs are currently registered (queued or
// running).
func (e *Executive) InFlightCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inFlight)
}
