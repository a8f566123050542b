// Package supervisor runs the pipeline's three poll loops as a single
// process, handling OS shutdown signals and bringing every worker down
// together on either a signal or a worker's own failure.
package supervisor

import (
	"context"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/yanun0323/logs"
	"golang.org/x/sync/errgroup"
)

// Worker is a single pipeline stage's poll loop. Poll should drain at most
// maxFragments items and return how many it processed; the supervisor uses
// the idle strategy below to decide how long to sleep between calls.
type Worker struct {
	Name         string
	MaxFragments int
	Poll         func(maxFragments int) int
}

// Supervisor runs a set of Workers, each on its own goroutine, under a
// shared errgroup so that any worker's failure (or a SIGINT/SIGTERM) tears
// down the whole group.
type Supervisor struct {
	workers []Worker
	running int32
}

// New creates a Supervisor over the given workers.
func New(workers ...Worker) *Supervisor {
	return &Supervisor{workers: workers}
}

// Run starts every worker and blocks until the context is cancelled, a
// SIGINT/SIGTERM arrives, or a worker returns an error. It is idempotent:
// calling Run while already running returns immediately.
func (s *Supervisor) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		logs.Infof("supervisor: already running")
		return nil
	}
	defer atomic.StoreInt32(&s.running, 0)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range s.workers {
		w := w
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					logs.Errorf("supervisor: worker %s panicked: %v", w.Name, r)
					err = fmt.Errorf("supervisor: worker %s panicked: %v", w.Name, r)
				}
			}()
			runPollLoop(ctx, w)
			return nil
		})
	}

	logs.Infof("supervisor: started %d workers", len(s.workers))
	err := g.Wait()
	logs.Infof("supervisor: stopped")
	return err
}

// IsRunning reports whether the supervisor currently has workers active.
func (s *Supervisor) IsRunning() bool {
	return atomic.LoadInt32(&s.running) == 1
}

// runPollLoop drives a worker's Poll function cooperatively: it never
// blocks, and only sleeps (up to 1ms) after a poll that returned zero
// fragments, matching the SleepingIdleStrategy used throughout the
// pipeline's original transport.
func runPollLoop(ctx context.Context, w Worker) {
	maxFragments := w.MaxFragments
	if maxFragments <= 0 {
		maxFragments = 10
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n := w.Poll(maxFragments)
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
}
