package internal

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is one unit of background persistence work
type Task func(ctx context.Context) error

// Dispatcher runs persistence tasks in the background with bounded
// concurrency. Task failures are logged and counted, never returned.
type Dispatcher struct {
	group   errgroup.Group
	pending sync.WaitGroup
	timeout time.Duration
}

// NewDispatcher creates a dispatcher running at most maxInFlight tasks at
// once, each bounded by timeout (zero means no timeout)
func NewDispatcher(maxInFlight int, timeout time.Duration) *Dispatcher {
	d := &Dispatcher{timeout: timeout}
	if maxInFlight > 0 {
		d.group.SetLimit(maxInFlight)
	}
	return d
}

// Submit schedules fn and returns immediately. fn runs on a context that
// keeps ctx's values but not its cancellation.
func (d *Dispatcher) Submit(ctx context.Context, op string, fn Task) {
	base := context.WithoutCancel(ctx)
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		d.group.Go(func() error {
			d.run(base, op, fn)
			return nil
		})
	}()
}

func (d *Dispatcher) run(ctx context.Context, op string, fn Task) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	counter := GetMetrics().PersistenceTasksTotal
	start := time.Now()
	err := fn(ctx)
	if err != nil {
		counter.WithLabelValues(op, "error").Inc()
		Logger().Warn("persistence task failed",
			zap.String("op", op),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	counter.WithLabelValues(op, "ok").Inc()
	Logger().Debug("persistence task completed",
		zap.String("op", op),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// Wait blocks until every submitted task has finished
func (d *Dispatcher) Wait() {
	d.pending.Wait()
	_ = d.group.Wait()
}
