package cull

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-cull/common"
)

const (
	// DefaultBatchSize is the number of objects a worker claims at a time.
	DefaultBatchSize = 32

	// MaxWorkers bounds the task count of a pass to the pool queue size.
	MaxWorkers = 256
)

// BatchFunc culls objects [start, end) of a pass. scratch is a task-local slice of length zero
// and capacity of at least one batch; the returned slice is handed back on the next batch of the
// same task so its storage is reused.
type BatchFunc func(start, end int, scratch []int) []int

// Dispatcher splits a pass into fixed partitions and runs them on a worker pool. Worker task w
// processes batches w, w+W, w+2W, ... where W is the task count. The only synchronization between
// tasks is the transform buffer's reservation counter and the pass completion counter.
type Dispatcher interface {
	// Workers returns the number of tasks a parallel pass is split into.
	Workers() int

	// BatchSize returns the batch size. It is always a multiple of Width so that every batch
	// except the last one of a pass starts and ends on a lane boundary.
	BatchSize() int

	// Dispatch runs fn over count objects on up to Workers() tasks.
	//
	// Parameters:
	//   - variant: the variant recorded on the returned pass
	//   - buffer: the output buffer the pass hands back on Await
	//   - count: the number of objects in the pass
	//   - fn: the batch body
	//
	// Returns:
	//   - *Pass: the in-flight pass
	Dispatch(variant Variant, buffer *TransformBuffer, count int, fn BatchFunc) *Pass

	// DispatchSingle runs fn over all count objects as a single background task.
	//
	// Parameters:
	//   - variant: the variant recorded on the returned pass
	//   - buffer: the output buffer the pass hands back on Await
	//   - count: the number of objects in the pass
	//   - fn: the batch body, called once with the whole range
	//
	// Returns:
	//   - *Pass: the in-flight pass
	DispatchSingle(variant Variant, buffer *TransformBuffer, count int, fn BatchFunc) *Pass

	// Close stops every worker and returns once they have exited. Passes already dispatched run to
	// completion first. Dispatching after Close panics; a second Close is a no-op.
	Close()
}

// dispatcher is the implementation of the Dispatcher interface.
type dispatcher struct {
	pool      worker.DynamicWorkerPool
	workers   int
	batchSize int
	nextID    atomic.Int64
	closed    atomic.Bool
}

// Ensure dispatcher implements Dispatcher interface.
var _ Dispatcher = &dispatcher{}

// DispatcherBuilderOption configures a dispatcher during construction.
type DispatcherBuilderOption func(*dispatcher)

// WithWorkers sets the number of tasks a parallel pass is split into. Values are clamped to
// [1, MaxWorkers].
func WithWorkers(n int) DispatcherBuilderOption {
	return func(d *dispatcher) {
		d.workers = n
	}
}

// WithBatchSize sets the per-task batch size. It is rounded up to a multiple of Width.
func WithBatchSize(n int) DispatcherBuilderOption {
	return func(d *dispatcher) {
		d.batchSize = n
	}
}

// NewDispatcher creates a Dispatcher backed by a dynamic worker pool. Workers persist across
// passes until Close.
//
// Parameters:
//   - options: functional options to configure worker count and batch size
//
// Returns:
//   - Dispatcher: the configured dispatcher
func NewDispatcher(options ...DispatcherBuilderOption) Dispatcher {
	d := &dispatcher{
		workers:   runtime.NumCPU(),
		batchSize: DefaultBatchSize,
	}

	for _, option := range options {
		option(d)
	}

	d.workers = min(max(d.workers, 1), MaxWorkers)
	d.batchSize = common.AlignUp(common.Coalesce(max(d.batchSize, 0), DefaultBatchSize), Width)

	// The queue holds one task per worker, so a pass never blocks on submission.
	d.pool = worker.NewDynamicWorkerPool(d.workers, MaxWorkers, 1*time.Second)

	return d
}

func (d *dispatcher) Workers() int {
	return d.workers
}

func (d *dispatcher) BatchSize() int {
	return d.batchSize
}

func (d *dispatcher) Close() {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}

	// Pool workers share one stop channel and drop ids that are not their own, so pool.Stop alone
	// leaves most of them parked. Each worker instead takes exactly one exit task: a worker that ran
	// one is gone and cannot take another. The queue is FIFO, so earlier pass tasks drain first.
	var exited sync.WaitGroup
	exited.Add(d.workers)
	for range d.workers {
		d.pool.SubmitTask(worker.Task{
			ID: int(d.nextID.Add(1)),
			Do: func() (any, error) {
				defer exited.Done()
				runtime.Goexit()
				return nil, nil
			},
		})
	}
	exited.Wait()
	d.pool.Stop()
	logger.Debugf("dispatcher stopped %d workers", d.workers)
}

func (d *dispatcher) checkOpen() {
	if d.closed.Load() {
		panic("cull: dispatch on a closed dispatcher")
	}
}

func (d *dispatcher) Dispatch(variant Variant, buffer *TransformBuffer, count int, fn BatchFunc) *Pass {
	batches := common.CeilDiv(count, d.batchSize)
	return d.run(variant, buffer, count, d.batchSize, min(d.workers, batches), fn)
}

func (d *dispatcher) DispatchSingle(variant Variant, buffer *TransformBuffer, count int, fn BatchFunc) *Pass {
	if count == 0 {
		return d.run(variant, buffer, 0, 1, 0, fn)
	}
	return d.run(variant, buffer, count, count, 1, fn)
}

// run submits the fixed-partition tasks of one pass to the pool. Each task walks its share of the batches
// and decrements the pass counter when done, whether or not the batch body panicked.
func (d *dispatcher) run(variant Variant, buffer *TransformBuffer, count, batchSize, tasks int, fn BatchFunc) *Pass {
	d.checkOpen()
	pass := newPass(variant, buffer, tasks)
	batches := common.CeilDiv(count, batchSize)

	for w := range tasks {
		id := int(d.nextID.Add(1))
		d.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer pass.taskDone()
				defer func() {
					if r := recover(); r != nil {
						err := fmt.Errorf("%w: %s task %d: %v", ErrTaskPanicked, variant, w, r)
						logger.Errorf("%v", err)
						pass.fail(err)
					}
				}()

				scratch := make([]int, 0, min(batchSize, count))
				for b := w; b < batches; b += tasks {
					start := b * batchSize
					end := min(start+batchSize, count)
					scratch = fn(start, end, scratch[:0])
				}
				return nil, nil
			},
		})
	}

	return pass
}
