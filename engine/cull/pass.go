package cull

import (
	"sync"
	"sync/atomic"
	"time"
)

// Pass is the handle of one culling pass. It completes once every task it was split into has
// finished; there is no cancellation.
type Pass struct {
	variant Variant
	buffer  *TransformBuffer

	started   time.Time
	elapsed   time.Duration
	remaining atomic.Int32
	done      chan struct{}

	mu  *sync.Mutex
	err error
}

func newPass(variant Variant, buffer *TransformBuffer, tasks int) *Pass {
	p := &Pass{
		variant: variant,
		buffer:  buffer,
		started: time.Now(),
		done:    make(chan struct{}),
		mu:      &sync.Mutex{},
	}
	p.remaining.Store(int32(tasks))
	if tasks == 0 {
		close(p.done)
	}
	return p
}

// completedPass returns a pass that is already finished.
func completedPass(variant Variant, buffer *TransformBuffer, elapsed time.Duration, err error) *Pass {
	p := newPass(variant, buffer, 0)
	p.elapsed = elapsed
	p.err = err
	return p
}

// taskDone marks one task as finished. The last task stamps the elapsed time and completes the pass.
func (p *Pass) taskDone() {
	if p.remaining.Add(-1) == 0 {
		p.elapsed = time.Since(p.started)
		close(p.done)
	}
}

func (p *Pass) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

// Await blocks until the pass has completed and returns its output buffer. Ownership of the buffer
// passes to the caller, who must Release it once consumed. Await may be called more than once.
//
// Returns:
//   - *TransformBuffer: the compacted visible transforms
func (p *Pass) Await() *TransformBuffer {
	<-p.done
	return p.buffer
}

// Done returns a channel closed when the pass completes.
func (p *Pass) Done() <-chan struct{} {
	return p.done
}

// Variant returns the kernel variant that issued the pass.
func (p *Pass) Variant() Variant {
	return p.variant
}

// Elapsed returns the wall time between issue and completion. Only meaningful after Await.
func (p *Pass) Elapsed() time.Duration {
	<-p.done
	return p.elapsed
}

// Err returns the diagnostic recorded by the pass, if any. A pass with an error has produced no
// usable output. Blocks until the pass has completed.
func (p *Pass) Err() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
