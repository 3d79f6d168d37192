package renderer

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Sink consumes the transforms produced by one culling pass. The slice is only valid for the
// duration of the call: the caller releases the backing buffer once Consume returns.
type Sink interface {
	// Consume receives the visible transforms of one pass, in no particular order.
	//
	// Parameters:
	//   - transforms: translation-only instance transforms, read-only
	Consume(transforms []mgl32.Mat4)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(transforms []mgl32.Mat4)

// Consume calls f(transforms).
func (f SinkFunc) Consume(transforms []mgl32.Mat4) {
	f(transforms)
}

// Tee returns a Sink that forwards every buffer to each of sinks in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(transforms []mgl32.Mat4) {
		for _, s := range sinks {
			s.Consume(transforms)
		}
	})
}

// CountingSink records how many buffers and transforms it has seen without keeping any of them.
type CountingSink struct {
	mu     *sync.Mutex
	frames int
	last   int
	total  int
}

// NewCountingSink creates an empty CountingSink.
func NewCountingSink() *CountingSink {
	return &CountingSink{mu: &sync.Mutex{}}
}

func (c *CountingSink) Consume(transforms []mgl32.Mat4) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames++
	c.last = len(transforms)
	c.total += len(transforms)
}

// Frames returns the number of buffers consumed.
func (c *CountingSink) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Last returns the length of the most recent buffer.
func (c *CountingSink) Last() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Total returns the number of transforms consumed across all buffers.
func (c *CountingSink) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
