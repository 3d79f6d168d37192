package cull

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformBuffer is the append-only output of one culling pass. Workers reserve disjoint slot
// ranges with a single atomic add and then write into them without further synchronization.
// Capacity is fixed at construction and is never grown while a pass is running.
//
// Entries have no defined order. Len and Transforms may only be read once the owning pass has
// completed.
type TransformBuffer struct {
	transforms []mgl32.Mat4
	capacity   int64
	next       atomic.Int64
	released   atomic.Bool
}

// NewTransformBuffer allocates a buffer that can hold up to capacity transforms.
//
// Parameters:
//   - capacity: the maximum number of transforms, normally the object count of the pass
//
// Returns:
//   - *TransformBuffer: an empty buffer
func NewTransformBuffer(capacity int) *TransformBuffer {
	if capacity < 0 {
		panic(fmt.Sprintf("cull: negative transform buffer capacity %d", capacity))
	}
	return &TransformBuffer{
		transforms: make([]mgl32.Mat4, capacity),
		capacity:   int64(capacity),
	}
}

// Reserve claims n consecutive slots and returns the index of the first one. The range
// [start, start+n) belongs exclusively to the caller. Reserving past capacity is a programming
// error and panics.
//
// Parameters:
//   - n: the number of slots to claim
//
// Returns:
//   - int: the first reserved slot
func (b *TransformBuffer) Reserve(n int) int {
	if n < 0 {
		panic(fmt.Sprintf("cull: negative reservation %d", n))
	}
	end := b.next.Add(int64(n))
	if end > b.capacity {
		panic(fmt.Sprintf("cull: reservation of %d overflows transform buffer capacity %d", n, b.capacity))
	}
	return int(end) - n
}

// Write stores m in a slot previously obtained from Reserve.
func (b *TransformBuffer) Write(offset int, m mgl32.Mat4) {
	b.transforms[offset] = m
}

// Append reserves one slot and writes m into it.
func (b *TransformBuffer) Append(m mgl32.Mat4) {
	b.transforms[b.Reserve(1)] = m
}

// Len returns the number of reserved slots.
func (b *TransformBuffer) Len() int {
	return int(min(b.next.Load(), b.capacity))
}

// Cap returns the fixed capacity of the buffer.
func (b *TransformBuffer) Cap() int {
	return int(b.capacity)
}

// Transforms returns the written transforms. The slice aliases the buffer and becomes invalid
// after Release.
func (b *TransformBuffer) Transforms() []mgl32.Mat4 {
	if b.released.Load() {
		panic("cull: Transforms called on a released transform buffer")
	}
	return b.transforms[:b.Len()]
}

// Released reports whether Release has been called.
func (b *TransformBuffer) Released() bool {
	return b.released.Load()
}

// Release frees the backing storage. A buffer is released exactly once; a second call panics.
func (b *TransformBuffer) Release() {
	if b.released.Swap(true) {
		panic("cull: transform buffer released twice")
	}
	b.transforms = nil
}
