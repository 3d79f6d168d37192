package cull

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-cull/common"
	"github.com/Carmen-Shannon/oxy-cull/log"
)

var logger = log.New("cull")

// Kernel is one culling strategy bound to a volume layout. A kernel is prepared with a store and
// then issues one pass per frame; the caller owns each pass's buffer once Await returns.
type Kernel interface {
	// Variant returns the strategy this kernel implements.
	Variant() Variant

	// Layout returns the volume layout the kernel reads.
	Layout() Layout

	// Synchronous reports whether Cull returns an already completed pass.
	Synchronous() bool

	// Prepare binds the kernel to a store. The store must use the kernel's layout and must not be
	// mutated while a pass is in flight.
	//
	// Parameters:
	//   - store: the volumes to test
	Prepare(store *VolumeStore)

	// Cull issues one pass against the given planes.
	//
	// Parameters:
	//   - planes: the six frustum planes
	//
	// Returns:
	//   - *Pass: the pass handle; Await it to obtain the visible transforms
	Cull(planes [common.PlaneCount]common.Plane) *Pass
}

// cullContext is the read-only state shared by every batch of one pass.
type cullContext struct {
	store      *VolumeStore
	planes     [common.PlaneCount]common.Plane
	packets    [PacketCount]PlanePacket
	absPackets [PacketCount]PlanePacket
	out        *TransformBuffer
}

// batchBody culls objects [start, end) of a pass into ctx.out.
type batchBody func(ctx *cullContext, start, end int, scratch []int) []int

// kernel is the implementation of the Kernel interface shared by every variant. Variants differ
// only in the batch body and in how the pass is scheduled.
type kernel struct {
	variant    Variant
	body       batchBody
	dispatcher Dispatcher
	store      *VolumeStore
}

// Ensure kernel implements Kernel interface.
var _ Kernel = &kernel{}

var registry = map[Variant]batchBody{}

// register binds a batch body to a variant. Called from init functions of the kernel files.
func register(v Variant, body batchBody) {
	if !v.Valid() {
		panic(fmt.Sprintf("cull: cannot register kernel for %s", v))
	}
	if _, ok := registry[v]; ok {
		panic(fmt.Sprintf("cull: kernel for %s registered twice", v))
	}
	registry[v] = body
}

// sharedDispatcher serves kernels built without a dispatcher. It lives for the whole process and is
// never closed.
var sharedDispatcher = sync.OnceValue(func() Dispatcher {
	return NewDispatcher()
})

// NewKernel builds the kernel for a variant. Selecting an unknown or uninitialized variant is a
// configuration error and panics. Background variants run on d; with a nil d they share one
// package-wide dispatcher.
//
// Parameters:
//   - variant: the strategy to build
//   - d: the dispatcher used by background variants (may be nil)
//
// Returns:
//   - Kernel: the unprepared kernel
func NewKernel(variant Variant, d Dispatcher) Kernel {
	body, ok := registry[variant]
	if !ok {
		panic(fmt.Sprintf("cull: no kernel for variant %s", variant))
	}
	if d == nil && !variant.Synchronous() {
		d = sharedDispatcher()
	}
	return &kernel{variant: variant, body: body, dispatcher: d}
}

func (k *kernel) Variant() Variant {
	return k.variant
}

func (k *kernel) Layout() Layout {
	return k.variant.Layout()
}

func (k *kernel) Synchronous() bool {
	return k.variant.Synchronous()
}

func (k *kernel) Prepare(store *VolumeStore) {
	if store == nil {
		panic(fmt.Sprintf("cull: %s: Prepare called with a nil store", k.variant))
	}
	if store.Layout() != k.Layout() {
		panic(fmt.Sprintf("cull: %s expects layout %s, got %s", k.variant, k.Layout(), store.Layout()))
	}
	k.store = store
}

func (k *kernel) Cull(planes [common.PlaneCount]common.Plane) *Pass {
	if k.store == nil {
		panic(fmt.Sprintf("cull: %s: Cull called before Prepare", k.variant))
	}

	if isa := k.variant.InstructionSet(); !hostCapabilities.Supports(isa) {
		err := fmt.Errorf("%w: %s requires %s", ErrUnsupportedInstructionSet, k.variant, isa)
		logger.Errorf("%v", err)
		return completedPass(k.variant, NewTransformBuffer(0), 0, err)
	}

	n := k.store.Len()
	ctx := &cullContext{
		store:   k.store,
		planes:  planes,
		packets: PackPlanes(planes),
		out:     NewTransformBuffer(n),
	}
	ctx.absPackets = [PacketCount]PlanePacket{ctx.packets[0].absNormals(), ctx.packets[1].absNormals()}

	fn := func(start, end int, scratch []int) []int {
		return k.body(ctx, start, end, scratch)
	}

	switch k.variant.info().mode {
	case execSync:
		started := time.Now()
		fn(0, n, nil)
		return completedPass(k.variant, ctx.out, time.Since(started), nil)
	case execSingle:
		return k.dispatcher.DispatchSingle(k.variant, ctx.out, n, fn)
	default:
		return k.dispatcher.Dispatch(k.variant, ctx.out, n, fn)
	}
}

// emitMask writes the transforms of the lanes set in mask, for the four objects starting at base,
// with one reservation for the whole group.
func (c *cullContext) emitMask(base int, mask Mask4) {
	n := popcount(mask)
	if n == 0 {
		return
	}
	offset := c.out.Reserve(n)
	for lane := range Width {
		if mask.Has(lane) {
			c.out.Write(offset, c.store.Transform(base+lane))
			offset++
		}
	}
}

// checkLaneAligned panics if a 4-wide body is entered at an index that is not a lane boundary.
func checkLaneAligned(start int) {
	if start%Width != 0 {
		panic(fmt.Sprintf("cull: 4-wide batch starts at %d, not a multiple of %d", start, Width))
	}
}
