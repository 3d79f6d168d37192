package scene

import (
	"time"

	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
)

// State is the orchestrator's lifecycle state.
type State int

const (
	// StateUninitialized holds no volumes; the next Tick with a non-zero count spawns them.
	StateUninitialized State = iota
	// StateSpawned holds a volume store and a prepared kernel for SpawnedVariant / SpawnedCount.
	StateSpawned
)

func (s State) String() string {
	if s == StateSpawned {
		return "spawned"
	}
	return "uninitialized"
}

// FrameStats describes one Tick.
type FrameStats struct {
	// Frame is the 1-based index of the tick.
	Frame uint64

	// Variant and Objects describe the pass issued this frame.
	Variant cull.Variant
	Objects int

	// Consumed is set when a pass was handed to the sink during this tick. For pipelined variants
	// that is the pass issued on the previous frame.
	Consumed bool

	// ConsumedVariant is the variant of the consumed pass.
	ConsumedVariant cull.Variant

	// Visible is the transform count of the consumed pass.
	Visible int

	// CullTime is the wall time of the consumed pass.
	CullTime time.Duration

	// Respawned is set when the volume store was rebuilt during this tick.
	Respawned bool

	// Skipped is set when the object count is zero and no pass was issued.
	Skipped bool

	// Err is the diagnostic of the consumed pass, if any.
	Err error
}
