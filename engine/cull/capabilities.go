package cull

import "golang.org/x/sys/cpu"

// InstructionSet names the vector instruction set an explicit-intrinsic kernel is written against.
type InstructionSet int

const (
	// ISANone marks kernels that run on any host.
	ISANone InstructionSet = iota
	// ISASSE2 is the x86 128-bit float instruction set.
	ISASSE2
	// ISANeon is the ARMv8 Advanced SIMD instruction set.
	ISANeon
)

func (i InstructionSet) String() string {
	switch i {
	case ISASSE2:
		return "sse2"
	case ISANeon:
		return "neon"
	default:
		return "none"
	}
}

// Capabilities describes which vector instruction sets are usable on the host.
type Capabilities struct {
	SSE2 bool
	Neon bool
}

// Supports reports whether the instruction set is available. ISANone is always available.
func (c Capabilities) Supports(isa InstructionSet) bool {
	switch isa {
	case ISASSE2:
		return c.SSE2
	case ISANeon:
		return c.Neon
	default:
		return true
	}
}

// hostCapabilities is probed once at startup. Tests swap it to exercise both targets.
var hostCapabilities = Capabilities{
	SSE2: cpu.X86.HasSSE2,
	Neon: cpu.ARM64.HasASIMD,
}

// HostCapabilities returns the instruction sets detected on the running host.
func HostCapabilities() Capabilities {
	return hostCapabilities
}
