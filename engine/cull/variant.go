package cull

import (
	"fmt"
	"strings"
)

// Variant selects one culling strategy. All variants compute the same visible set; they differ
// in data layout and execution.
type Variant int

const (
	// VariantUninitialized is the zero value. Selecting it is a configuration error.
	VariantUninitialized Variant = iota
	VariantNoCull
	VariantSequential
	VariantSequentialBranchless
	VariantSingleWorker
	VariantParallel
	VariantParallelBranchless
	VariantBatchedBranchless
	VariantPacked
	VariantSoA
	VariantSSE
	VariantNeon
	VariantAABBPacked
	VariantAABBSoA
	VariantAABBNeon

	variantCount
)

// execMode describes how a kernel schedules a pass.
type execMode int

const (
	// execSync runs the whole pass on the calling goroutine.
	execSync execMode = iota
	// execSingle runs the whole pass as one background task.
	execSingle
	// execParallel splits the pass into batches across the dispatcher's workers.
	execParallel
)

func (m execMode) String() string {
	switch m {
	case execSync:
		return "synchronous"
	case execSingle:
		return "single worker"
	default:
		return "parallel"
	}
}

type variantInfo struct {
	name   string
	layout Layout
	mode   execMode
	isa    InstructionSet
	about  string
}

var variantTable = [variantCount]variantInfo{
	VariantUninitialized:        {name: "uninitialized"},
	VariantNoCull:               {"no-cull", LayoutSphereAoS, execSync, ISANone, "emit every object"},
	VariantSequential:           {"sequential", LayoutSphereAoS, execSync, ISANone, "scalar, early exit"},
	VariantSequentialBranchless: {"sequential-branchless", LayoutSphereAoS, execSync, ISANone, "scalar, six tests AND-reduced"},
	VariantSingleWorker:         {"single-worker", LayoutSphereAoS, execSingle, ISANone, "scalar on one background worker"},
	VariantParallel:             {"parallel", LayoutSphereAoS, execParallel, ISANone, "scalar per worker, reserve per survivor"},
	VariantParallelBranchless:   {"parallel-branchless", LayoutSphereAoS, execParallel, ISANone, "branchless per worker, reserve per survivor"},
	VariantBatchedBranchless:    {"batched-branchless", LayoutSphereAoS, execParallel, ISANone, "branchless, one reservation per batch"},
	VariantPacked:               {"packed", LayoutSphereAoS, execParallel, ISANone, "4-wide, position broadcast against two plane packets"},
	VariantSoA:                  {"soa", LayoutSphereSoA, execParallel, ISANone, "4-wide, four objects per load"},
	VariantSSE:                  {"sse", LayoutSphereSoA, execParallel, ISASSE2, "explicit SSE2 sequence"},
	VariantNeon:                 {"neon", LayoutSphereSoA, execParallel, ISANeon, "explicit NEON sequence"},
	VariantAABBPacked:           {"aabb-packed", LayoutAABBUnified, execParallel, ISANone, "4-wide boxes against two plane packets"},
	VariantAABBSoA:              {"aabb-soa", LayoutAABBSoA, execParallel, ISANone, "4-wide, four boxes per load"},
	VariantAABBNeon:             {"aabb-neon", LayoutAABBSoA, execParallel, ISANeon, "explicit NEON sequence for boxes"},
}

func (v Variant) info() variantInfo {
	if v < 0 || v >= variantCount {
		return variantInfo{name: fmt.Sprintf("variant(%d)", int(v))}
	}
	return variantTable[v]
}

func (v Variant) String() string {
	return v.info().name
}

// Layout returns the volume layout the variant's kernel reads.
func (v Variant) Layout() Layout {
	return v.info().layout
}

// Synchronous reports whether passes of this variant complete before Cull returns.
func (v Variant) Synchronous() bool {
	return v.info().layout != LayoutNone && v.info().mode == execSync
}

// Execution describes how the variant schedules its passes.
func (v Variant) Execution() string {
	return v.info().mode.String()
}

// InstructionSet returns the explicit instruction set the variant requires, or ISANone.
func (v Variant) InstructionSet() InstructionSet {
	return v.info().isa
}

// Description returns a one-line summary of the strategy.
func (v Variant) Description() string {
	return v.info().about
}

// Supported reports whether the variant can produce output on this host.
func (v Variant) Supported() bool {
	return hostCapabilities.Supports(v.InstructionSet())
}

// Valid reports whether v names a selectable variant.
func (v Variant) Valid() bool {
	return v > VariantUninitialized && v < variantCount
}

// Variants returns every selectable variant in declaration order.
func Variants() []Variant {
	out := make([]Variant, 0, variantCount-1)
	for v := VariantUninitialized + 1; v < variantCount; v++ {
		out = append(out, v)
	}
	return out
}

// ParseVariant maps a variant name to its value. Matching is case-insensitive and accepts
// underscores in place of dashes.
//
// Parameters:
//   - name: the variant name, e.g. "soa" or "batched-branchless"
//
// Returns:
//   - Variant: the matching variant
//   - error: ErrUnknownVariant when nothing matches
func ParseVariant(name string) (Variant, error) {
	needle := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, v := range Variants() {
		if v.String() == needle {
			return v, nil
		}
	}
	return VariantUninitialized, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}
