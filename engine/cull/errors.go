package cull

import "errors"

var (
	// ErrUnsupportedInstructionSet is reported by a pass whose kernel needs a vector instruction
	// set the host does not provide. The pass produces no transforms.
	ErrUnsupportedInstructionSet = errors.New("cull: instruction set not supported by this host")

	// ErrUnknownVariant is returned by ParseVariant for names that match no registered kernel.
	ErrUnknownVariant = errors.New("cull: unknown culling variant")

	// ErrTaskPanicked is reported by a pass when one of its worker tasks panicked.
	ErrTaskPanicked = errors.New("cull: worker task panicked")
)
