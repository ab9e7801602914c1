package graft

import "errors"

var (
	// ErrUnresolvedComponentType reports a component type without an inlet
	// contract. The graft is not applied.
	ErrUnresolvedComponentType = errors.New("unresolved component type")

	// ErrLoopLists reports parallel loop lists that disagree on their
	// branches.
	ErrLoopLists = errors.New("loop lists out of sync")
)
