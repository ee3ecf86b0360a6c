package netlib

import "errors"

// Sentinel errors shared across pkg/netlib and pkg/netlist, matching the
// closed error-kind set of the error handling design: wrap with
// fmt.Errorf("...: %w", err) at each call site rather than growing a
// bespoke exception hierarchy.
var (
	ErrUnknownCell  = errors.New("unknown cell")
	ErrNoCandidate  = errors.New("no candidate")
	ErrInvalidInput = errors.New("invalid input")
	ErrNetNotFound  = errors.New("net not found")
	ErrIO           = errors.New("io error")
)
