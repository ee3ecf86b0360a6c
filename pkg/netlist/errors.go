package netlist

import "github.com/splogdes/fuznet/pkg/netlib"

// Re-exported so callers of pkg/netlist never need to import pkg/netlib
// just to compare errors with errors.Is.
var (
	ErrUnknownCell  = netlib.ErrUnknownCell
	ErrNoCandidate  = netlib.ErrNoCandidate
	ErrInvalidInput = netlib.ErrInvalidInput
	ErrNetNotFound  = netlib.ErrNetNotFound
	ErrIO           = netlib.ErrIO
)
