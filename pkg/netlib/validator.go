package netlib

import "fmt"

// ValidateLibrary checks structural well-formedness of a freshly parsed
// library and returns non-fatal warnings (e.g. zero-weight cells that can
// never be drawn) alongside a hard error for anything that would leave the
// library unusable. Mirrors the warnings/errors split of the teacher's
// scenario validator: warnings are reported to the caller but never block
// a load.
func ValidateLibrary(l *Library) ([]string, error) {
	var warnings []string

	if len(l.specs) == 0 {
		return nil, fmt.Errorf("%w: library has no cells", ErrInvalidInput)
	}

	seen := make(map[string]bool, len(l.specs))
	for _, s := range l.specs {
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate cell name %q", ErrInvalidInput, s.Name)
		}
		seen[s.Name] = true

		if s.Weight <= 0 {
			warnings = append(warnings, fmt.Sprintf("cell %q has weight <= 0 and can never be drawn", s.Name))
		}
		if len(s.Inputs) == 0 && len(s.Outputs) == 0 {
			return nil, fmt.Errorf("%w: cell %q has neither inputs nor outputs", ErrInvalidInput, s.Name)
		}
		for out, ins := range s.SeqConns {
			if _, ok := s.FindOutput(out); !ok {
				return nil, fmt.Errorf("%w: cell %q seq_conns references unknown output %q", ErrInvalidInput, s.Name, out)
			}
			for in := range ins {
				if _, ok := s.FindInput(in); !ok {
					return nil, fmt.Errorf("%w: cell %q seq_conns references unknown input %q", ErrInvalidInput, s.Name, in)
				}
			}
		}
	}

	haveBuffer := false
	for _, s := range l.specs {
		if s.IsBuffer() {
			haveBuffer = true
			break
		}
	}
	if !haveBuffer {
		warnings = append(warnings, "library contains no single-bit 1-in/1-out cell usable as a buffer")
	}

	return warnings, nil
}
