package models

import "fmt"

// TriState is the state of a page-level select-all control.
type TriState int

const (
	// None means no visible row is selected.
	None TriState = iota
	// All means every visible row is selected.
	All
	// Indeterminate means some but not all visible rows are selected.
	Indeterminate
)

func (s TriState) String() string {
	switch s {
	case All:
		return "all"
	case Indeterminate:
		return "indeterminate"
	default:
		return "none"
	}
}

// Checked reports whether the control renders as checked.
func (s TriState) Checked() bool { return s == All }

// MarshalText implements encoding.TextMarshaler.
func (s TriState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TriState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none":
		*s = None
	case "all":
		*s = All
	case "indeterminate":
		*s = Indeterminate
	default:
		return fmt.Errorf("unknown tri-state %q", string(b))
	}
	return nil
}
