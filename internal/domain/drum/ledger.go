package drum

import (
	"github.com/MACM18/NNS-sub002/internal/core/types"
)

// Status of a drum, derived from its current quantity.
type Status string

const (
	// StatusActive - drum has usable cable left
	StatusActive Status = "active"
	// StatusInactive - remainder too short to be worth dispatching
	StatusInactive Status = "inactive"
	// StatusEmpty - fully consumed
	StatusEmpty Status = "empty"
)

// InactiveThreshold is the remainder, in length units, at or below which a
// drum is no longer dispatched to field crews.
var InactiveThreshold = types.LengthFromInt(10)

// StatusForQuantity derives drum status from its current quantity.
// The status is always fully recomputed after every usage-affecting
// mutation, never incrementally patched.
func StatusForQuantity(q types.Length) Status {
	switch {
	case q <= 0:
		return StatusEmpty
	case q <= InactiveThreshold:
		return StatusInactive
	default:
		return StatusActive
	}
}
