// Package booking holds the reservation domain core: the hourly slot
// availability engine, the conflict validator and the payment state
// machine.  Everything in this package is pure: no database handles,
// no clocks other than the ones passed in, so the rules can be tested
// exhaustively without infrastructure.
package booking

import "fmt"

// ValidationError reports malformed input: a start hour at or past the
// end hour, hours outside operating time, an unknown weekday name and
// so on.  Handlers translate it into HTTP 400.
type ValidationError struct {
	Field  string // which input was wrong
	Reason string // human-readable explanation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports that a requested hour range overlaps slots
// already occupied by a reservation or by a recurring member schedule.
// It carries enough detail for the caller to show what is in the way.
// Handlers translate it into HTTP 409.
type ConflictError struct {
	Hour          int    // first conflicting slot hour
	With          string // "reservation" or "member"
	ReservationID uint64 // occupying reservation id (when With == "reservation")
	MemberName    string // occupying member (when With == "member")
	ContactName   string // occupying member's contact (when With == "member")
}

func (e *ConflictError) Error() string {
	if e.With == OccupantMember {
		return fmt.Sprintf("slot %02d:00 is taken by member schedule %q", e.Hour, e.MemberName)
	}
	return fmt.Sprintf("slot %02d:00 is taken by reservation %d", e.Hour, e.ReservationID)
}

// PreconditionError reports that an action is not legal in the
// reservation's current state: rejecting a phase that has no proof,
// verifying a terminal reservation, submitting a proof for the wrong
// payment type, or losing a concurrent-update race.  Handlers
// translate it into HTTP 409.
type PreconditionError struct {
	Action string // the attempted action (VERIFY_DP, submit proof, ...)
	Reason string // why the current state forbids it
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s not allowed: %s", e.Action, e.Reason)
}

// NotFoundError reports that a referenced reservation, field or member
// schedule does not exist.  Handlers translate it into HTTP 404.
type NotFoundError struct {
	Entity string
	ID     uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}
