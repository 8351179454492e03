// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrStaleState signals that a concurrent writer
// already moved a reservation past the state the caller observed.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrStaleState is returned when a status-guarded update matched no
// row: another request transitioned the reservation between this
// caller's read and write. The caller lost the race and must re-fetch
// before retrying. Handlers should translate this into an HTTP 409
// response carrying the now-current state.
var ErrStaleState = errors.New("reservation state changed concurrently")

// ErrSlotTaken is returned when inserting exploded slot rows trips the
// unique (field_id, play_date, slot_hour) key: a concurrent booking
// claimed at least one requested hour after the availability check.
// Handlers should translate this into an HTTP 409 conflict.
var ErrSlotTaken = errors.New("slot already taken")
