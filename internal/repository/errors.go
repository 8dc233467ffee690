// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking engine to distinguish between different failure scenarios. For
// example, ErrConflict indicates that a guarded insert found the slot
// already taken, while ErrReservationNotFound signals that a cancellation
// target does not exist, belongs to someone else or is no longer active.
package repository

import "errors"

// ErrConflict is returned when a reservation insert cannot proceed because
// the slot is held by a conflicting confirmed reservation, or an
// overbooking's original reservation is no longer confirmed (or already
// carries a pending overbooking). The engine retries the availability
// check once and reports the slot as occupied.
var ErrConflict = errors.New("conflict")

// ErrFacilityNotFound is returned when a facility name or id does not
// match any row in the facilities table.
var ErrFacilityNotFound = errors.New("facility not found")

// ErrReservationNotFound is returned when a reservation lookup scoped to a
// session and status matches no row.
var ErrReservationNotFound = errors.New("reservation not found")
