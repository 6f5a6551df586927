// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios. ErrNotFound means the addressed row does not exist, while
// ErrConflict signals that a delete cannot proceed because other rows
// still reference the target without a cascade (e.g. deleting a user who
// has bookings).
package repository

import "errors"

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a delete is refused because of
// non-cascading references.
var ErrConflict = errors.New("conflict")

// ErrTicketNumberTaken is returned when a ticket number is already used by
// another ticket.
var ErrTicketNumberTaken = errors.New("ticket number already exists")
