// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// TicketQueueName is the durable queue carrying ticket lifecycle events.
const TicketQueueName = "ticket.events"

// Ticket event kinds.
const (
    TicketIssued  = "ticket.issued"
    TicketUpdated = "ticket.updated"
    TicketDeleted = "ticket.deleted"
)

// TicketEvent is published whenever an administrator issues, edits or
// removes a ticket.  It carries enough for an audit trail without querying
// the primary database.
type TicketEvent struct {
    Kind         string `json:"kind"`
    TicketID     uint64 `json:"ticket_id"`
    TicketNumber string `json:"ticket_number"`
    UserID       uint64 `json:"user_id"`
    MovieID      uint64 `json:"movie_id"`
    ShowtimeID   uint64 `json:"showtime_id"`
    ActorID      uint64 `json:"actor_id"`
    OccurredAt   string `json:"occurred_at"`
}

// Stamp sets OccurredAt to t in RFC 3339 form.
func (e *TicketEvent) Stamp(t time.Time) {
    e.OccurredAt = t.UTC().Format(time.RFC3339)
}
