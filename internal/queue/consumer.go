package queue

// The audit consumer listens to the ticket queue and appends one line per
// event to <dir>/tickets.log.

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// AuditConsumer drains TicketQueueName into a log file.
type AuditConsumer struct {
    URL    string
    Dir    string
    Logger *slog.Logger
}

// Run connects to the broker and consumes until ctx is cancelled.  Lost
// connections are retried with exponential backoff capped at 30s.
func (a *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if err := ctx.Err(); err != nil {
            return err
        }
        conn, err := amqp.Dial(a.URL)
        if err != nil {
            a.Logger.Warn("ticket-audit: dial failed", "error", err, "retry_in", backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = a.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        a.Logger.Warn("ticket-audit: consume loop ended, reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (a *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        a.Logger.Warn("ticket-audit: set QoS failed", "error", err)
    }
    if _, err := ch.QueueDeclare(TicketQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(TicketQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := a.handle(d.Body); err != nil {
                a.Logger.Error("ticket-audit: handle message failed", "error", err)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (a *AuditConsumer) handle(body []byte) error {
    var ev TicketEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Kind == "" {
        return errors.New("event without kind")
    }
    if err := os.MkdirAll(a.Dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", a.Dir, err)
    }
    f, err := os.OpenFile(filepath.Join(a.Dir, "tickets.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatAuditLine renders ev as a single newline-terminated log line.
func FormatAuditLine(ev TicketEvent) string {
    return fmt.Sprintf("[%s] %s | ticket_id=%d | number=%s | user_id=%d | movie_id=%d | showtime_id=%d | actor_id=%d\n",
        ev.OccurredAt, ev.Kind, ev.TicketID, ev.TicketNumber, ev.UserID, ev.MovieID, ev.ShowtimeID, ev.ActorID)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
