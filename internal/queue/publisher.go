package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends ticket events to RabbitMQ.  Each call dials its own
// connection, so a broker outage only affects the events sent meanwhile.
type Publisher struct {
    URL string
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string) *Publisher {
    return &Publisher{URL: url}
}

// Publish marshals ev and sends it, persistent, to TicketQueueName.
func (p *Publisher) Publish(ctx context.Context, ev TicketEvent) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(TicketQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Type:         ev.Kind,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    // default exchange, routing key = queue name
    if err := ch.PublishWithContext(ctx, "", TicketQueueName, false, false, pub); err != nil {
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}
