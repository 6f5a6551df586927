// Command ticket-audit consumes ticket lifecycle events from RabbitMQ and
// appends them to an audit log.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/b-cinema/internal/logger"
	"github.com/iliyamo/b-cinema/internal/queue"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	url := os.Getenv("AMQP_URL")
	if url == "" {
		url = os.Getenv("RABBITMQ_URL")
	}
	if url == "" {
		logger.Fatal("ticket-audit: AMQP_URL or RABBITMQ_URL is required")
	}
	dir := os.Getenv("AUDIT_DIR")
	if dir == "" {
		dir = "logs"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.AuditConsumer{URL: url, Dir: dir, Logger: logger.Get()}
	logger.Get().Info("ticket-audit: consuming", "queue", queue.TicketQueueName, "dir", dir)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("ticket-audit: stopped", "error", err)
	}
}
