package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

const SendRoutingKey = "mail.send"

// QueuePublisher pushes messages onto a topic exchange for the Worker to deliver.
type QueuePublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewQueuePublisher(url, exchange string) (*QueuePublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &QueuePublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *QueuePublisher) Dispatch(ctx context.Context, msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, SendRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         b,
	})
}

func (p *QueuePublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Worker consumes queued messages and hands them to a transport.
type Worker struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	sender Dispatcher
	logger *slog.Logger
}

func NewWorker(url, exchange, queue string, sender Dispatcher, logger *slog.Logger) (*Worker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, SendRoutingKey, exchange, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("bind %s: %w", SendRoutingKey, err)
	}
	return &Worker{conn: conn, ch: ch, queue: q.Name, sender: sender, logger: logger}, nil
}

// Run delivers messages until ctx is cancelled or the channel closes.
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.ch.ConsumeWithContext(ctx, w.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", w.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		w.logger.Error("Dropping malformed mail message", "error", err)
		_ = d.Nack(false, false)
		return
	}
	if err := w.sender.Dispatch(ctx, msg); err != nil {
		w.logger.Error("Mail delivery failed", "to", msg.To, "error", err)
		// one redelivery, then drop
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}

func (w *Worker) Close() error {
	if w.ch != nil {
		_ = w.ch.Close()
	}
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}
