package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/quemtemboca/marketplace-api/internal/logutil"
)

// DefaultDialTimeout bounds the broker handshake when the caller's context
// carries no deadline.
const DefaultDialTimeout = 5 * time.Second

// Publisher publishes JSON events to durable RabbitMQ queues.  A connection
// is opened per publish; event volume here is a handful per minute.  Errors
// are logged and returned so callers can choose to ignore them.
type Publisher struct {
	url     string
	enabled bool
}

// NewPublisher returns a publisher for the broker at url.  A disabled
// publisher accepts and drops every event.
func NewPublisher(url string, enabled bool) *Publisher {
	return &Publisher{url: url, enabled: enabled}
}

// Publish marshals payload and sends it to the named queue as a persistent
// message.
func (p *Publisher) Publish(ctx context.Context, queueName string, payload any) error {
	log := logutil.GetOrDefault(ctx)
	if p == nil || !p.enabled {
		log.Debug().Str("queue", queueName).Msg("publisher disabled; event dropped")
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("queue", queueName).Msg("rabbitmq: marshal event failed")
		return err
	}

	timeout, err := dialTimeout(ctx)
	if err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		log.Error().Err(err).Str("queue", queueName).Msg("rabbitmq: queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Error().Err(err).Str("queue", queueName).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}

// dialTimeout derives the handshake budget from the context deadline.
func dialTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return DefaultDialTimeout, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return left, nil
}
