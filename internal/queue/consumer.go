package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/quemtemboca/marketplace-api/internal/logutil"
)

// RecoveryOutbox is where recovery notices are written until a mail
// transport exists.  Each event becomes one line.
const RecoveryOutbox = "logs/recovery.log"

// StartRecoveryConsumer connects to RabbitMQ, declares the recovery queue
// (durable) and consumes until ctx is cancelled.  Broker failures trigger a
// reconnect with exponential backoff capped at 30s.  Each delivered event is
// appended to RecoveryOutbox; malformed messages are rejected without requeue
// so a poison message cannot spin the loop.
func StartRecoveryConsumer(ctx context.Context, url string) error {
	log := logutil.GetOrDefault(ctx)

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("recovery-consumer: failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("recovery-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	log := logutil.GetOrDefault(ctx)

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("recovery-consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(RecoveryRequestedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, RecoveryRequestedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := deliver(d.Body); err != nil {
			log.Error().Err(err).Msg("recovery-consumer: handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func deliver(body []byte) error {
	if err := os.MkdirAll(filepath.Dir(RecoveryOutbox), 0o755); err != nil {
		return fmt.Errorf("mkdir outbox: %w", err)
	}
	f, err := os.OpenFile(RecoveryOutbox, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open outbox: %w", err)
	}
	defer f.Close()
	return handleMessage(body, f)
}

// handleMessage decodes one recovery event and writes its outbox line to w.
func handleMessage(body []byte, w io.Writer) error {
	var ev RecoveryRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.UserID == 0 || ev.Email == "" {
		return errors.New("event missing user_id or email")
	}
	line := fmt.Sprintf("[%s] Password recovery requested | event_id=%s | user_id=%d | to=%q\n",
		ev.RequestedAt, ev.EventID, ev.UserID, ev.Email)
	if _, err := io.WriteString(w, line); err != nil {
		return fmt.Errorf("write outbox: %w", err)
	}
	return nil
}

// sleep waits for d or until ctx is done.  It reports whether the full
// duration elapsed.
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
