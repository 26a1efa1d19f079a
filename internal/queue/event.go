// Package queue defines message payloads exchanged over the message broker
// and the helpers that publish and consume them.
package queue

// Queue names.  Each queue is durable and bound to the default exchange, so
// the routing key equals the queue name.
const (
	RecoveryRequestedQueue = "password.recovery_requested"
	UserRegisteredQueue    = "user.registered"
)

// RecoveryRequestedEvent is published when a password recovery is requested
// for a registered account.  The plaintext email is included because the
// database only stores its digest; the mailer needs an address to write to.
type RecoveryRequestedEvent struct {
	EventID     string `json:"event_id"`
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	RequestedAt string `json:"requested_at"`
}

// UserRegisteredEvent is published after a new account is stored.
type UserRegisteredEvent struct {
	EventID      string `json:"event_id"`
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	RegisteredAt string `json:"registered_at"`
}
