package queue

import (
	"context"
	"fmt"
)

// Publisher publishes outbound messages to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg OutboundMessage) error
	Close() error
}

// MessageHandler handles a consumed queue message.
type MessageHandler func(ctx context.Context, msg OutboundMessage) error

// Consumer consumes outbound messages from a queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

// MessageKind distinguishes the two outbound message flavors.
type MessageKind string

const (
	KindInvite   MessageKind = "invite"
	KindReminder MessageKind = "reminder"
)

func (k MessageKind) String() string { return string(k) }

func (k MessageKind) IsValid() bool {
	switch k {
	case KindInvite, KindReminder:
		return true
	}
	return false
}

const (
	// InviteQueue carries interview-invite messages published right after a
	// successful scheduling action.
	InviteQueue = "invites"
	// ReminderQueue carries pre-interview reminder messages published by the
	// reminder scanner.
	ReminderQueue = "reminders"

	// queueMaxPriority is the RabbitMQ x-max-priority value for work queues.
	queueMaxPriority int32 = 2
)

var workQueues = []string{InviteQueue, ReminderQueue}

// QueueName returns the work queue for a message kind.
func QueueName(kind MessageKind) string {
	if kind == KindReminder {
		return ReminderQueue
	}
	return InviteQueue
}

// DLQName returns the dead-letter queue for a work queue, e.g. dlq.invites.
func DLQName(queue string) string {
	return fmt.Sprintf("dlq.%s", queue)
}

// WorkQueueNames returns all work queues (2 total).
func WorkQueueNames() []string {
	queues := make([]string, len(workQueues))
	copy(queues, workQueues)
	return queues
}

// DLQNames returns all dead-letter queues (2 total).
func DLQNames() []string {
	queues := make([]string, 0, len(workQueues))
	for _, q := range workQueues {
		queues = append(queues, DLQName(q))
	}
	return queues
}

// PriorityValue maps a message kind to RabbitMQ message priority. Invites
// beat reminders when both compete for the same worker.
func PriorityValue(kind MessageKind) uint8 {
	switch kind {
	case KindInvite:
		return 2
	case KindReminder:
		return 1
	default:
		return 0
	}
}
