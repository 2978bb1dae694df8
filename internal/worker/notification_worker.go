package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Delivery is a single notification to one recipient.
type Delivery struct {
	Email   string
	Subject string
	Body    string
}

// Sender performs one delivery attempt.
type Sender interface {
	Send(ctx context.Context, delivery Delivery) error
}

// NotificationQueue decouples ticket mutations from notification delivery.
// Submit returns immediately; a background goroutine drains the queue and
// attempts each delivery exactly once. Failures are logged, never retried,
// never surfaced to the submitting request.
type NotificationQueue struct {
	jobs   chan Delivery
	sender Sender
	logger *zap.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// NewNotificationQueue builds a queue with the given buffer size.
func NewNotificationQueue(sender Sender, logger *zap.Logger, size int) *NotificationQueue {
	if size <= 0 {
		size = 256
	}
	return &NotificationQueue{
		jobs:   make(chan Delivery, size),
		sender: sender,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the drain goroutine.
func (q *NotificationQueue) Start() {
	q.startOnce.Do(func() {
		go q.drain()
	})
}

// Submit enqueues a delivery without blocking. When the queue is full the
// delivery is dropped and logged; best-effort only.
func (q *NotificationQueue) Submit(delivery Delivery) {
	select {
	case q.jobs <- delivery:
	default:
		q.logger.Warn("notification queue full, dropping delivery",
			zap.String("email", delivery.Email),
			zap.String("subject", delivery.Subject))
	}
}

// Stop closes the queue and waits for in-flight deliveries to finish.
func (q *NotificationQueue) Stop() {
	q.stopOnce.Do(func() {
		close(q.jobs)
		<-q.done
	})
}

func (q *NotificationQueue) drain() {
	defer close(q.done)
	for delivery := range q.jobs {
		if err := q.sender.Send(context.Background(), delivery); err != nil {
			q.logger.Error("notification delivery failed",
				zap.String("email", delivery.Email),
				zap.String("subject", delivery.Subject),
				zap.Error(err))
		}
	}
}
