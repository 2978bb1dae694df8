package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureSender struct {
	mu         sync.Mutex
	deliveries []Delivery
	failEmails map[string]bool
}

func (s *captureSender) Send(_ context.Context, delivery Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failEmails[delivery.Email] {
		return errors.New("smtp unavailable")
	}
	s.deliveries = append(s.deliveries, delivery)
	return nil
}

func (s *captureSender) sent() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Delivery{}, s.deliveries...)
}

func TestNotificationQueueDelivers(t *testing.T) {
	sender := &captureSender{}
	queue := NewNotificationQueue(sender, zap.NewNop(), 8)
	queue.Start()

	queue.Submit(Delivery{Email: "a@example.com", Subject: "Ticket Update: one", Body: "Ticket status: OPEN"})
	queue.Submit(Delivery{Email: "b@example.com", Subject: "Ticket Update: two", Body: "Ticket status: RESOLVED"})
	queue.Stop()

	sent := sender.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "a@example.com", sent[0].Email)
	assert.Equal(t, "b@example.com", sent[1].Email)
}

func TestNotificationQueueFailureDoesNotStopOthers(t *testing.T) {
	sender := &captureSender{failEmails: map[string]bool{"bad@example.com": true}}
	queue := NewNotificationQueue(sender, zap.NewNop(), 8)
	queue.Start()

	queue.Submit(Delivery{Email: "bad@example.com", Subject: "s"})
	queue.Submit(Delivery{Email: "good@example.com", Subject: "s"})
	queue.Stop()

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "good@example.com", sent[0].Email)
}

func TestNotificationQueueDropsWhenFull(t *testing.T) {
	sender := &captureSender{}
	queue := NewNotificationQueue(sender, zap.NewNop(), 1)

	// Drain goroutine not started yet, so the buffer is the only capacity.
	queue.Submit(Delivery{Email: "kept@example.com", Subject: "s"})
	queue.Submit(Delivery{Email: "dropped@example.com", Subject: "s"})

	queue.Start()
	queue.Stop()

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "kept@example.com", sent[0].Email)
}

func TestNotificationQueueStopIsIdempotent(t *testing.T) {
	queue := NewNotificationQueue(&captureSender{}, zap.NewNop(), 4)
	queue.Start()
	queue.Stop()
	queue.Stop()
}
