package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

type recordingSender struct {
	mu         sync.Mutex
	deliveries []worker.Delivery
}

func (s *recordingSender) Send(_ context.Context, delivery worker.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, delivery)
	return nil
}

func (s *recordingSender) sent() []worker.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]worker.Delivery{}, s.deliveries...)
}

func ticketUpdatedEvent(payload events.TicketUpdatedPayload) events.Event {
	return events.Event{
		ID:        "evt-1",
		Type:      events.EventTicketUpdated,
		TicketID:  "tck-1",
		ActorID:   "usr-1",
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

func TestNotificationServiceFansOutPerRecipient(t *testing.T) {
	sender := &recordingSender{}
	queue := worker.NewNotificationQueue(sender, zap.NewNop(), 8)
	svc := NewNotificationService(queue, zap.NewNop())

	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterHandlers(dispatcher)

	err := dispatcher.Publish(context.Background(), ticketUpdatedEvent(events.TicketUpdatedPayload{
		Title:   "Printer down",
		Status:  domain.TicketStatusInProgress,
		Comment: "on it",
		Recipients: []events.Recipient{
			{UserID: "usr-1", Email: "one@example.com"},
			{UserID: "usr-2", Email: "two@example.com"},
			{UserID: "usr-3", Email: ""},
		},
	}))
	require.NoError(t, err)

	queue.Start()
	queue.Stop()

	sent := sender.sent()
	require.Len(t, sent, 2)
	for _, delivery := range sent {
		assert.Equal(t, "Ticket Update: Printer down", delivery.Subject)
		assert.Equal(t, "Ticket status: IN_PROGRESS\nNew comment: on it", delivery.Body)
	}
	assert.Equal(t, "one@example.com", sent[0].Email)
	assert.Equal(t, "two@example.com", sent[1].Email)
}

func TestNotificationServiceBodyWithoutComment(t *testing.T) {
	sender := &recordingSender{}
	queue := worker.NewNotificationQueue(sender, zap.NewNop(), 8)
	svc := NewNotificationService(queue, zap.NewNop())

	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterHandlers(dispatcher)

	err := dispatcher.Publish(context.Background(), ticketUpdatedEvent(events.TicketUpdatedPayload{
		Title:      "Quiet update",
		Status:     domain.TicketStatusResolved,
		Recipients: []events.Recipient{{UserID: "usr-1", Email: "one@example.com"}},
	}))
	require.NoError(t, err)

	queue.Start()
	queue.Stop()

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Ticket status: RESOLVED", sent[0].Body)
}

func TestNotificationSenderWebhookDelivery(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender := NewNotificationSender(config.NotificationConfig{WebhookURL: server.URL}, zap.NewNop())
	err := sender.Send(context.Background(), worker.Delivery{
		Email:   "one@example.com",
		Subject: "Ticket Update: x",
		Body:    "Ticket status: OPEN",
	})
	require.NoError(t, err)
	assert.Equal(t, "one@example.com", got["email"])
	assert.Equal(t, "Ticket Update: x", got["subject"])
	assert.Equal(t, "Ticket status: OPEN", got["body"])
}

func TestNotificationSenderWebhookErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewNotificationSender(config.NotificationConfig{WebhookURL: server.URL}, zap.NewNop())
	err := sender.Send(context.Background(), worker.Delivery{Email: "one@example.com"})
	require.Error(t, err)
}

func TestNotificationSenderNoWebhookConfigured(t *testing.T) {
	sender := NewNotificationSender(config.NotificationConfig{EmailFrom: "helpdesk@example.com"}, zap.NewNop())
	err := sender.Send(context.Background(), worker.Delivery{Email: "one@example.com"})
	require.NoError(t, err)
}
