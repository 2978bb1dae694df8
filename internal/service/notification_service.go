package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

// NotificationService turns ticket-updated events into per-recipient
// deliveries on the notification queue. Everything past the queue boundary is
// best-effort and never reaches the request that triggered it.
type NotificationService struct {
	queue  *worker.NotificationQueue
	logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(queue *worker.NotificationQueue, logger *zap.Logger) *NotificationService {
	return &NotificationService{queue: queue, logger: logger}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
}

func (n *NotificationService) handleTicketUpdated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for ticket_updated event", zap.String("event_id", event.ID))
		return nil
	}

	subject := "Ticket Update: " + payload.Title
	body := fmt.Sprintf("Ticket status: %s", payload.Status)
	if payload.Comment != "" {
		body += "\nNew comment: " + payload.Comment
	}

	for _, recipient := range payload.Recipients {
		if recipient.Email == "" {
			continue
		}
		n.queue.Submit(worker.Delivery{
			Email:   recipient.Email,
			Subject: subject,
			Body:    body,
		})
	}
	return nil
}

// NotificationSender delivers a single notification. Email delivery is a
// structured-log stub; when a webhook URL is configured the delivery is also
// POSTed there as JSON.
type NotificationSender struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
	client *http.Client
}

// NewNotificationSender creates the sender.
func NewNotificationSender(cfg config.NotificationConfig, logger *zap.Logger) *NotificationSender {
	return &NotificationSender{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send performs one delivery attempt.
func (s *NotificationSender) Send(ctx context.Context, delivery worker.Delivery) error {
	if strings.TrimSpace(s.cfg.EmailFrom) != "" {
		s.logger.Info("notification email",
			zap.String("from", s.cfg.EmailFrom),
			zap.String("to", delivery.Email),
			zap.String("subject", delivery.Subject),
			zap.String("body", delivery.Body))
	}

	if strings.TrimSpace(s.cfg.WebhookURL) == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"email":   delivery.Email,
		"subject": delivery.Subject,
		"body":    delivery.Body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
