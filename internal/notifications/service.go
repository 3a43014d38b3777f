package notifications

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"releasewatch/internal/config"
	"releasewatch/internal/logging"
	"releasewatch/internal/release"
)

const userAgent = "releasewatch/1.0"

// Service delivers release notifications. A nil error means the transport
// accepted the message.
type Service interface {
	SendDiscovery(ctx context.Context, books []release.Record) error
	SendDateChange(ctx context.Context, books []release.Record) error
	SendReminder(ctx context.Context, books []release.Record) error
	SendReleaseDay(ctx context.Context, books []release.Record) error
	SendFailureAlert(ctx context.Context, details string) error
	TestNotification(ctx context.Context) error
}

// transport moves one rendered message to its destination.
type transport interface {
	name() string
	deliver(ctx context.Context, msg Message) error
}

// NewService builds the Service selected by notifications.transport. The
// configuration is expected to have passed ValidateNotifications.
func NewService(cfg *config.Config, logger *slog.Logger) (Service, error) {
	logger = logging.NewComponentLogger(logger, "notifications")
	n := cfg.Notifications
	client := &http.Client{Timeout: cfg.NotificationTimeout()}

	var t transport
	switch n.Transport {
	case config.TransportNone:
		return noopService{}, nil
	case config.TransportResend:
		t = &resendTransport{
			endpoint: n.ResendEndpoint,
			apiKey:   n.ResendAPIKey,
			from:     n.EmailFrom,
			to:       splitRecipients(n.EmailTo),
			client:   client,
		}
	case config.TransportNtfy:
		t = &ntfyTransport{endpoint: cfg.NtfyURL(), client: client}
	default:
		return nil, fmt.Errorf("unsupported notification transport %q", n.Transport)
	}
	return &service{
		transport: t,
		renderer:  NewRenderer(cfg.Tracking.ReminderDays),
		logger:    logger,
	}, nil
}

type service struct {
	transport transport
	renderer  *Renderer
	logger    *slog.Logger
}

func (s *service) SendDiscovery(ctx context.Context, books []release.Record) error {
	return s.sendBatch(ctx, release.EventDiscovery, books)
}

func (s *service) SendDateChange(ctx context.Context, books []release.Record) error {
	return s.sendBatch(ctx, release.EventDateChange, books)
}

func (s *service) SendReminder(ctx context.Context, books []release.Record) error {
	return s.sendBatch(ctx, release.EventReminder, books)
}

func (s *service) SendReleaseDay(ctx context.Context, books []release.Record) error {
	return s.sendBatch(ctx, release.EventReleaseDay, books)
}

func (s *service) SendFailureAlert(ctx context.Context, details string) error {
	msg, err := s.renderer.FailureAlert(details)
	if err != nil {
		return err
	}
	return s.deliver(ctx, "failure_alert", msg)
}

func (s *service) TestNotification(ctx context.Context) error {
	msg, err := s.renderer.Test()
	if err != nil {
		return err
	}
	return s.deliver(ctx, "test", msg)
}

func (s *service) sendBatch(ctx context.Context, kind release.EventType, books []release.Record) error {
	if len(books) == 0 {
		return nil
	}
	msg, err := s.renderer.Batch(kind, books)
	if err != nil {
		return err
	}
	return s.deliver(ctx, string(kind), msg)
}

func (s *service) deliver(ctx context.Context, label string, msg Message) error {
	if err := s.transport.deliver(ctx, msg); err != nil {
		return fmt.Errorf("%s %s notification: %w", s.transport.name(), label, err)
	}
	s.logger.Debug("notification delivered",
		logging.String("transport", s.transport.name()),
		logging.String("notification_type", label),
		logging.String("subject", msg.Subject),
	)
	return nil
}

func splitRecipients(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// responseError reads a bounded snippet of a non-2xx body into an error.
func responseError(service string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("%s returned %d: %s", service, resp.StatusCode, strings.TrimSpace(string(body)))
}

type noopService struct{}

func (noopService) SendDiscovery(context.Context, []release.Record) error  { return nil }
func (noopService) SendDateChange(context.Context, []release.Record) error { return nil }
func (noopService) SendReminder(context.Context, []release.Record) error   { return nil }
func (noopService) SendReleaseDay(context.Context, []release.Record) error { return nil }
func (noopService) SendFailureAlert(context.Context, string) error         { return nil }
func (noopService) TestNotification(context.Context) error                 { return nil }
