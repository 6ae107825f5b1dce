package notifier

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/avdeeva/beautybook/internal/config"
	"github.com/avdeeva/beautybook/pkg/logger"
	"github.com/avdeeva/beautybook/pkg/messaging"
	"github.com/avdeeva/beautybook/pkg/metrics"
)

// Notifier delivers outbound messages. Delivery is fire and forget: failures
// are logged and counted, never retried, and never propagated to the caller.
type Notifier interface {
	NotifyClient(ctx context.Context, clientID int64, kind, text string)
	NotifyAdmin(ctx context.Context, kind, text string)
}

// Envelope is the wire shape published on the notification channel. A gateway
// process subscribed to the channel maps client ids to the chat platform.
type Envelope struct {
	Recipient string `json:"recipient"`
	ClientID  int64  `json:"client_id,omitempty"`
	Kind      string `json:"kind"`
	Text      string `json:"text"`
}

type Service struct {
	broker  messaging.Broker
	cfg     config.NotifierConfig
	adminID int64
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(broker messaging.Broker, cfg config.NotifierConfig, adminID int64, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		broker:  broker,
		cfg:     cfg,
		adminID: adminID,
		metrics: m,
		logger:  l,
	}
}

func (s *Service) NotifyClient(ctx context.Context, clientID int64, kind, text string) {
	s.publish(ctx, Envelope{
		Recipient: "client",
		ClientID:  clientID,
		Kind:      kind,
		Text:      text,
	})
}

// NotifyAdmin publishes on the channel addressed to the configured admin id
// and, when an admin email is configured, sends a copy by SMTP.
func (s *Service) NotifyAdmin(ctx context.Context, kind, text string) {
	s.publish(ctx, Envelope{
		Recipient: "admin",
		ClientID:  s.adminID,
		Kind:      kind,
		Text:      text,
	})

	if s.cfg.Email == "" {
		return
	}
	if err := s.sendEmail(kind, text); err != nil {
		s.logger.ZL.Error().Err(err).Str("kind", kind).Msg("admin email delivery failed")
		s.metrics.NotificationsSent.WithLabelValues("email", "error").Inc()
		return
	}
	s.metrics.NotificationsSent.WithLabelValues("email", "ok").Inc()
}

func (s *Service) publish(ctx context.Context, env Envelope) {
	msg := &messaging.Message{Type: env.Kind, Payload: env}
	if err := s.broker.Publish(ctx, s.cfg.Channel, msg); err != nil {
		s.logger.ZL.Error().Err(err).
			Str("kind", env.Kind).
			Int64("client_id", env.ClientID).
			Msg("notification publish failed")
		s.metrics.NotificationsSent.WithLabelValues("broker", "error").Inc()
		return
	}
	s.metrics.NotificationsSent.WithLabelValues("broker", "ok").Inc()
}

func (s *Service) sendEmail(subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.EmailFrom)
	m.SetHeader("To", s.cfg.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	return d.DialAndSend(m)
}
