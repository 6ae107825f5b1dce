package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/avdeeva/beautybook/internal/model"
	"github.com/avdeeva/beautybook/internal/repository"
	"github.com/avdeeva/beautybook/internal/service/notifier"
	"github.com/avdeeva/beautybook/pkg/logger"
	"github.com/avdeeva/beautybook/pkg/metrics"
)

// Service sends visit reminders at fixed lead times. It works as a periodic
// sweep rather than per-booking timers, so restarts lose nothing: the sent
// flags in the database are the only state.
type Service struct {
	bookings repository.BookingRepository
	settings repository.SettingsRepository
	notifier notifier.Notifier
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(bookings repository.BookingRepository, settings repository.SettingsRepository, n notifier.Notifier, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		bookings: bookings,
		settings: settings,
		notifier: n,
		metrics:  m,
		logger:   l,
	}
}

// Sweep runs one reminder pass. The toggle config is re-read every pass so an
// admin change takes effect on the next sweep without a restart. A failure on
// one booking never blocks the rest.
func (s *Service) Sweep(ctx context.Context) error {
	start := time.Now()
	defer func() {
		s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	cfg, err := s.settings.ReminderConfig(ctx)
	if err != nil {
		s.metrics.SweepErrors.Inc()
		return fmt.Errorf("failed to load reminder config: %w", err)
	}

	due, err := s.bookings.DueForReminders(ctx)
	if err != nil {
		s.metrics.SweepErrors.Inc()
		return fmt.Errorf("failed to load due bookings: %w", err)
	}
	s.metrics.SweepBookings.Set(float64(len(due)))

	now := time.Now()
	for _, booking := range due {
		if err := s.process(ctx, booking, cfg, now); err != nil {
			s.metrics.SweepErrors.Inc()
			s.logger.ZL.Error().Err(err).Int64("booking_id", booking.ID).Msg("reminder failed")
		}
	}
	return nil
}

// process sends at most one reminder per booking per sweep. The lead windows
// are disjoint, so at most one can match; checking outermost first means a
// booking created inside a window still gets the nearest reminder.
func (s *Service) process(ctx context.Context, booking *model.Booking, cfg model.ReminderConfig, now time.Time) error {
	hoursLeft := booking.ScheduledAt.Sub(now).Hours()

	for _, lead := range model.LeadTimes {
		if booking.ReminderSent(lead) {
			continue
		}
		delta := hoursLeft - lead.Hours()
		if delta < -lead.Window() || delta > lead.Window() {
			continue
		}
		if !cfg.Enabled(lead) {
			return nil
		}
		return s.send(ctx, booking, lead)
	}
	return nil
}

// send delivers the reminder and sets the flag. The flag is set even when
// delivery fails: a reminder is sent once or not at all, never repeated.
func (s *Service) send(ctx context.Context, booking *model.Booking, lead model.LeadTime) error {
	s.notifier.NotifyClient(ctx, booking.ClientID, "reminder",
		fmt.Sprintf("Напоминание: %s, %s", booking.ServiceName,
			booking.ScheduledAt.Format("02.01.2006 15:04")))

	if err := s.bookings.MarkReminded(ctx, booking.ID, lead); err != nil {
		s.metrics.RemindersFailed.WithLabelValues(string(lead)).Inc()
		return fmt.Errorf("failed to mark %s reminder: %w", lead, err)
	}
	s.metrics.RemindersSent.WithLabelValues(string(lead)).Inc()
	s.logger.ZL.Info().
		Int64("booking_id", booking.ID).
		Str("lead", string(lead)).
		Msg("reminder sent")
	return nil
}

// Config exposes the current toggle state for the admin panel.
func (s *Service) Config(ctx context.Context) (model.ReminderConfig, error) {
	return s.settings.ReminderConfig(ctx)
}

// UpdateConfig persists new toggle state. It applies from the next sweep.
func (s *Service) UpdateConfig(ctx context.Context, cfg model.ReminderConfig) error {
	return s.settings.SetReminderConfig(ctx, cfg)
}
