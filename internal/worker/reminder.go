package worker

import (
	"context"
	"time"

	"github.com/avdeeva/beautybook/internal/service/reminder"
	"github.com/avdeeva/beautybook/pkg/logger"
)

// ReminderWorker runs the reminder sweep on a fixed interval until the
// context is cancelled.
type ReminderWorker struct {
	service  *reminder.Service
	interval time.Duration
	logger   *logger.Logger
}

func NewReminderWorker(service *reminder.Service, interval time.Duration, l *logger.Logger) *ReminderWorker {
	return &ReminderWorker{
		service:  service,
		interval: interval,
		logger:   l,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	w.logger.ZL.Info().Dur("interval", w.interval).Msg("reminder worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.ZL.Info().Msg("reminder worker stopped")
			return
		case <-ticker.C:
			if err := w.service.Sweep(ctx); err != nil {
				w.logger.ZL.Error().Err(err).Msg("reminder sweep failed")
			}
		}
	}
}
