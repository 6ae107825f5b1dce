package slot

import (
	"context"
	"fmt"
	"time"

	"github.com/avdeeva/beautybook/internal/datetext"
	"github.com/avdeeva/beautybook/internal/model"
	"github.com/avdeeva/beautybook/internal/repository"
	"github.com/avdeeva/beautybook/internal/service/notifier"
	apperrors "github.com/avdeeva/beautybook/pkg/errors"
	"github.com/avdeeva/beautybook/pkg/logger"
	"github.com/avdeeva/beautybook/pkg/metrics"
)

// Service manages the calendar: working days, individual slots and blocked
// days. All dates cross the API as "DD.MM.YYYY" and are stored as ISO.
type Service struct {
	repo         repository.SlotRepository
	notifier     notifier.Notifier
	defaultSlots []string
	loc          *time.Location
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(repo repository.SlotRepository, n notifier.Notifier, defaultSlots []string, loc *time.Location, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		repo:         repo,
		notifier:     n,
		defaultSlots: defaultSlots,
		loc:          loc,
		metrics:      m,
		logger:       l,
	}
}

func (s *Service) today() string {
	return time.Now().In(s.loc).Format(datetext.ISODay)
}

func (s *Service) validateDay(text string) (string, error) {
	date, err := datetext.ParseDay(text)
	if err != nil {
		return "", apperrors.BadRequest("date must be DD.MM.YYYY", err)
	}
	if date < s.today() {
		return "", apperrors.BadRequest("date is in the past", nil)
	}
	return date, nil
}

// AddWorkingDay creates the default slot grid on a date. Slots that already
// exist are skipped, so repeating the call is safe and fills only the gaps.
func (s *Service) AddWorkingDay(ctx context.Context, dayText string) ([]model.Slot, error) {
	date, err := s.validateDay(dayText)
	if err != nil {
		return nil, err
	}

	var created []model.Slot
	for _, tm := range s.defaultSlots {
		slot, err := s.repo.Create(ctx, date, tm)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrDuplicateSlot) {
				continue
			}
			return nil, fmt.Errorf("failed to add working day: %w", err)
		}
		created = append(created, *slot)
	}

	s.logger.ZL.Info().Str("date", date).Int("created", len(created)).Msg("working day added")
	return created, nil
}

// AddSlot creates one slot at an explicit date and time.
func (s *Service) AddSlot(ctx context.Context, dayText, clockText string) (*model.Slot, error) {
	date, err := s.validateDay(dayText)
	if err != nil {
		return nil, err
	}
	tm, err := datetext.ParseClock(clockText)
	if err != nil {
		return nil, apperrors.BadRequest("time must be HH:MM", err)
	}
	return s.repo.Create(ctx, date, tm)
}

// DeleteSlot removes a free slot. Booked slots are refused.
func (s *Service) DeleteSlot(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AvailableDates lists dates from today onward that have at least one free
// slot and are not blocked.
func (s *Service) AvailableDates(ctx context.Context) ([]string, error) {
	return s.repo.AvailableDates(ctx, s.today())
}

// FreeSlots lists the open slots on a date. A blocked date has none.
func (s *Service) FreeSlots(ctx context.Context, dayText string) ([]model.Slot, error) {
	date, err := datetext.ParseDay(dayText)
	if err != nil {
		return nil, apperrors.BadRequest("date must be DD.MM.YYYY", err)
	}
	blocked, err := s.repo.IsDayBlocked(ctx, date)
	if err != nil {
		return nil, err
	}
	if blocked {
		return []model.Slot{}, nil
	}
	return s.repo.FreeSlots(ctx, date)
}

// Schedule returns the admin view of one date with bookings attached.
func (s *Service) Schedule(ctx context.Context, dayText string) (*model.DaySchedule, error) {
	date, err := datetext.ParseDay(dayText)
	if err != nil {
		return nil, apperrors.BadRequest("date must be DD.MM.YYYY", err)
	}
	blocked, err := s.repo.IsDayBlocked(ctx, date)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.Schedule(ctx, date)
	if err != nil {
		return nil, err
	}
	return &model.DaySchedule{Date: date, Blocked: blocked, Entries: entries}, nil
}

// BlockDay marks a date unavailable and notifies every client whose booking
// the cascade cancelled. Notification failures do not undo the block.
func (s *Service) BlockDay(ctx context.Context, dayText string) ([]model.CancellationNotice, error) {
	date, err := datetext.ParseDay(dayText)
	if err != nil {
		return nil, apperrors.BadRequest("date must be DD.MM.YYYY", err)
	}

	notices, err := s.repo.BlockDay(ctx, date)
	if err != nil {
		return nil, err
	}

	for _, n := range notices {
		s.metrics.BookingsCancelled.Inc()
		s.notifier.NotifyClient(ctx, n.ClientID, "booking_cancelled",
			fmt.Sprintf("К сожалению, ваша запись %s в %s отменена: день закрыт.", dayText, n.Time))
	}

	s.logger.ZL.Info().Str("date", date).Int("cancelled", len(notices)).Msg("day blocked")
	return notices, nil
}
