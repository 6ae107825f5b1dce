package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/avdeeva/beautybook/internal/datetext"
	"github.com/avdeeva/beautybook/internal/model"
	"github.com/avdeeva/beautybook/internal/repository"
	"github.com/avdeeva/beautybook/internal/service/notifier"
	"github.com/avdeeva/beautybook/internal/service/session"
	apperrors "github.com/avdeeva/beautybook/pkg/errors"
	"github.com/avdeeva/beautybook/pkg/logger"
	"github.com/avdeeva/beautybook/pkg/metrics"
)

// Service drives the booking lifecycle for both paths: instant slot bookings
// and free-text requests the admin confirms by hand.
type Service struct {
	bookings repository.BookingRepository
	users    repository.UserRepository
	sessions *session.Service
	notifier notifier.Notifier
	loc      *time.Location
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(bookings repository.BookingRepository, users repository.UserRepository, sessions *session.Service, n notifier.Notifier, loc *time.Location, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		bookings: bookings,
		users:    users,
		sessions: sessions,
		notifier: n,
		loc:      loc,
		metrics:  m,
		logger:   l,
	}
}

func (s *Service) rememberClient(ctx context.Context, id int64, username, name string) {
	user := &model.User{ID: id, Username: username, DisplayName: name}
	if err := s.users.Upsert(ctx, user); err != nil {
		s.logger.ZL.Error().Err(err).Int64("client_id", id).Msg("failed to record client")
	}
}

// BookSlot books a free slot for the client. The repository transaction
// guarantees a slot is never handed to two clients.
func (s *Service) BookSlot(ctx context.Context, req *model.BookSlotRequest) (*model.Booking, error) {
	s.rememberClient(ctx, req.ClientID, req.ClientUsername, req.ClientName)

	serviceName := req.ServiceName
	if serviceName == "" {
		serviceName = "маникюр"
	}
	booking := &model.Booking{
		ClientID:       req.ClientID,
		ClientUsername: req.ClientUsername,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		ServiceName:    serviceName,
	}
	if err := s.bookings.BookSlot(ctx, booking, req.SlotID); err != nil {
		if apperrors.Is(err, apperrors.ErrSlotOccupied) {
			s.metrics.SlotConflicts.Inc()
		}
		return nil, err
	}

	s.metrics.BookingsCreated.WithLabelValues("slot").Inc()
	s.notifier.NotifyAdmin(ctx, "booking_created",
		fmt.Sprintf("Новая запись: %s, %s, %s", req.ClientName, serviceName,
			booking.ScheduledAt.Format("02.01.2006 15:04")))
	return booking, nil
}

// CreateRequest records a free-text booking request as pending and alerts the
// admin. The raw text is stored verbatim; extraction only produces a hint,
// never a rejection. The hint is returned so the caller can echo what the
// text looks like, and nil when nothing was recognized.
func (s *Service) CreateRequest(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, *time.Time, error) {
	s.rememberClient(ctx, req.ClientID, req.ClientUsername, req.ClientName)

	booking := &model.Booking{
		ClientID:        req.ClientID,
		ClientUsername:  req.ClientUsername,
		ClientName:      req.ClientName,
		ClientPhone:     req.ClientPhone,
		ServiceName:     req.ServiceName,
		RawDatetimeText: req.DatetimeText,
	}
	if err := s.bookings.CreateRequest(ctx, booking); err != nil {
		return nil, nil, err
	}

	var detected *time.Time
	hint := "не распознано"
	if r := datetext.Extract(req.DatetimeText, time.Now().In(s.loc)); r.OK {
		detected = &r.At
		hint = r.At.Format("02.01.2006 15:04")
	}
	s.metrics.BookingsCreated.WithLabelValues("request").Inc()
	s.notifier.NotifyAdmin(ctx, "booking_request",
		fmt.Sprintf("Заявка #%d: %s, %s, «%s» (похоже на %s)",
			booking.ID, req.ClientName, req.ServiceName, req.DatetimeText, hint))
	return booking, detected, nil
}

// Approve confirms a pending request. The visit time is taken from the raw
// text; when extraction fails the admin is asked to supply it and the call
// returns NeedsManualDate with the booking left pending.
func (s *Service) Approve(ctx context.Context, adminID, bookingID int64) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingStatusPending {
		return nil, apperrors.BadRequest("booking is not pending", nil)
	}

	result := datetext.Extract(booking.RawDatetimeText, time.Now().In(s.loc))
	if !result.OK {
		s.sessions.AwaitDatetime(adminID, bookingID)
		return nil, apperrors.NeedsManualDate(bookingID)
	}
	return s.confirm(ctx, adminID, booking, result.At)
}

// AwaitedBooking returns the booking the admin currently owes a visit time
// for, or NotFound when no approve is pending.
func (s *Service) AwaitedBooking(ctx context.Context, adminID int64) (*model.Booking, error) {
	id, ok := s.sessions.PendingBooking(adminID)
	if !ok {
		return nil, apperrors.NotFound("awaited booking", nil)
	}
	return s.bookings.Get(ctx, id)
}

// ScheduleAwaited completes the pending approve without an explicit booking
// id: the admin just answers with the time and the session remembers which
// booking it belongs to.
func (s *Service) ScheduleAwaited(ctx context.Context, adminID int64, text string) (*model.Booking, error) {
	id, ok := s.sessions.PendingBooking(adminID)
	if !ok {
		return nil, apperrors.NotFound("awaited booking", nil)
	}
	return s.Schedule(ctx, adminID, id, text)
}

// Schedule supplies the visit time by hand, completing an Approve that could
// not resolve the raw text. The text goes through the same extractor, so the
// admin can answer in any of the accepted forms.
func (s *Service) Schedule(ctx context.Context, adminID, bookingID int64, text string) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil, apperrors.BadRequest("booking is cancelled", nil)
	}

	result := datetext.Extract(text, time.Now().In(s.loc))
	if !result.OK {
		return nil, apperrors.BadRequest("could not understand the date and time", nil)
	}
	return s.confirm(ctx, adminID, booking, result.At)
}

func (s *Service) confirm(ctx context.Context, adminID int64, booking *model.Booking, at time.Time) (*model.Booking, error) {
	if err := s.bookings.Confirm(ctx, booking.ID, at); err != nil {
		return nil, err
	}
	s.sessions.Clear(adminID)

	booking.Status = model.BookingStatusConfirmed
	booking.ScheduledAt = &at
	s.notifier.NotifyClient(ctx, booking.ClientID, "booking_confirmed",
		fmt.Sprintf("Ваша запись подтверждена: %s, %s", booking.ServiceName, at.Format("02.01.2006 15:04")))
	s.logger.ZL.Info().Int64("booking_id", booking.ID).Time("at", at).Msg("booking confirmed")
	return booking, nil
}

// Reject cancels a pending request or an already confirmed booking on the
// admin's behalf, with an optional reason. The client is told a confirmed
// visit was cancelled, or that a request was declined.
func (s *Service) Reject(ctx context.Context, adminID, bookingID int64, reason string) (*model.Booking, error) {
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	prior, err := s.bookings.Cancel(ctx, bookingID, nil, reasonPtr)
	if err != nil {
		return nil, err
	}
	s.sessions.Clear(adminID)

	if prior.Active() {
		s.metrics.BookingsCancelled.Inc()
		kind := "booking_rejected"
		text := "К сожалению, вашу заявку не удалось принять."
		if prior.Status == model.BookingStatusConfirmed {
			kind = "booking_cancelled"
			text = "К сожалению, ваша запись отменена."
		}
		if reason != "" {
			text = fmt.Sprintf("%s Причина: %s", text, reason)
		}
		s.notifier.NotifyClient(ctx, prior.ClientID, kind, text)
	}
	return prior, nil
}

// Cancel lets a client cancel their own booking. A mismatched owner comes
// back from the repository as NotFound.
func (s *Service) Cancel(ctx context.Context, bookingID, clientID int64) (*model.Booking, error) {
	reason := "client request"
	prior, err := s.bookings.Cancel(ctx, bookingID, &clientID, &reason)
	if err != nil {
		return nil, err
	}

	if prior.Active() {
		s.metrics.BookingsCancelled.Inc()
		when := prior.RawDatetimeText
		if prior.ScheduledAt != nil {
			when = prior.ScheduledAt.Format("02.01.2006 15:04")
		}
		s.notifier.NotifyAdmin(ctx, "booking_cancelled",
			fmt.Sprintf("Клиент %s отменил запись на %s", prior.ClientName, when))
	}
	return prior, nil
}

// ActiveBooking returns the client's current pending or confirmed booking.
func (s *Service) ActiveBooking(ctx context.Context, clientID int64) (*model.Booking, error) {
	return s.bookings.ActiveForClient(ctx, clientID)
}

func (s *Service) ListPending(ctx context.Context) ([]*model.Booking, error) {
	return s.bookings.ListPending(ctx)
}

func (s *Service) ListConfirmed(ctx context.Context) ([]*model.Booking, error) {
	return s.bookings.ListConfirmed(ctx)
}

// Clients lists everyone who ever made contact, for the admin panel.
func (s *Service) Clients(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx)
}
