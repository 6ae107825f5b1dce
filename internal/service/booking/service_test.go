package booking

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/avdeeva/beautybook/pkg/errors"
	"github.com/avdeeva/beautybook/pkg/logger"
	"github.com/avdeeva/beautybook/pkg/metrics"

	"github.com/avdeeva/beautybook/internal/model"
	"github.com/avdeeva/beautybook/internal/service/session"
)

type memBookingRepo struct {
	nextID   int64
	bookings map[int64]*model.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{nextID: 1, bookings: map[int64]*model.Booking{}}
}

func (m *memBookingRepo) store(b *model.Booking) {
	b.ID = m.nextID
	m.nextID++
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.bookings[b.ID] = b
}

func (m *memBookingRepo) BookSlot(ctx context.Context, b *model.Booking, slotID int64) error {
	at := time.Now().Add(48 * time.Hour)
	b.Status = model.BookingStatusConfirmed
	b.ScheduledAt = &at
	b.SlotID = &slotID
	m.store(b)
	return nil
}

func (m *memBookingRepo) CreateRequest(ctx context.Context, b *model.Booking) error {
	b.Status = model.BookingStatusPending
	m.store(b)
	return nil
}

func (m *memBookingRepo) Get(ctx context.Context, id int64) (*model.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking", nil)
	}
	copied := *b
	return &copied, nil
}

func (m *memBookingRepo) Confirm(ctx context.Context, id int64, at time.Time) error {
	b, ok := m.bookings[id]
	if !ok || b.Status == model.BookingStatusCancelled {
		return apperrors.NotFound("booking", nil)
	}
	b.Status = model.BookingStatusConfirmed
	b.ScheduledAt = &at
	return nil
}

func (m *memBookingRepo) Cancel(ctx context.Context, id int64, ownerID *int64, reason *string) (*model.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking", nil)
	}
	if ownerID != nil && b.ClientID != *ownerID {
		return nil, apperrors.NotFound("booking", nil)
	}
	prior := *b
	if b.Status != model.BookingStatusCancelled {
		b.Status = model.BookingStatusCancelled
		b.CancelReason = reason
	}
	return &prior, nil
}

func (m *memBookingRepo) ActiveForClient(ctx context.Context, clientID int64) (*model.Booking, error) {
	for _, b := range m.bookings {
		if b.ClientID == clientID && b.Active() {
			copied := *b
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("booking", nil)
}

func (m *memBookingRepo) ListPending(ctx context.Context) ([]*model.Booking, error) { return nil, nil }
func (m *memBookingRepo) ListConfirmed(ctx context.Context) ([]*model.Booking, error) {
	return nil, nil
}
func (m *memBookingRepo) DueForReminders(ctx context.Context) ([]*model.Booking, error) {
	return nil, nil
}
func (m *memBookingRepo) MarkReminded(ctx context.Context, id int64, lead model.LeadTime) error {
	return nil
}

type memUserRepo struct {
	users map[int64]*model.User
}

func (m *memUserRepo) Upsert(ctx context.Context, u *model.User) error {
	if m.users == nil {
		m.users = map[int64]*model.User{}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) List(ctx context.Context) ([]*model.User, error) { return nil, nil }

type sentNote struct {
	recipient string
	clientID  int64
	kind      string
	text      string
}

type fakeNotifier struct {
	sent []sentNote
}

func (f *fakeNotifier) NotifyClient(ctx context.Context, clientID int64, kind, text string) {
	f.sent = append(f.sent, sentNote{recipient: "client", clientID: clientID, kind: kind, text: text})
}

func (f *fakeNotifier) NotifyAdmin(ctx context.Context, kind, text string) {
	f.sent = append(f.sent, sentNote{recipient: "admin", kind: kind, text: text})
}

type fixture struct {
	svc      *Service
	repo     *memBookingRepo
	users    *memUserRepo
	sessions *session.Service
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemBookingRepo()
	users := &memUserRepo{}
	sessions := session.NewService()
	n := &fakeNotifier{}
	l := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	m := metrics.NewWith("test", prometheus.NewRegistry())
	return &fixture{
		svc:      NewService(repo, users, sessions, n, time.UTC, m, l),
		repo:     repo,
		users:    users,
		sessions: sessions,
		notifier: n,
	}
}

func TestBookSlot_RecordsClientAndAlertsAdmin(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.BookSlot(context.Background(), &model.BookSlotRequest{
		SlotID:      5,
		ClientID:    100,
		ClientName:  "Anna",
		ClientPhone: "+79990001122",
	})
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, "маникюр", booking.ServiceName)
	assert.Equal(t, "+79990001122", booking.ClientPhone)
	assert.Contains(t, f.users.users, int64(100))
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "admin", f.notifier.sent[0].recipient)
	assert.Equal(t, "booking_created", f.notifier.sent[0].kind)
}

func TestCreateRequest_AlertsAdminWithHint(t *testing.T) {
	f := newFixture(t)

	booking, detected, err := f.svc.CreateRequest(context.Background(), &model.CreateBookingRequest{
		ClientID:     100,
		ClientName:   "Anna",
		ServiceName:  "маникюр",
		DatetimeText: "давайте 15.01.2030 14:00",
	})
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Nil(t, booking.ScheduledAt)
	require.NotNil(t, detected)
	assert.Equal(t, time.Date(2030, 1, 15, 14, 0, 0, 0, time.UTC), *detected)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "booking_request", f.notifier.sent[0].kind)
	assert.Contains(t, f.notifier.sent[0].text, "15.01.2030 14:00")
}

func TestCreateRequest_UnresolvableTextStillAccepted(t *testing.T) {
	f := newFixture(t)

	booking, detected, err := f.svc.CreateRequest(context.Background(), &model.CreateBookingRequest{
		ClientID:     100,
		ClientName:   "Anna",
		ServiceName:  "маникюр",
		DatetimeText: "как обычно, ближе к вечеру",
	})
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Nil(t, detected)
	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].text, "не распознано")
}

func TestApprove_ResolvableText(t *testing.T) {
	f := newFixture(t)

	created, _, err := f.svc.CreateRequest(context.Background(), &model.CreateBookingRequest{
		ClientID:     100,
		ClientName:   "Anna",
		ServiceName:  "маникюр",
		DatetimeText: "15.01.2030 14:00",
	})
	require.NoError(t, err)

	booking, err := f.svc.Approve(context.Background(), 1, created.ID)
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
	require.NotNil(t, booking.ScheduledAt)
	assert.Equal(t, time.Date(2030, 1, 15, 14, 0, 0, 0, time.UTC), *booking.ScheduledAt)

	// Client got the confirmation.
	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, "client", last.recipient)
	assert.Equal(t, int64(100), last.clientID)
	assert.Equal(t, "booking_confirmed", last.kind)
}

func TestApprove_UnresolvableTextNeedsManualDate(t *testing.T) {
	f := newFixture(t)

	created, _, err := f.svc.CreateRequest(context.Background(), &model.CreateBookingRequest{
		ClientID:     100,
		ClientName:   "Anna",
		ServiceName:  "маникюр",
		DatetimeText: "как обычно",
	})
	require.NoError(t, err)

	adminID := int64(1)
	_, err = f.svc.Approve(context.Background(), adminID, created.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNeedsManualDate))

	// Booking stays pending and the admin dialog remembers which one.
	stored, err := f.repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, stored.Status)

	pending, ok := f.sessions.PendingBooking(adminID)
	assert.True(t, ok)
	assert.Equal(t, created.ID, pending)
}

func TestSchedule_CompletesManualApprove(t *testing.T) {
	f := newFixture(t)

	created, _, err := f.svc.CreateRequest(context.Background(), &model.CreateBookingRequest{
		ClientID:     100,
		ClientName:   "Anna",
		ServiceName:  "маникюр",
		DatetimeText: "как обычно",
	})
	require.NoError(t, err)

	adminID := int64(1)
	_, err = f.svc.Approve(context.Background(), adminID, created.ID)
	require.True(t, apperrors.Is(err, apperrors.ErrNeedsManualDate))

	booking, err := f.svc.Schedule(context.Background(), adminID, created.ID, "20.03.2030 11:00")
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, time.Date(2030, 3, 20, 11, 0, 0, 0, time.UTC), *booking.ScheduledAt)

	_, ok := f.sessions.PendingBooking(adminID)
	assert.False(t, ok)
}

func TestAwaitedBooking_ReturnsTheBookingApproveLeftPending(t *testing.T) {
	f := newFixture(t)

	created, _, err := f.svc.CreateRequest(context.Background(), &model.CreateBookingRequest{
		ClientID:     100,
		ClientName:   "Anna",
		ServiceName:  "маникюр",
		DatetimeText: "как обычно",
	})
	require.NoError(t, err)

	adminID := int64(1)
	_, err = f.svc.Approve(context.Background(), adminID, created.ID)
	require.True(t, apperrors.Is(err, apperrors.ErrNeedsManualDate))

	awaited, err := f.svc.AwaitedBooking(context.Background(), adminID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, awaited.ID)
	assert.Equal(t, model.BookingStatusPending, awaited.Status)
}

func TestAwaitedBooking_NothingPending(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AwaitedBooking(context.Background(), 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestScheduleAwaited_ConfirmsWithoutBookingID(t *testing.T) {
	f := newFixture(t)

	created, _, err := f.svc.CreateRequest(context.Background(), &model.CreateBookingRequest{
		ClientID:     100,
		ClientName:   "Anna",
		ServiceName:  "маникюр",
		DatetimeText: "как обычно",
	})
	require.NoError(t, err)

	adminID := int64(1)
	_, err = f.svc.Approve(context.Background(), adminID, created.ID)
	require.True(t, apperrors.Is(err, apperrors.ErrNeedsManualDate))

	booking, err := f.svc.ScheduleAwaited(context.Background(), adminID, "20.03.2030 11:00")
	require.NoError(t, err)
	assert.Equal(t, created.ID, booking.ID)
	assert.Equal(t, model.BookingStatusConfirmed, booking.Status)

	// The dialog is done; the next time message has nothing to attach to.
	_, err = f.svc.ScheduleAwaited(context.Background(), adminID, "21.03.2030 11:00")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestSchedule_BadText(t *testing.T) {
	f := newFixture(t)

	created, _, err := f.svc.CreateRequest(context.Background(), &model.CreateBookingRequest{
		ClientID:     100,
		ClientName:   "Anna",
		ServiceName:  "маникюр",
		DatetimeText: "как обычно",
	})
	require.NoError(t, err)

	_, err = f.svc.Schedule(context.Background(), 1, created.ID, "не знаю")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestApprove_NonPending(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.BookSlot(context.Background(), &model.BookSlotRequest{
		SlotID:     5,
		ClientID:   100,
		ClientName: "Anna",
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), 1, booking.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestReject_NotifiesClient(t *testing.T) {
	f := newFixture(t)

	created, _, err := f.svc.CreateRequest(context.Background(), &model.CreateBookingRequest{
		ClientID:     100,
		ClientName:   "Anna",
		ServiceName:  "маникюр",
		DatetimeText: "15.01.2030 14:00",
	})
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), 1, created.ID, "мастер в отпуске")
	require.NoError(t, err)

	stored, err := f.repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, stored.Status)

	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, "booking_rejected", last.kind)
	assert.Contains(t, last.text, "мастер в отпуске")
}

func TestReject_ConfirmedBookingNotifiesAsCancellation(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.BookSlot(context.Background(), &model.BookSlotRequest{
		SlotID:     5,
		ClientID:   100,
		ClientName: "Anna",
	})
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), 1, booking.ID, "")
	require.NoError(t, err)

	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, "client", last.recipient)
	assert.Equal(t, "booking_cancelled", last.kind)
}

func TestCancel_OwnBooking(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.BookSlot(context.Background(), &model.BookSlotRequest{
		SlotID:     5,
		ClientID:   100,
		ClientName: "Anna",
	})
	require.NoError(t, err)

	prior, err := f.svc.Cancel(context.Background(), booking.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, prior.Status)

	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, "admin", last.recipient)
	assert.Equal(t, "booking_cancelled", last.kind)
}

func TestCancel_ForeignBookingMasked(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.BookSlot(context.Background(), &model.BookSlotRequest{
		SlotID:     5,
		ClientID:   100,
		ClientName: "Anna",
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), booking.ID, 777)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	// Untouched.
	stored, err := f.repo.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, stored.Status)
}
