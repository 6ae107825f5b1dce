package repository

import (
	"context"
	"time"

	"github.com/avdeeva/beautybook/internal/model"
)

// All repository interfaces in one file
type (
	// SlotRepository manages the calendar of bookable time units.
	SlotRepository interface {
		Create(ctx context.Context, date, tm string) (*model.Slot, error)
		Get(ctx context.Context, id int64) (*model.Slot, error)
		Delete(ctx context.Context, id int64) error
		AvailableDates(ctx context.Context, fromDate string) ([]string, error)
		FreeSlots(ctx context.Context, date string) ([]model.Slot, error)
		Schedule(ctx context.Context, date string) ([]model.ScheduleEntry, error)
		IsDayBlocked(ctx context.Context, date string) (bool, error)
		BlockDay(ctx context.Context, date string) ([]model.CancellationNotice, error)
	}

	// BookingRepository persists the appointment lifecycle.
	BookingRepository interface {
		BookSlot(ctx context.Context, booking *model.Booking, slotID int64) error
		CreateRequest(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id int64) (*model.Booking, error)
		Confirm(ctx context.Context, id int64, at time.Time) error
		Cancel(ctx context.Context, id int64, ownerID *int64, reason *string) (*model.Booking, error)
		ActiveForClient(ctx context.Context, clientID int64) (*model.Booking, error)
		ListPending(ctx context.Context) ([]*model.Booking, error)
		ListConfirmed(ctx context.Context) ([]*model.Booking, error)
		DueForReminders(ctx context.Context) ([]*model.Booking, error)
		MarkReminded(ctx context.Context, id int64, lead model.LeadTime) error
	}

	UserRepository interface {
		Upsert(ctx context.Context, user *model.User) error
		List(ctx context.Context) ([]*model.User, error)
	}

	SettingsRepository interface {
		Get(ctx context.Context, key string) (string, bool, error)
		Set(ctx context.Context, key, value string) error
		ReminderConfig(ctx context.Context) (model.ReminderConfig, error)
		SetReminderConfig(ctx context.Context, cfg model.ReminderConfig) error
	}
)
