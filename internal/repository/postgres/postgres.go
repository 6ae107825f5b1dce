package postgres

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avdeeva/beautybook/internal/repository"
)

type slotRepository struct {
	BaseRepository
}

type bookingRepository struct {
	BaseRepository
	loc *time.Location
}

type userRepository struct {
	BaseRepository
}

type settingsRepository struct {
	BaseRepository
}

func NewSlotRepository(db *sqlx.DB) repository.SlotRepository {
	return &slotRepository{BaseRepository: NewBaseRepository(db)}
}

// NewBookingRepository binds the store to the fixed operating timezone in
// which slot dates and times are interpreted.
func NewBookingRepository(db *sqlx.DB, loc *time.Location) repository.BookingRepository {
	return &bookingRepository{BaseRepository: NewBaseRepository(db), loc: loc}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db)}
}

func NewSettingsRepository(db *sqlx.DB) repository.SettingsRepository {
	return &settingsRepository{BaseRepository: NewBaseRepository(db)}
}
