package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "github.com/avdeeva/beautybook/pkg/errors"

	"github.com/avdeeva/beautybook/internal/model"
)

const bookingColumns = `id, client_id, client_username, client_name, client_phone, service_name,
		   raw_datetime_text, scheduled_at, slot_id, status, cancel_reason,
		   remind_24h_sent, remind_12h_sent, remind_6h_sent, remind_1h_sent,
		   created_at, updated_at`

// BookSlot atomically flips slot occupancy and inserts a confirmed booking.
// The row lock on the slot guarantees that of M concurrent attempts exactly
// one succeeds; the rest fail with SlotOccupied.
func (r *bookingRepository) BookSlot(ctx context.Context, booking *model.Booking, slotID int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var slot model.Slot
		err := tx.GetContext(ctx, &slot,
			`SELECT id, slot_date, slot_time, is_booked FROM slots WHERE id = $1 FOR UPDATE`, slotID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NotFound("slot", err)
			}
			return fmt.Errorf("failed to lock slot: %w", err)
		}
		if slot.IsBooked {
			return apperrors.SlotOccupied(slotID)
		}

		// Early check for the common case; the partial unique index on
		// (client_id) over active slot bookings is what actually holds under
		// concurrency.
		var hasActive bool
		err = tx.GetContext(ctx, &hasActive,
			`SELECT EXISTS (SELECT 1 FROM bookings WHERE client_id = $1 AND status IN ('pending', 'confirmed'))`,
			booking.ClientID)
		if err != nil {
			return fmt.Errorf("failed to check active booking: %w", err)
		}
		if hasActive {
			return apperrors.AlreadyBooked()
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE slots SET is_booked = TRUE WHERE id = $1`, slotID); err != nil {
			return fmt.Errorf("failed to mark slot booked: %w", err)
		}

		scheduledAt, err := time.ParseInLocation("2006-01-02 15:04", slot.Date+" "+slot.Time, r.loc)
		if err != nil {
			return fmt.Errorf("failed to parse slot timestamp: %w", err)
		}

		booking.Status = model.BookingStatusConfirmed
		booking.ScheduledAt = &scheduledAt
		booking.SlotID = &slotID

		insert := `
			INSERT INTO bookings (client_id, client_username, client_name, client_phone,
								  service_name, raw_datetime_text, scheduled_at, slot_id, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`
		err = tx.QueryRowxContext(ctx, insert,
			booking.ClientID,
			booking.ClientUsername,
			booking.ClientName,
			booking.ClientPhone,
			booking.ServiceName,
			booking.RawDatetimeText,
			booking.ScheduledAt,
			booking.SlotID,
			booking.Status,
		).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
				return apperrors.AlreadyBooked()
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
}

// CreateRequest inserts a pending free-text booking. No slot check here: the
// visit time was already negotiated with the provider out of band, and the
// admin confirms the record afterwards.
func (r *bookingRepository) CreateRequest(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (client_id, client_username, client_name, client_phone,
							  service_name, raw_datetime_text, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, created_at, updated_at
	`
	booking.Status = model.BookingStatusPending
	err := r.db.QueryRowxContext(ctx, query,
		booking.ClientID,
		booking.ClientUsername,
		booking.ClientName,
		booking.ClientPhone,
		booking.ServiceName,
		booking.RawDatetimeText,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking request: %w", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("booking", err)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// Confirm transitions a non-cancelled booking to confirmed and sets its
// resolved timestamp. Confirming twice overwrites the timestamp, which is
// acceptable since only the admin triggers it.
func (r *bookingRepository) Confirm(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE bookings
		SET status = 'confirmed', scheduled_at = $2, updated_at = now()
		WHERE id = $1 AND status != 'cancelled'
	`
	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to confirm booking: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("booking", nil)
	}
	return nil
}

// Cancel transitions a non-terminal booking to cancelled and releases its
// slot, returning the prior record for notification. When ownerID is set a
// mismatch is reported as NotFound so clients cannot tell other clients'
// booking ids apart from missing ones.
func (r *bookingRepository) Cancel(ctx context.Context, id int64, ownerID *int64, reason *string) (*model.Booking, error) {
	var prior model.Booking
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &prior, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NotFound("booking", err)
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}
		if ownerID != nil && prior.ClientID != *ownerID {
			return apperrors.NotFound("booking", nil)
		}
		if prior.Status == model.BookingStatusCancelled {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = 'cancelled', cancel_reason = $2, updated_at = now() WHERE id = $1`,
			id, reason); err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		if prior.SlotID != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE slots SET is_booked = FALSE WHERE id = $1`, *prior.SlotID); err != nil {
				return fmt.Errorf("failed to release slot: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prior, nil
}

func (r *bookingRepository) ActiveForClient(ctx context.Context, clientID int64) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE client_id = $1 AND status IN ('pending', 'confirmed')
		ORDER BY created_at DESC
		LIMIT 1
	`
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("booking", err)
		}
		return nil, fmt.Errorf("failed to get active booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) ListPending(ctx context.Context) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`
	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, fmt.Errorf("failed to list pending bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListConfirmed(ctx context.Context) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'confirmed' AND scheduled_at IS NOT NULL
		ORDER BY scheduled_at ASC
	`
	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, fmt.Errorf("failed to list confirmed bookings: %w", err)
	}
	return bookings, nil
}

// DueForReminders returns the sweep working set: confirmed future bookings
// with a resolved timestamp and at least one reminder flag still unset.
func (r *bookingRepository) DueForReminders(ctx context.Context) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'confirmed'
		  AND scheduled_at IS NOT NULL
		  AND scheduled_at > now()
		  AND NOT (remind_24h_sent AND remind_12h_sent AND remind_6h_sent AND remind_1h_sent)
		ORDER BY scheduled_at ASC
	`
	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, fmt.Errorf("failed to list due bookings: %w", err)
	}
	return bookings, nil
}

func leadColumn(lead model.LeadTime) (string, error) {
	switch lead {
	case model.Lead24h:
		return "remind_24h_sent", nil
	case model.Lead12h:
		return "remind_12h_sent", nil
	case model.Lead6h:
		return "remind_6h_sent", nil
	case model.Lead1h:
		return "remind_1h_sent", nil
	}
	return "", fmt.Errorf("unknown lead time: %s", lead)
}

// MarkReminded sets a reminder-sent flag. Flags only ever go from false to
// true, so racing with a concurrent cancel is harmless.
func (r *bookingRepository) MarkReminded(ctx context.Context, id int64, lead model.LeadTime) error {
	column, err := leadColumn(lead)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE bookings SET %s = TRUE, updated_at = now() WHERE id = $1`, column)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("booking", nil)
	}
	return nil
}
