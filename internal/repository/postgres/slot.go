package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "github.com/avdeeva/beautybook/pkg/errors"

	"github.com/avdeeva/beautybook/internal/model"
)

const pqUniqueViolation = "23505"

func (r *slotRepository) Create(ctx context.Context, date, tm string) (*model.Slot, error) {
	query := `
		INSERT INTO slots (slot_date, slot_time, is_booked)
		VALUES ($1, $2, FALSE)
		RETURNING id
	`
	slot := &model.Slot{Date: date, Time: tm}
	err := r.db.QueryRowxContext(ctx, query, date, tm).Scan(&slot.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, apperrors.DuplicateSlot(date, tm)
		}
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}
	return slot, nil
}

func (r *slotRepository) Get(ctx context.Context, id int64) (*model.Slot, error) {
	query := `
		SELECT id, slot_date, slot_time, is_booked
		FROM slots
		WHERE id = $1
	`
	var slot model.Slot
	err := r.db.GetContext(ctx, &slot, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("slot", err)
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &slot, nil
}

// Delete removes an unbooked slot. The occupancy check and the delete run in
// one transaction so a concurrent booking cannot slip in between.
func (r *slotRepository) Delete(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var isBooked bool
		err := tx.GetContext(ctx, &isBooked, `SELECT is_booked FROM slots WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NotFound("slot", err)
			}
			return fmt.Errorf("failed to lock slot: %w", err)
		}
		if isBooked {
			return apperrors.SlotOccupied(id)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete slot: %w", err)
		}
		return nil
	})
}

func (r *slotRepository) AvailableDates(ctx context.Context, fromDate string) ([]string, error) {
	query := `
		SELECT DISTINCT s.slot_date
		FROM slots s
		WHERE s.is_booked = FALSE
		  AND s.slot_date >= $1
		  AND s.slot_date NOT IN (SELECT day FROM blocked_days)
		ORDER BY s.slot_date
	`
	var dates []string
	if err := r.db.SelectContext(ctx, &dates, query, fromDate); err != nil {
		return nil, fmt.Errorf("failed to list available dates: %w", err)
	}
	return dates, nil
}

func (r *slotRepository) FreeSlots(ctx context.Context, date string) ([]model.Slot, error) {
	query := `
		SELECT id, slot_date, slot_time, is_booked
		FROM slots
		WHERE slot_date = $1 AND is_booked = FALSE
		ORDER BY slot_time
	`
	var slots []model.Slot
	if err := r.db.SelectContext(ctx, &slots, query, date); err != nil {
		return nil, fmt.Errorf("failed to list free slots: %w", err)
	}
	return slots, nil
}

func (r *slotRepository) Schedule(ctx context.Context, date string) ([]model.ScheduleEntry, error) {
	query := `
		SELECT s.id, s.slot_date, s.slot_time, s.is_booked,
			   b.id AS booking_id, b.client_id, b.client_name
		FROM slots s
		LEFT JOIN bookings b ON b.slot_id = s.id AND b.status != 'cancelled'
		WHERE s.slot_date = $1
		ORDER BY s.slot_time
	`
	var entries []model.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, date); err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return entries, nil
}

func (r *slotRepository) IsDayBlocked(ctx context.Context, date string) (bool, error) {
	var blocked bool
	err := r.db.GetContext(ctx, &blocked, `SELECT EXISTS (SELECT 1 FROM blocked_days WHERE day = $1)`, date)
	if err != nil {
		return false, fmt.Errorf("failed to check blocked day: %w", err)
	}
	return blocked, nil
}

// BlockDay marks a date unavailable and cascades: every active booking on
// that date is cancelled and its slot released, all in one transaction.
// Blocking an already-blocked day is a no-op beyond ensuring the row exists.
// Returns the cancelled bookings as notices for client notification.
func (r *slotRepository) BlockDay(ctx context.Context, date string) ([]model.CancellationNotice, error) {
	var notices []model.CancellationNotice
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO blocked_days (day) VALUES ($1) ON CONFLICT (day) DO NOTHING`, date); err != nil {
			return fmt.Errorf("failed to insert blocked day: %w", err)
		}

		noticeQuery := `
			SELECT b.id AS booking_id, b.client_id,
				   COALESCE(s.slot_time, to_char(b.scheduled_at, 'HH24:MI')) AS slot_time
			FROM bookings b
			LEFT JOIN slots s ON s.id = b.slot_id
			WHERE b.status IN ('pending', 'confirmed')
			  AND (s.slot_date = $1 OR b.scheduled_at::date = $1::date)
			ORDER BY slot_time
		`
		if err := tx.SelectContext(ctx, &notices, noticeQuery, date); err != nil {
			return fmt.Errorf("failed to collect cancellations: %w", err)
		}

		if len(notices) > 0 {
			ids := make([]int64, len(notices))
			for i, n := range notices {
				ids[i] = n.BookingID
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE bookings SET status = 'cancelled', cancel_reason = 'day blocked', updated_at = now()
				 WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
				return fmt.Errorf("failed to cancel bookings: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE slots SET is_booked = FALSE WHERE slot_date = $1`, date); err != nil {
			return fmt.Errorf("failed to release slots: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notices, nil
}
