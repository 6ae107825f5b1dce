package model

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// LeadTime identifies one of the reminder offsets before a visit.
type LeadTime string

const (
	Lead24h LeadTime = "24h"
	Lead12h LeadTime = "12h"
	Lead6h  LeadTime = "6h"
	Lead1h  LeadTime = "1h"
)

// LeadTimes in descending order; the sweep checks them outermost first.
var LeadTimes = []LeadTime{Lead24h, Lead12h, Lead6h, Lead1h}

// Hours returns the nominal offset of the lead time.
func (l LeadTime) Hours() float64 {
	switch l {
	case Lead24h:
		return 24
	case Lead12h:
		return 12
	case Lead6h:
		return 6
	case Lead1h:
		return 1
	}
	return 0
}

// Window returns the half-width of the tolerance window around the lead time.
// Windows are mutually exclusive by construction: 23.5-24.5, 11.5-12.5,
// 5.5-6.5 and 0.75-1.25 hours before the visit.
func (l LeadTime) Window() float64 {
	if l == Lead1h {
		return 0.25
	}
	return 0.5
}

// Booking is the central record of a client's scheduled visit. Free-text
// requests start out pending with ScheduledAt unset; slot bookings are
// confirmed immediately with the slot's timestamp.
type Booking struct {
	ID              int64         `db:"id" json:"id"`
	ClientID        int64         `db:"client_id" json:"client_id"`
	ClientUsername  string        `db:"client_username" json:"client_username,omitempty"`
	ClientName      string        `db:"client_name" json:"client_name"`
	ClientPhone     string        `db:"client_phone" json:"client_phone,omitempty"`
	ServiceName     string        `db:"service_name" json:"service_name"`
	RawDatetimeText string        `db:"raw_datetime_text" json:"raw_datetime_text,omitempty"`
	ScheduledAt     *time.Time    `db:"scheduled_at" json:"scheduled_at,omitempty"`
	SlotID          *int64        `db:"slot_id" json:"slot_id,omitempty"`
	Status          BookingStatus `db:"status" json:"status"`
	CancelReason    *string       `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Remind24hSent   bool          `db:"remind_24h_sent" json:"remind_24h_sent"`
	Remind12hSent   bool          `db:"remind_12h_sent" json:"remind_12h_sent"`
	Remind6hSent    bool          `db:"remind_6h_sent" json:"remind_6h_sent"`
	Remind1hSent    bool          `db:"remind_1h_sent" json:"remind_1h_sent"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// ReminderSent reports whether the reminder for the given lead time already
// went out. Flags never reset once set.
func (b *Booking) ReminderSent(lead LeadTime) bool {
	switch lead {
	case Lead24h:
		return b.Remind24hSent
	case Lead12h:
		return b.Remind12hSent
	case Lead6h:
		return b.Remind6hSent
	case Lead1h:
		return b.Remind1hSent
	}
	return false
}

// Active reports whether the booking is in a non-terminal state.
func (b *Booking) Active() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

type BookSlotRequest struct {
	SlotID         int64  `json:"slot_id" binding:"required"`
	ClientID       int64  `json:"client_id" binding:"required"`
	ClientUsername string `json:"client_username"`
	ClientName     string `json:"client_name" binding:"required,min=2"`
	ClientPhone    string `json:"client_phone"`
	ServiceName    string `json:"service_name"`
}

type CreateBookingRequest struct {
	ClientID       int64  `json:"client_id" binding:"required"`
	ClientUsername string `json:"client_username"`
	ClientName     string `json:"client_name" binding:"required,min=2"`
	ClientPhone    string `json:"client_phone"`
	ServiceName    string `json:"service_name" binding:"required"`
	DatetimeText   string `json:"datetime_text" binding:"required"`
}

type CancelBookingRequest struct {
	ClientID int64 `json:"client_id" binding:"required"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason"`
}

type ScheduleBookingRequest struct {
	Text string `json:"text" binding:"required"`
}
