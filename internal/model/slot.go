package model

// Slot is an atomic bookable time unit for a given date. Dates are stored as
// "2006-01-02" and times as "15:04" strings, so lexicographic order matches
// chronological order.
type Slot struct {
	ID       int64  `db:"id" json:"id"`
	Date     string `db:"slot_date" json:"date"`
	Time     string `db:"slot_time" json:"time"`
	IsBooked bool   `db:"is_booked" json:"is_booked"`
}

// ScheduleEntry is a slot joined with its booking, for the admin day view.
type ScheduleEntry struct {
	Slot
	BookingID  *int64  `db:"booking_id" json:"booking_id,omitempty"`
	ClientID   *int64  `db:"client_id" json:"client_id,omitempty"`
	ClientName *string `db:"client_name" json:"client_name,omitempty"`
}

// DaySchedule is the full admin view of one date.
type DaySchedule struct {
	Date    string          `json:"date"`
	Blocked bool            `json:"blocked"`
	Entries []ScheduleEntry `json:"entries"`
}

// CancellationNotice describes one booking cancelled by a day-blocking
// cascade, for client notification.
type CancellationNotice struct {
	BookingID int64  `db:"booking_id" json:"booking_id"`
	ClientID  int64  `db:"client_id" json:"client_id"`
	Time      string `db:"slot_time" json:"time"`
}

type AddWorkingDayRequest struct {
	Date string `json:"date" binding:"required"`
}

type AddSlotRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

type BlockDayRequest struct {
	Date string `json:"date" binding:"required"`
}
