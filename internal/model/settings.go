package model

// Settings keys persisted in the settings table.
const (
	SettingLead24h = "reminder_lead_24h"
	SettingLead12h = "reminder_lead_12h"
	SettingLead6h  = "reminder_lead_6h"
	SettingLead1h  = "reminder_lead_1h"
)

// ReminderConfig holds the per-lead-time toggles. The sweep reads it fresh
// from the store on every pass, so runtime changes take effect immediately.
type ReminderConfig struct {
	Lead24h bool `json:"lead_24h"`
	Lead12h bool `json:"lead_12h"`
	Lead6h  bool `json:"lead_6h"`
	Lead1h  bool `json:"lead_1h"`
}

// DefaultReminderConfig enables every lead time.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{Lead24h: true, Lead12h: true, Lead6h: true, Lead1h: true}
}

// Enabled reports whether reminders for the given lead time are switched on.
func (c ReminderConfig) Enabled(lead LeadTime) bool {
	switch lead {
	case Lead24h:
		return c.Lead24h
	case Lead12h:
		return c.Lead12h
	case Lead6h:
		return c.Lead6h
	case Lead1h:
		return c.Lead1h
	}
	return false
}

// UpdateReminderRequest requires every toggle to be spelled out. Pointer
// fields let binding tell an explicit false apart from an omitted key, so a
// partial body cannot silently switch other lead times off.
type UpdateReminderRequest struct {
	Lead24h *bool `json:"lead_24h" binding:"required"`
	Lead12h *bool `json:"lead_12h" binding:"required"`
	Lead6h  *bool `json:"lead_6h" binding:"required"`
	Lead1h  *bool `json:"lead_1h" binding:"required"`
}

// Config flattens the request into the persisted form.
func (r UpdateReminderRequest) Config() ReminderConfig {
	return ReminderConfig{
		Lead24h: *r.Lead24h,
		Lead12h: *r.Lead12h,
		Lead6h:  *r.Lead6h,
		Lead1h:  *r.Lead1h,
	}
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}
