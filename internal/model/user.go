package model

import "time"

// User is an upsert-only record of every client who ever made contact,
// used for addressing notifications. The id is the chat platform's client id.
type User struct {
	ID          int64     `db:"id" json:"id"`
	Username    string    `db:"username" json:"username,omitempty"`
	DisplayName string    `db:"display_name" json:"display_name"`
	FirstSeen   time.Time `db:"first_seen" json:"first_seen"`
}
