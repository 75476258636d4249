package model

import "time"

// Activity is an audit-log entry.  Writes are fire-and-forget: a
// failed activity insert must never fail the operation it describes.
type Activity struct {
	ID       uint64    // activities.id
	Actor    string    // activities.actor (user or restaurant name, "Admin", "System")
	Activity string    // activities.activity
	Date     time.Time // activities.date
}
