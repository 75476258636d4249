// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/google/uuid"

// ReservationPaidEvent is published when an M-Pesa payment for a reservation
// is reconciled as confirmed. It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type ReservationPaidEvent struct {
	EventID          string `json:"event_id"`
	ReservationID    uint64 `json:"reservation_id"`
	UserID           uint64 `json:"user_id"`
	RestaurantID     uint64 `json:"restaurant_id"`
	RestaurantName   string `json:"restaurant_name"`
	ReservationDate  string `json:"reservation_date"`
	ReservationTime  string `json:"reservation_time"`
	PartySize        uint32 `json:"party_size"`
	SittingArea      string `json:"sitting_area"`
	ConfirmationCode string `json:"confirmation_code"`
	PaidAt           string `json:"paid_at"`
}

// NewEventID returns a unique identifier assigned to an event before
// publishing so consumers can deduplicate redeliveries.
func NewEventID() string {
	return uuid.NewString()
}
