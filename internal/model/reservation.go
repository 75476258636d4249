package model

import "time"

// Reservation statuses.  "payed" is the wire-visible value clients
// already depend on, so the spelling is kept.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationPayed     = "payed"
	ReservationNoShow    = "no-show"
)

// SittingAreaChoice is the denormalized snapshot of the sitting area
// chosen for a reservation.  It is copied onto the reservation at
// booking time so later edits to the area catalogue do not change
// what the diner agreed to pay.
type SittingAreaChoice struct {
	AreaKey string  `json:"area_key"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
}

// DefaultSittingArea is used when a booking request omits the area.
func DefaultSittingArea() SittingAreaChoice {
	return SittingAreaChoice{AreaKey: "main-area", Name: "Main Area", Price: 0}
}

// Reservation records a diner's booking at a restaurant.  After
// creation the status is the only field that changes: reconciliation
// may move it to "payed", and the restaurant may later mark it
// "confirmed" or "no-show".
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – user who made the reservation.
//  RestaurantID     – restaurant being booked.
//  Date             – reservation date ("YYYY-MM-DD").
//  Time             – reservation time ("HH:MM").
//  PartySize        – number of seats requested.
//  SittingArea      – snapshot of the chosen sitting area.
//  PreOrderedItems  – menu item IDs ordered ahead of arrival.
//  ConfirmationCode – short token returned to the diner.
//  Status           – pending, confirmed, payed or no-show.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Reservation struct {
	ID               uint64            // reservations.id
	UserID           uint64            // reservations.user_id
	RestaurantID     uint64            // reservations.restaurant_id
	Date             string            // reservations.reservation_date
	Time             string            // reservations.reservation_time
	PartySize        uint32            // reservations.party_size
	SittingArea      SittingAreaChoice // reservations.sitting_area (JSON column)
	PreOrderedItems  []uint64          // reservation_items.menu_item_id
	ConfirmationCode string            // reservations.confirmation_code
	Status           string            // reservations.status
	CreatedAt        time.Time         // reservations.created_at
	UpdatedAt        time.Time         // reservations.updated_at
}
