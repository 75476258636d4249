package model

import "time"

// Payment statuses.  A payment is created pending and moved exactly
// once to confirmed or failed by the reconciler.
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentFailed    = "failed"
)

// PaymentMethodMpesa is the only supported method.
const PaymentMethodMpesa = "Mpesa"

// Payment links a reservation to its mobile-money charge attempt.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – paying user.
//  ReservationID – reservation the payment is for.
//  Method        – always "Mpesa".
//  Status        – pending, confirmed or failed.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Payment struct {
	ID            uint64    // payments.id
	UserID        uint64    // payments.user_id
	ReservationID uint64    // payments.reservation_id
	Method        string    // payments.method
	Status        string    // payments.status
	CreatedAt     time.Time // payments.created_at
	UpdatedAt     time.Time // payments.updated_at
}
