package model

import "time"

// Approval states a restaurant moves through after registering.
const (
	ApprovalPending  = "pending"
	ApprovalAccepted = "accepted"
	ApprovalDeclined = "declined"
)

// Restaurant represents a venue as stored in the `restaurants` table.
// Capacity is a plain counter, not a seat map: CurrentCapacity counts
// the seats still bookable within the current reset window and is
// restored to InitialCapacity when the window elapses.  The invariant
// CurrentCapacity <= InitialCapacity holds at all times.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – display name.
//  CuisineType     – cuisine served (e.g. "Swahili", "Italian").
//  Address         – physical address.
//  Phone           – contact number.
//  Email           – unique login email.
//  OpenTime        – business opening time ("HH:MM").
//  CloseTime       – business closing time ("HH:MM").
//  MpesaNumber     – till/paybill number payouts go to.
//  ApprovalStatus  – pending, accepted or declined.
//  CurrentCapacity – seats bookable in the current window.
//  InitialCapacity – configured total capacity.
//  Image           – URL of the restaurant image.
//  LastReset       – when CurrentCapacity was last restored.
//  PasswordHash    – bcrypt hash, set on admin approval.
type Restaurant struct {
	ID              uint64    // restaurants.id
	Name            string    // restaurants.name
	CuisineType     string    // restaurants.cuisine_type
	Address         string    // restaurants.address
	Phone           string    // restaurants.phone
	Email           string    // restaurants.email
	OpenTime        string    // restaurants.open_time
	CloseTime       string    // restaurants.close_time
	MpesaNumber     string    // restaurants.mpesa_number
	ApprovalStatus  string    // restaurants.approval_status
	CurrentCapacity uint32    // restaurants.current_capacity
	InitialCapacity uint32    // restaurants.initial_capacity
	Image           string    // restaurants.image
	LastReset       time.Time // restaurants.last_reset
	PasswordHash    string    // restaurants.password_hash
}
