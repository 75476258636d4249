package model

import "time"

// SittingArea is a bookable zone of a restaurant (terrace, private
// room, ...).  An area with RestaurantID == nil is global and offered
// by every restaurant.
//
// Fields:
//  ID           – primary key identifier.
//  AreaKey      – unique slug used by clients (e.g. "main-area").
//  Name         – display name.
//  Description  – marketing description.
//  Price        – surcharge in KES, zero for the main area.
//  IconType     – icon hint for the frontend.
//  Active       – whether the area is currently offered.
//  RestaurantID – owning restaurant, nil for global areas.
//  CreatedAt    – creation timestamp.
type SittingArea struct {
	ID           uint64    // sitting_areas.id
	AreaKey      string    // sitting_areas.area_key
	Name         string    // sitting_areas.name
	Description  string    // sitting_areas.description
	Price        float64   // sitting_areas.price
	IconType     string    // sitting_areas.icon_type
	Active       bool      // sitting_areas.active
	RestaurantID *uint64   // sitting_areas.restaurant_id (nullable)
	CreatedAt    time.Time // sitting_areas.created_at
}
