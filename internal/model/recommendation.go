package model

import "time"

// Recommendation caches the AI-generated restaurant suggestions for a
// user.  Entries older than 24 hours are discarded and regenerated.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – user the suggestions were generated for.
//  BasedOnFavourites – restaurants matching the user's favourite cuisines.
//  NewToYou          – restaurants the user has not tried.
//  CreatedAt         – when the suggestions were generated.
type Recommendation struct {
	ID                uint64    // recommendations.id
	UserID            uint64    // recommendations.user_id
	BasedOnFavourites []uint64  // recommendation_entries (kind='favourites')
	NewToYou          []uint64  // recommendation_entries (kind='new')
	CreatedAt         time.Time // recommendations.created_at
}
