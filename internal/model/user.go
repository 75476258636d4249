package model

import "time"

// User represents a diner account as stored in the `users` table.
// The json tags are omitted because these structs are used by the
// repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID                 – primary key identifier.
//  FirstName          – given name.
//  LastName           – family name.
//  Email              – unique email address.
//  Age                – age in years, used by demographic analytics.
//  PhoneNumber        – primary contact number.
//  PasswordHash       – bcrypt hashed password.
//  MpesaNumbers       – M-Pesa numbers the user has paid with before.
//  DiningPreferences  – free-form preference text.
//  FavouriteIDs       – restaurant IDs the user marked as favourites.
//  ProfilePicture     – URL of the profile image.
//  Online             – whether the user currently has an active session.
//  RegisteredAt       – timestamp of registration.
type User struct {
	ID                uint64    // users.id
	FirstName         string    // users.first_name
	LastName          string    // users.last_name
	Email             string    // users.email
	Age               uint32    // users.age
	PhoneNumber       string    // users.phone_number
	PasswordHash      string    // users.password_hash
	MpesaNumbers      []string  // user_mpesa_numbers.phone
	DiningPreferences string    // users.dining_preferences
	FavouriteIDs      []uint64  // user_favourites.restaurant_id
	ProfilePicture    string    // users.profile_picture
	Online            bool      // users.online
	RegisteredAt      time.Time // users.registered_at
}

// FullName joins the first and last name the way the activity log
// records the acting user.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is never stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
