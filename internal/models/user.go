package models

// User is a stored credential: a unique username and a bcrypt password hash.
// Immutable after registration; there is no password-change flow.
type User struct {
	ID           string `bson:"_id,omitempty" json:"id"`
	Username     string `bson:"username" json:"username"`
	PasswordHash string `bson:"password" json:"-"`
}
