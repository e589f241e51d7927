package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. The password field holds a bcrypt hash and
// is never serialized to JSON.
type User struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Username  string             `json:"username" bson:"username"`
	Password  []byte             `json:"-" bson:"password"`
	FirstName string             `json:"first_name" bson:"first_name"`
	LastName  string             `json:"last_name" bson:"last_name"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	LastLogin time.Time          `json:"last_login,omitempty" bson:"last_login,omitempty"`
	IsActive  bool               `json:"is_active" bson:"is_active"`
}

// Session is a server-side login session. Expired sessions are garbage
// collected by a TTL index on expires_at.
type Session struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Token        string             `json:"-" bson:"token"`
	UserID       primitive.ObjectID `json:"-" bson:"user_id"`
	Email        string             `json:"email" bson:"email"`
	Username     string             `json:"username" bson:"username"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	ExpiresAt    time.Time          `json:"expires_at" bson:"expires_at"`
	LastActivity time.Time          `json:"last_activity" bson:"last_activity"`
}

// Identity is the resolved caller identity attached to an authenticated
// request. The core treats it purely as an optional default-filler for
// requester fields.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// IdentityFromUser builds the caller-facing identity view of a user.
func IdentityFromUser(u *User) *Identity {
	return &Identity{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
