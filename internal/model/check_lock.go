package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckLock is a distributed lock serializing evaluations of one monitoring
// request (or the bulk sweep) across pods. Stale locks expire via TTL.
type CheckLock struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Key       string             `json:"key" bson:"key"`               // request_id or the sweep sentinel
	LockedBy  string             `json:"locked_by" bson:"locked_by"`   // Pod identifier (hostname)
	LockedAt  time.Time          `json:"locked_at" bson:"locked_at"`   // Lock acquisition timestamp
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"` // Lock expiration (TTL)
}
