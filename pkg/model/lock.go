package model

import (
	"fmt"
	"time"
)

// SlotLock is an advisory admission lock. Its _id is deterministic per
// (hall, date) so a duplicate-key insert signals a concurrent admission in
// flight; a TTL index on ExpiresAt reaps abandoned locks.
type SlotLock struct {
	ID        string    `bson:"_id"`
	HallID    string    `bson:"hall_id"`
	Date      string    `bson:"date"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// SlotLockID builds the deterministic lock key for a hall and booking date.
func SlotLockID(hallID string, date time.Time) string {
	return fmt.Sprintf("%s:%s", hallID, FormatDate(date))
}

func NewSlotLock(hallID string, date time.Time, ttl time.Duration) *SlotLock {
	now := time.Now().UTC()
	return &SlotLock{
		ID:        SlotLockID(hallID, date),
		HallID:    hallID,
		Date:      FormatDate(date),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}
