package model

import (
	"testing"
	"time"
)

func TestNewSlotLock(t *testing.T) {
	date := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	lock := NewSlotLock("656e1f77bcf86cd799439011", date, 30*time.Second)

	if lock.ID != "656e1f77bcf86cd799439011:2026-03-02" {
		t.Errorf("unexpected lock id %q", lock.ID)
	}
	if lock.Date != "2026-03-02" {
		t.Errorf("unexpected lock date %q", lock.Date)
	}
	if !lock.ExpiresAt.After(lock.CreatedAt) {
		t.Error("lock must expire after creation")
	}

	// Same hall and day must collide on _id regardless of time of day.
	other := NewSlotLock("656e1f77bcf86cd799439011", date.Add(3*time.Hour), 30*time.Second)
	if other.ID != lock.ID {
		t.Errorf("lock ids differ for same hall and day: %q vs %q", other.ID, lock.ID)
	}
}
