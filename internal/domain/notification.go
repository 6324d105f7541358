package domain

import (
	"fmt"
	"time"
)

// NotificationRecord is written once per item included in a sent digest.
type NotificationRecord struct {
	OwnerID string
	ItemID  string
	Status  Status
	SentAt  time.Time
	EmailID string
	RunID   string
}

// NotificationKey identifies the dedup scope. Status is part of the key so an
// escalation from warning to replace is never suppressed by an earlier warning.
type NotificationKey struct {
	OwnerID string
	ItemID  string
	Status  Status
}

func (r *NotificationRecord) Key() NotificationKey {
	return NotificationKey{OwnerID: r.OwnerID, ItemID: r.ItemID, Status: r.Status}
}

func (k NotificationKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.OwnerID, k.ItemID, k.Status)
}

// DayBucket returns the guard key for the UTC calendar day of sentAt.
func (k NotificationKey) DayBucket(sentAt time.Time) string {
	return k.String() + ":" + sentAt.UTC().Format(time.DateOnly)
}
