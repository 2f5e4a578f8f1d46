package subscriber

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber statuses. An unsubscribed row doubles as a suppression entry:
// the email must never receive a non-test newsletter again, even if the same
// address belongs to a registered profile.
const (
	StatusActive       = "active"
	StatusUnsubscribed = "unsubscribed"
)

// Subscriber represents the subscribers table
type Subscriber struct {
	ID        uuid.UUID
	Email     string // stored lowercased, unique
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Subscriber) TableName() string {
	return "subscribers"
}
