package newsletter

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Audience selects which recipient pools a newsletter targets.
type Audience string

const (
	AudienceSubscribers Audience = "subscribers"
	AudienceMembers     Audience = "members"
	AudienceAll         Audience = "all"
	AudienceTest        Audience = "test"
)

func (a Audience) Valid() bool {
	switch a {
	case AudienceSubscribers, AudienceMembers, AudienceAll, AudienceTest:
		return true
	}
	return false
}

// Newsletter statuses. A row is created as pending before any send attempt
// and flipped to completed exactly once, after every per-recipient send has
// resolved.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Recipient log statuses.
const (
	RecipientSent   = "sent"
	RecipientFailed = "failed"
)

// Newsletter represents the newsletters table: one row per operator-initiated
// broadcast attempt.
type Newsletter struct {
	ID              uuid.UUID
	Subject         string
	Audience        Audience
	TemplateID      string
	Content         string
	ImageURL        sql.NullString
	SenderID        uuid.UUID
	Status          string
	TotalRecipients int
	SuccessCount    int
	FailureCount    int
	CreatedAt       time.Time
	CompletedAt     sql.NullTime
}

// RecipientLog represents the newsletter_recipients table: append-only,
// one row per recipient per broadcast attempt, never updated.
type RecipientLog struct {
	ID           uuid.UUID
	NewsletterID uuid.UUID
	Email        string
	Status       string
	ErrorMessage sql.NullString
	CreatedAt    time.Time
}

// Recipient is a resolved destination for one dispatch run.
type Recipient struct {
	ID    uuid.UUID
	Email string
}

func (Newsletter) TableName() string {
	return "newsletters"
}

func (RecipientLog) TableName() string {
	return "newsletter_recipients"
}
