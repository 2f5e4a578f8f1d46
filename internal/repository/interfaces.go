package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"saunakirje/internal/domain/newsletter"
	"saunakirje/internal/domain/profile"
	"saunakirje/internal/domain/subscriber"
)

type SubscriberRepository interface {
	Create(ctx context.Context, s *subscriber.Subscriber) error
	GetByEmail(ctx context.Context, email string) (subscriber.Subscriber, error)
	GetActive(ctx context.Context) ([]subscriber.Subscriber, error)
	// GetUnsubscribedEmails returns the suppression set: every address that
	// has opted out, lowercased.
	GetUnsubscribedEmails(ctx context.Context) ([]string, error)
	UpdateStatus(ctx context.Context, email, status string) error
}

type ProfileRepository interface {
	Create(ctx context.Context, p *profile.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error)
	GetByEmail(ctx context.Context, email string) (profile.Profile, error)
	GetAll(ctx context.Context) ([]profile.Profile, error)
}

type NewsletterRepository interface {
	Create(ctx context.Context, n *newsletter.Newsletter) error
	GetByID(ctx context.Context, id uuid.UUID) (newsletter.Newsletter, error)
	List(ctx context.Context, page, limit int) ([]newsletter.Newsletter, int64, error)
	// Finalize writes the aggregate counts exactly once and flips the row
	// to completed.
	Finalize(ctx context.Context, id uuid.UUID, successCount, failureCount int) error
	AppendRecipient(ctx context.Context, r *newsletter.RecipientLog) error
	GetRecipients(ctx context.Context, newsletterID uuid.UUID) ([]newsletter.RecipientLog, error)
}

type Repositories struct {
	Subscribers SubscriberRepository
	Profiles    ProfileRepository
	Newsletters NewsletterRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Subscribers: NewSubscriberRepository(db),
		Profiles:    NewProfileRepository(db),
		Newsletters: NewNewsletterRepository(db),
	}
}
