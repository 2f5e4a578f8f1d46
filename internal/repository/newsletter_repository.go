package repository

import (
	"context"
	"errors"
	"time"

	"saunakirje/internal/domain/newsletter"
	kirje_errors "saunakirje/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresNewsletterRepository struct {
	db *gorm.DB
}

func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &PostgresNewsletterRepository{db: db}
}

func (r *PostgresNewsletterRepository) Create(ctx context.Context, n *newsletter.Newsletter) error {
	res := r.db.WithContext(ctx).Create(n)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return kirje_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresNewsletterRepository) GetByID(ctx context.Context, id uuid.UUID) (newsletter.Newsletter, error) {
	var n newsletter.Newsletter
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newsletter.Newsletter{}, kirje_errors.ErrNotFound
		}
		return newsletter.Newsletter{}, err
	}
	return n, nil
}

func (r *PostgresNewsletterRepository) List(ctx context.Context, page, limit int) ([]newsletter.Newsletter, int64, error) {
	var items []newsletter.Newsletter
	var total int64

	q := r.db.WithContext(ctx).Model(&newsletter.Newsletter{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit

	if err := q.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *PostgresNewsletterRepository) Finalize(ctx context.Context, id uuid.UUID, successCount, failureCount int) error {
	res := r.db.WithContext(ctx).
		Model(&newsletter.Newsletter{}).
		Where("id = ? AND status = ?", id, newsletter.StatusPending).
		Updates(map[string]interface{}{
			"status":        newsletter.StatusCompleted,
			"success_count": successCount,
			"failure_count": failureCount,
			"completed_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return kirje_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresNewsletterRepository) AppendRecipient(ctx context.Context, rec *newsletter.RecipientLog) error {
	res := r.db.WithContext(ctx).Create(rec)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

func (r *PostgresNewsletterRepository) GetRecipients(ctx context.Context, newsletterID uuid.UUID) ([]newsletter.RecipientLog, error) {
	var recipients []newsletter.RecipientLog
	err := r.db.WithContext(ctx).
		Where("newsletter_id = ?", newsletterID).
		Order("created_at ASC").
		Find(&recipients).Error
	if err != nil {
		return nil, err
	}
	return recipients, nil
}
