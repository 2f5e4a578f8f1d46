package repository

import (
	"context"
	"errors"

	"saunakirje/internal/domain/subscriber"
	kirje_errors "saunakirje/pkg/errors"

	"gorm.io/gorm"
)

type PostgresSubscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &PostgresSubscriberRepository{db: db}
}

func (r *PostgresSubscriberRepository) Create(ctx context.Context, s *subscriber.Subscriber) error {
	res := r.db.WithContext(ctx).Create(s)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return kirje_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresSubscriberRepository) GetByEmail(ctx context.Context, email string) (subscriber.Subscriber, error) {
	var s subscriber.Subscriber
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return subscriber.Subscriber{}, kirje_errors.ErrNotFound
		}
		return subscriber.Subscriber{}, err
	}
	return s, nil
}

func (r *PostgresSubscriberRepository) GetActive(ctx context.Context) ([]subscriber.Subscriber, error) {
	var subs []subscriber.Subscriber
	err := r.db.WithContext(ctx).
		Where("status = ?", subscriber.StatusActive).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *PostgresSubscriberRepository) GetUnsubscribedEmails(ctx context.Context) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Model(&subscriber.Subscriber{}).
		Where("status = ?", subscriber.StatusUnsubscribed).
		Pluck("email", &emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *PostgresSubscriberRepository) UpdateStatus(ctx context.Context, email, status string) error {
	res := r.db.WithContext(ctx).
		Model(&subscriber.Subscriber{}).
		Where("email = ?", email).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return kirje_errors.ErrNotFound
	}
	return nil
}
