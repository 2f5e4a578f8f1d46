package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"saunakirje/internal/domain/subscriber"
	"saunakirje/internal/repository"
	kirje_errors "saunakirje/pkg/errors"
	"saunakirje/pkg/logger"

	"github.com/google/uuid"
)

type SubscriberService struct {
	repo   repository.SubscriberRepository
	logger *logger.Logger
}

func NewSubscriberService(repo repository.SubscriberRepository, l *logger.Logger) *SubscriberService {
	return &SubscriberService{repo: repo, logger: l}
}

// Subscribe opts an address into the newsletter. Re-subscribing an
// unsubscribed address reactivates it; an already-active address is a no-op.
func (s *SubscriberService) Subscribe(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, kirje_errors.ErrNotFound) {
			return s.repo.Create(ctx, &subscriber.Subscriber{
				ID:        uuid.New(),
				Email:     email,
				Status:    subscriber.StatusActive,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			})
		}
		return err
	}

	if existing.Status == subscriber.StatusActive {
		return nil
	}
	return s.repo.UpdateStatus(ctx, email, subscriber.StatusActive)
}

// Unsubscribe suppresses an address. Addresses that only exist as member
// profiles get a suppression row created here, since profiles carry no
// unsubscribe flag of their own.
func (s *SubscriberService) Unsubscribe(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	_, err = s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, kirje_errors.ErrNotFound) {
			return s.repo.Create(ctx, &subscriber.Subscriber{
				ID:        uuid.New(),
				Email:     email,
				Status:    subscriber.StatusUnsubscribed,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			})
		}
		return err
	}
	return s.repo.UpdateStatus(ctx, email, subscriber.StatusUnsubscribed)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", kirje_errors.ErrInvalidInput
	}
	return email, nil
}
