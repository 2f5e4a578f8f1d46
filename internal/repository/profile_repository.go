package repository

import (
	"context"
	"errors"

	"saunakirje/internal/domain/profile"
	kirje_errors "saunakirje/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return kirje_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	var p profile.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return profile.Profile{}, kirje_errors.ErrNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}

func (r *PostgresProfileRepository) GetByEmail(ctx context.Context, email string) (profile.Profile, error) {
	var p profile.Profile
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return profile.Profile{}, kirje_errors.ErrNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}

func (r *PostgresProfileRepository) GetAll(ctx context.Context) ([]profile.Profile, error) {
	var profiles []profile.Profile
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
