package database

import (
	"fmt"
	"log"
	"time"

	"saunakirje/internal/domain/profile"
	"saunakirje/internal/domain/subscriber"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	AdminEmail        string
	AdminPassword     string
	AdminDisplayName  string
	CreateSampleData  bool
	SampleSubscribers int
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		AdminEmail:        "arkisto@saunakartta.fi",
		AdminPassword:     "Lauteet@123!",
		AdminDisplayName:  "Arkiston hoitaja",
		CreateSampleData:  false,
		SampleSubscribers: 5,
	}
}

// Seed creates the initial admin profile and, optionally, sample
// subscribers for development.
func Seed(cfg *SeedConfig) error {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	log.Println("Starting database seeding...")

	var existing profile.Profile
	err := DB.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		log.Printf("Admin profile %s already exists, skipping", cfg.AdminEmail)
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		admin := profile.Profile{
			ID:           uuid.New(),
			Email:        cfg.AdminEmail,
			PasswordHash: string(hash),
			DisplayName:  cfg.AdminDisplayName,
			Role:         profile.RoleAdmin,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := DB.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin profile: %w", err)
		}
		log.Printf("Created admin profile %s", cfg.AdminEmail)
	}

	if cfg.CreateSampleData {
		for i := 0; i < cfg.SampleSubscribers; i++ {
			sub := subscriber.Subscriber{
				ID:        uuid.New(),
				Email:     fmt.Sprintf("tilaaja%d@example.com", i+1),
				Status:    subscriber.StatusActive,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if err := DB.Create(&sub).Error; err != nil {
				log.Printf("Skipping sample subscriber %s: %v", sub.Email, err)
			}
		}
		log.Printf("Created %d sample subscribers", cfg.SampleSubscribers)
	}

	log.Println("Seeding complete")
	return nil
}
