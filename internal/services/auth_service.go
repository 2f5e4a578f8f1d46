package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"saunakirje/config"
	"saunakirje/internal/domain/profile"
	"saunakirje/internal/repository"
	kirje_errors "saunakirje/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	profiles  repository.ProfileRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(profiles repository.ProfileRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		profiles:  profiles,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	Profile     ProfileInfo `json:"profile"`
}

type ProfileInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type AccessClaims struct {
	ProfileID string `json:"sub"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return AuthResponse{}, kirje_errors.ErrInvalidInput
	}

	p, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, kirje_errors.ErrNotFound) {
			return AuthResponse{}, kirje_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(in.Password)) != nil {
		return AuthResponse{}, kirje_errors.ErrUnauthorized
	}

	token, err := s.signAccessToken(p)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		Profile: ProfileInfo{
			ID:          p.ID.String(),
			Email:       p.Email,
			DisplayName: p.DisplayName,
			Role:        p.Role,
		},
	}, nil
}

func (s *AuthService) signAccessToken(p profile.Profile) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		ProfileID: p.ID.String(),
		Role:      p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, kirje_errors.ErrUnauthorized
	}

	var claims AccessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, kirje_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return AccessClaims{}, kirje_errors.ErrUnauthorized
	}
	return claims, nil
}

// GetProfile resolves the bearer identity against the profile store. The
// role check always uses the stored role, not the token claim, so a demoted
// admin loses access as soon as the row changes.
func (s *AuthService) GetProfile(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// HashPassword is used by seeding and profile creation.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type profileCtxKey struct{}

func WithProfileContext(ctx context.Context, p profile.Profile) context.Context {
	return context.WithValue(ctx, profileCtxKey{}, p)
}

func ProfileFromContext(ctx context.Context) (profile.Profile, bool) {
	p, ok := ctx.Value(profileCtxKey{}).(profile.Profile)
	return p, ok
}
