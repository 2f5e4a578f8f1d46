package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"saunakirje/internal/storage"
	kirje_errors "saunakirje/pkg/errors"

	"github.com/google/uuid"
)

// UploadService hands out presigned PUT URLs for newsletter header images.
// The returned public URL is what operators pass as the newsletter imageUrl.
type UploadService struct {
	storage *storage.Client
}

type ImageUploadInput struct {
	FileName    string
	ContentType string
}

type ImageUploadResult struct {
	UploadURL string
	Headers   map[string]string
	PublicURL string
	ObjectKey string
}

func NewUploadService(storage *storage.Client) *UploadService {
	return &UploadService{storage: storage}
}

func (s *UploadService) CreateImageUpload(ctx context.Context, in ImageUploadInput) (ImageUploadResult, error) {
	if s.storage == nil {
		return ImageUploadResult{}, errors.New("s3 storage is not configured")
	}
	if in.FileName == "" || in.ContentType == "" {
		return ImageUploadResult{}, kirje_errors.ErrInvalidInput
	}
	if err := s.storage.ValidateContentType(in.ContentType); err != nil {
		return ImageUploadResult{}, kirje_errors.ErrInvalidInput
	}

	ext := strings.ToLower(path.Ext(in.FileName))
	key := fmt.Sprintf("newsletters/%s%s", uuid.New(), ext)

	uploadURL, headers, err := s.storage.PresignPut(ctx, key, in.ContentType)
	if err != nil {
		return ImageUploadResult{}, err
	}

	return ImageUploadResult{
		UploadURL: uploadURL,
		Headers:   headers,
		PublicURL: s.storage.PublicURL(key),
		ObjectKey: key,
	}, nil
}
