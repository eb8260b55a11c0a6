package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"ahorrapp/internal/core"
	"ahorrapp/internal/images"
	"ahorrapp/internal/storage"
)

// UserService manages user profiles and avatars.
type UserService struct {
	storage *storage.SQLiteRepository
	images  ImageStore
}

func NewUserService(storage *storage.SQLiteRepository, imgs ImageStore) *UserService {
	return &UserService{storage: storage, images: imgs}
}

func (s *UserService) GetUser(ctx context.Context, id string) (core.User, error) {
	return s.storage.GetUser(ctx, id)
}

// SaveProfile creates or updates a user profile.
func (s *UserService) SaveProfile(ctx context.Context, u core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpsertUser(ctx, u); err != nil {
		return fmt.Errorf("save user %s: %w", u.ID, err)
	}
	return nil
}

// UploadAvatar stores a new avatar and removes the previous hosted one.
// Bundled default avatars are never deleted.
func (s *UserService) UploadAvatar(ctx context.Context, userID, filename string, content io.Reader) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("image uploads are not configured")
	}

	u, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load user %s: %w", userID, err)
	}

	url, err := s.images.Upload(ctx, filename, content, images.FolderUsers)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	prev := u.Image
	u.Image = url
	if err := s.storage.UpsertUser(ctx, u); err != nil {
		return "", fmt.Errorf("save user %s: %w", userID, err)
	}

	if images.Hosted(prev) {
		if err := s.images.Destroy(ctx, prev); err != nil {
			slog.ErrorContext(ctx, "Failed to remove old avatar", "url", prev, "error", err)
		}
	}
	return url, nil
}
