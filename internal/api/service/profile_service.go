package service

import (
	"context"
	"errors"

	"animehub/internal/api/models"
	"animehub/internal/api/repository"

	"gorm.io/gorm"
)

// ProfileService resolves accounts for the profile and search read paths.
// The privacy projection itself happens at the DTO boundary.
type ProfileService interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	SearchUsers(ctx context.Context, query string) ([]models.UserSearchResult, error)
}

type profileService struct {
	users  repository.UserRepository
	search repository.UserSearchRepository
}

func NewProfileService(users repository.UserRepository, search repository.UserSearchRepository) ProfileService {
	return &profileService{users: users, search: search}
}

func (s *profileService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *profileService) SearchUsers(ctx context.Context, query string) ([]models.UserSearchResult, error) {
	return s.search.Search(ctx, query)
}
