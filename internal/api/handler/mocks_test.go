package handler

import (
	"context"

	"animehub/internal/api/models"
	"animehub/internal/api/service"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password, username string) (string, string, *models.User, error) {
	args := m.Called(ctx, email, password, username)
	user, _ := args.Get(2).(*models.User)
	return args.String(0), args.String(1), user, args.Error(3)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, string, *models.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(2).(*models.User)
	return args.String(0), args.String(1), user, args.Error(3)
}

func (m *MockAuthService) LoginWithGoogle(ctx context.Context, rawIDToken string) (string, string, *models.User, error) {
	args := m.Called(ctx, rawIDToken)
	user, _ := args.Get(2).(*models.User)
	return args.String(0), args.String(1), user, args.Error(3)
}

func (m *MockAuthService) RefreshAccessToken(refreshToken string) (string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) RevokeToken(refreshToken string) error {
	return m.Called(refreshToken).Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*service.Claims)
	return claims, args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockProfileService) SearchUsers(ctx context.Context, query string) ([]models.UserSearchResult, error) {
	args := m.Called(ctx, query)
	results, _ := args.Get(0).([]models.UserSearchResult)
	return results, args.Error(1)
}

type MockListService struct {
	mock.Mock
}

func (m *MockListService) AddFavorite(ctx context.Context, userID string, item models.CatalogItem) (models.FavoriteList, error) {
	args := m.Called(ctx, userID, item)
	list, _ := args.Get(0).(models.FavoriteList)
	return list, args.Error(1)
}

func (m *MockListService) RemoveFavorite(ctx context.Context, userID string, malID int64) (models.FavoriteList, error) {
	args := m.Called(ctx, userID, malID)
	list, _ := args.Get(0).(models.FavoriteList)
	return list, args.Error(1)
}

func (m *MockListService) ToggleFavoriteGenre(ctx context.Context, userID string, genre models.GenreRef) (models.GenreList, error) {
	args := m.Called(ctx, userID, genre)
	list, _ := args.Get(0).(models.GenreList)
	return list, args.Error(1)
}

func (m *MockListService) AddGenreAnime(ctx context.Context, userID, genreID string, item models.CatalogItem) (models.GenreAnimeIndex, error) {
	args := m.Called(ctx, userID, genreID, item)
	index, _ := args.Get(0).(models.GenreAnimeIndex)
	return index, args.Error(1)
}

func (m *MockListService) RemoveGenreAnime(ctx context.Context, userID, genreID string, malID int64) (models.GenreAnimeIndex, error) {
	args := m.Called(ctx, userID, genreID, malID)
	index, _ := args.Get(0).(models.GenreAnimeIndex)
	return index, args.Error(1)
}

func (m *MockListService) SetWatchStatus(ctx context.Context, userID string, item models.CatalogItem, category string) (*models.WatchList, error) {
	args := m.Called(ctx, userID, item, category)
	wl, _ := args.Get(0).(*models.WatchList)
	return wl, args.Error(1)
}

func (m *MockListService) RemoveFromWatchList(ctx context.Context, userID, category string, malID int64) (*models.WatchList, error) {
	args := m.Called(ctx, userID, category, malID)
	wl, _ := args.Get(0).(*models.WatchList)
	return wl, args.Error(1)
}

func (m *MockListService) AddTop10(ctx context.Context, userID string, item models.CatalogItem, rank int, listType string) (models.Top10Partition, error) {
	args := m.Called(ctx, userID, item, rank, listType)
	partition, _ := args.Get(0).(models.Top10Partition)
	return partition, args.Error(1)
}

func (m *MockListService) RemoveTop10(ctx context.Context, userID string, malID int64, listType string) (models.Top10Partition, error) {
	args := m.Called(ctx, userID, malID, listType)
	partition, _ := args.Get(0).(models.Top10Partition)
	return partition, args.Error(1)
}

func (m *MockListService) ReorderTop10(ctx context.Context, userID string, malID int64, rank int, listType string) (models.Top10Partition, error) {
	args := m.Called(ctx, userID, malID, rank, listType)
	partition, _ := args.Get(0).(models.Top10Partition)
	return partition, args.Error(1)
}

func (m *MockListService) UpdatePrivacy(ctx context.Context, userID string, listsPublic, favoritesPublic, top10Public *bool) (*models.PrivacySettings, error) {
	args := m.Called(ctx, userID, listsPublic, favoritesPublic, top10Public)
	privacy, _ := args.Get(0).(*models.PrivacySettings)
	return privacy, args.Error(1)
}
