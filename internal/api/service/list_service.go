package service

import (
	"context"
	"errors"
	"time"

	"animehub/internal/api/models"
	"animehub/internal/api/repository"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// saveRetries bounds how often a mutation is replayed after losing an
// optimistic-concurrency race before the conflict is surfaced to the caller.
const saveRetries = 3

// ListService applies one transformation to a user's embedded collections and
// persists the whole account document. Every method is a full
// load-mutate-save cycle; nothing is written when the mutation is a no-op.
type ListService interface {
	AddFavorite(ctx context.Context, userID string, item models.CatalogItem) (models.FavoriteList, error)
	RemoveFavorite(ctx context.Context, userID string, malID int64) (models.FavoriteList, error)
	ToggleFavoriteGenre(ctx context.Context, userID string, genre models.GenreRef) (models.GenreList, error)
	AddGenreAnime(ctx context.Context, userID, genreID string, item models.CatalogItem) (models.GenreAnimeIndex, error)
	RemoveGenreAnime(ctx context.Context, userID, genreID string, malID int64) (models.GenreAnimeIndex, error)
	SetWatchStatus(ctx context.Context, userID string, item models.CatalogItem, category string) (*models.WatchList, error)
	RemoveFromWatchList(ctx context.Context, userID, category string, malID int64) (*models.WatchList, error)
	AddTop10(ctx context.Context, userID string, item models.CatalogItem, rank int, listType string) (models.Top10Partition, error)
	RemoveTop10(ctx context.Context, userID string, malID int64, listType string) (models.Top10Partition, error)
	ReorderTop10(ctx context.Context, userID string, malID int64, rank int, listType string) (models.Top10Partition, error)
	UpdatePrivacy(ctx context.Context, userID string, listsPublic, favoritesPublic, top10Public *bool) (*models.PrivacySettings, error)
}

type listService struct {
	users repository.UserRepository
	now   func() time.Time
}

func NewListService(users repository.UserRepository) ListService {
	return &listService{users: users, now: time.Now}
}

// withAccount runs one read-modify-write cycle against the account document.
// The mutate callback reports whether anything changed; unchanged documents
// are not persisted. A stale save restarts the whole cycle on a fresh copy.
func (s *listService) withAccount(ctx context.Context, userID string, mutate func(*models.User) (bool, error)) (*models.User, error) {
	var lastErr error
	for attempt := 0; attempt < saveRetries; attempt++ {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}

		changed, err := mutate(user)
		if err != nil {
			return nil, err
		}
		if !changed {
			return user, nil
		}

		if err := s.users.Save(ctx, user); err != nil {
			if errors.Is(err, repository.ErrStaleAccount) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return user, nil
	}
	return nil, lastErr
}

func (s *listService) AddFavorite(ctx context.Context, userID string, item models.CatalogItem) (models.FavoriteList, error) {
	user, err := s.withAccount(ctx, userID, func(u *models.User) (bool, error) {
		return u.Favorites.Add(item, s.now()), nil
	})
	if err != nil {
		return nil, err
	}
	return user.Favorites, nil
}

func (s *listService) RemoveFavorite(ctx context.Context, userID string, malID int64) (models.FavoriteList, error) {
	user, err := s.withAccount(ctx, userID, func(u *models.User) (bool, error) {
		return u.Favorites.Remove(malID), nil
	})
	if err != nil {
		return nil, err
	}
	return user.Favorites, nil
}

func (s *listService) ToggleFavoriteGenre(ctx context.Context, userID string, genre models.GenreRef) (models.GenreList, error) {
	user, err := s.withAccount(ctx, userID, func(u *models.User) (bool, error) {
		u.FavoriteGenres.Toggle(genre)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return user.FavoriteGenres, nil
}

func (s *listService) AddGenreAnime(ctx context.Context, userID, genreID string, item models.CatalogItem) (models.GenreAnimeIndex, error) {
	user, err := s.withAccount(ctx, userID, func(u *models.User) (bool, error) {
		return u.GenreAnimeList.Add(genreID, item), nil
	})
	if err != nil {
		return nil, err
	}
	return user.GenreAnimeList, nil
}

func (s *listService) RemoveGenreAnime(ctx context.Context, userID, genreID string, malID int64) (models.GenreAnimeIndex, error) {
	user, err := s.withAccount(ctx, userID, func(u *models.User) (bool, error) {
		return u.GenreAnimeList.Remove(genreID, malID), nil
	})
	if err != nil {
		return nil, err
	}
	return user.GenreAnimeList, nil
}

// SetWatchStatus always persists, even when the item is re-added to the
// category it is already in.
func (s *listService) SetWatchStatus(ctx context.Context, userID string, item models.CatalogItem, category string) (*models.WatchList, error) {
	user, err := s.withAccount(ctx, userID, func(u *models.User) (bool, error) {
		if err := u.WatchList.SetStatus(item, category); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &user.WatchList, nil
}

func (s *listService) RemoveFromWatchList(ctx context.Context, userID, category string, malID int64) (*models.WatchList, error) {
	user, err := s.withAccount(ctx, userID, func(u *models.User) (bool, error) {
		return u.WatchList.RemoveFrom(category, malID)
	})
	if err != nil {
		return nil, err
	}
	return &user.WatchList, nil
}

func (s *listService) AddTop10(ctx context.Context, userID string, item models.CatalogItem, rank int, listType string) (models.Top10Partition, error) {
	var result models.Top10Partition
	_, err := s.withAccount(ctx, userID, func(u *models.User) (bool, error) {
		partition, err := u.Top10List.Partition(listType)
		if err != nil {
			return false, err
		}
		if err := partition.Insert(item, rank); err != nil {
			return false, err
		}
		result = *partition
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *listService) RemoveTop10(ctx context.Context, userID string, malID int64, listType string) (models.Top10Partition, error) {
	var result models.Top10Partition
	_, err := s.withAccount(ctx, userID, func(u *models.User) (bool, error) {
		partition, err := u.Top10List.Partition(listType)
		if err != nil {
			return false, err
		}
		changed := partition.Remove(malID)
		result = *partition
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *listService) ReorderTop10(ctx context.Context, userID string, malID int64, rank int, listType string) (models.Top10Partition, error) {
	var result models.Top10Partition
	_, err := s.withAccount(ctx, userID, func(u *models.User) (bool, error) {
		partition, err := u.Top10List.Partition(listType)
		if err != nil {
			return false, err
		}
		if err := partition.SetRank(malID, rank); err != nil {
			return false, err
		}
		result = *partition
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdatePrivacy applies only the provided flags, leaving the others as they are.
func (s *listService) UpdatePrivacy(ctx context.Context, userID string, listsPublic, favoritesPublic, top10Public *bool) (*models.PrivacySettings, error) {
	user, err := s.withAccount(ctx, userID, func(u *models.User) (bool, error) {
		changed := false
		if listsPublic != nil {
			u.Privacy.ListsPublic = *listsPublic
			changed = true
		}
		if favoritesPublic != nil {
			u.Privacy.FavoritesPublic = *favoritesPublic
			changed = true
		}
		if top10Public != nil {
			u.Privacy.Top10Public = *top10Public
			changed = true
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return &user.Privacy, nil
}
