package dto

import (
	"time"

	"animehub/internal/api/models"
)

// ProfileResponse is the caller-visible projection of an account. Collection
// fields are pointers so hidden collections are omitted entirely rather than
// rendered empty.
type ProfileResponse struct {
	ID        string                 `json:"id"`
	Username  string                 `json:"username"`
	Email     string                 `json:"email"`
	Avatar    string                 `json:"avatar,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	Privacy   models.PrivacySettings `json:"privacy"`

	WatchList      *models.WatchList       `json:"watch_list,omitempty"`
	Favorites      *models.FavoriteList    `json:"favorites,omitempty"`
	Top10List      *models.Top10Lists      `json:"top10_list,omitempty"`
	FavoriteGenres *models.GenreList       `json:"favorite_genres,omitempty"`
	GenreAnimeList *models.GenreAnimeIndex `json:"genre_anime_list,omitempty"`
}

// NewProfileResponse projects an account for a viewer. The owner sees the
// full account; everyone else gets the identity fields plus whichever
// collections the visibility flags expose. Favorite genres and the genre
// index ride on the favorites flag.
func NewProfileResponse(user *models.User, isOwner bool) ProfileResponse {
	resp := ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
		Privacy:   user.Privacy,
	}

	if isOwner {
		resp.WatchList = &user.WatchList
		resp.Favorites = &user.Favorites
		resp.Top10List = &user.Top10List
		resp.FavoriteGenres = &user.FavoriteGenres
		resp.GenreAnimeList = &user.GenreAnimeList
		return resp
	}

	if user.Privacy.ListsPublic {
		resp.WatchList = &user.WatchList
	}
	if user.Privacy.FavoritesPublic {
		resp.Favorites = &user.Favorites
		resp.FavoriteGenres = &user.FavoriteGenres
		resp.GenreAnimeList = &user.GenreAnimeList
	}
	if user.Privacy.Top10Public {
		resp.Top10List = &user.Top10List
	}
	return resp
}
