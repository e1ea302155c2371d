package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultAvatar = "https://i.pravatar.cc/300?img=10"

// User is the account document. The embedded collections live in jsonb
// columns on the same row, so every read or write touches the whole account.
type User struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	GoogleID *string `gorm:"uniqueIndex" json:"-"`
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Password string  `gorm:"column:password_hash" json:"-"` // empty for Google accounts
	Username string  `gorm:"not null" json:"username"`
	Avatar   string  `json:"avatar"`

	Favorites      FavoriteList    `gorm:"type:jsonb" json:"favorites"`
	FavoriteGenres GenreList       `gorm:"type:jsonb" json:"favorite_genres"`
	GenreAnimeList GenreAnimeIndex `gorm:"type:jsonb" json:"genre_anime_list"`
	Top10List      Top10Lists      `gorm:"type:jsonb" json:"top10_list"`
	WatchList      WatchList       `gorm:"type:jsonb" json:"watch_list"`
	Privacy        PrivacySettings `gorm:"type:jsonb" json:"privacy"`

	// Version is the optimistic-concurrency token checked on every save.
	Version   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to set defaults before inserting a new account.
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Avatar == "" {
		user.Avatar = defaultAvatar
	}
	return
}

func (User) TableName() string {
	return "users"
}

// UserSearchResult is the projection returned by the user search endpoint.
type UserSearchResult struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	CreatedAt time.Time    `json:"created_at"`
	Favorites FavoriteList `json:"favorites"`
	Top10List Top10Lists   `json:"top10_list"`
}
