package dto

import (
	"encoding/json"

	"animehub/internal/api/models"
)

// CatalogItemPayload is the catalog snapshot the client sends with a list
// mutation. Beyond the required identifier and title the shape is stored
// verbatim.
type CatalogItemPayload struct {
	MalID    int64             `json:"mal_id" binding:"required"`
	Title    string            `json:"title" binding:"required"`
	Images   json.RawMessage   `json:"images,omitempty"`
	Type     string            `json:"type,omitempty"`
	Score    float64           `json:"score,omitempty"`
	Episodes *int              `json:"episodes,omitempty"`
	Chapters *int              `json:"chapters,omitempty"`
	Genres   []models.GenreRef `json:"genres,omitempty"`
}

func (p CatalogItemPayload) ToModel() models.CatalogItem {
	return models.CatalogItem{
		MalID:    p.MalID,
		Title:    p.Title,
		Images:   p.Images,
		Type:     p.Type,
		Score:    p.Score,
		Episodes: p.Episodes,
		Chapters: p.Chapters,
		Genres:   p.Genres,
	}
}

// ToggleGenreRequest: payload for toggling a favorite genre
type ToggleGenreRequest struct {
	MalID int64  `json:"mal_id" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

// GenreAnimeRequest: payload for filing an item under a genre
type GenreAnimeRequest struct {
	GenreID string             `json:"genre_id" binding:"required"`
	Anime   CatalogItemPayload `json:"anime" binding:"required"`
}

// WatchListRequest: payload for moving an item into a watch list category
type WatchListRequest struct {
	Category string             `json:"category" binding:"required"`
	Anime    CatalogItemPayload `json:"anime" binding:"required"`
}

// Top10Request: payload for inserting a ranked entry
type Top10Request struct {
	ListType string             `json:"list_type" binding:"required"`
	Rank     int                `json:"rank" binding:"required,min=1"`
	Item     CatalogItemPayload `json:"item" binding:"required"`
}

// Top10ReorderRequest: payload for changing an entry's rank
type Top10ReorderRequest struct {
	Rank int `json:"rank" binding:"required,min=1"`
}

// PrivacyRequest: partial update of the visibility flags; omitted flags keep
// their current value
type PrivacyRequest struct {
	ListsPublic     *bool `json:"listsPublic"`
	FavoritesPublic *bool `json:"favoritesPublic"`
	Top10Public     *bool `json:"top10Public"`
}
