package catalog

import "encoding/json"

// Response shapes for the Jikan v4 API. Only the fields the application
// reads are decoded; image blobs travel through as raw JSON.

// ItemList is the paginated list shape shared by the top, search and
// seasonal endpoints.
type ItemList struct {
	Data       []Item     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ItemDetail wraps a single catalog entry.
type ItemDetail struct {
	Data Item `json:"data"`
}

// Item is one anime/manga record.
type Item struct {
	MalID    int64           `json:"mal_id"`
	Title    string          `json:"title"`
	Images   json.RawMessage `json:"images,omitempty"`
	Type     string          `json:"type,omitempty"`
	Score    float64         `json:"score,omitempty"`
	Episodes *int            `json:"episodes,omitempty"`
	Chapters *int            `json:"chapters,omitempty"`
	Status   string          `json:"status,omitempty"`
	Synopsis string          `json:"synopsis,omitempty"`
	Genres   []Genre         `json:"genres,omitempty"`
}

// Genre is a catalog genre tag.
type Genre struct {
	MalID int64  `json:"mal_id"`
	Name  string `json:"name"`
}

// GenreList is the response of the genre listing endpoints.
type GenreList struct {
	Data []Genre `json:"data"`
}

// Pagination is Jikan's pagination envelope.
type Pagination struct {
	LastVisiblePage int  `json:"last_visible_page"`
	HasNextPage     bool `json:"has_next_page"`
	CurrentPage     int  `json:"current_page"`
}

// RecommendationList is the response of the recommendation endpoints.
type RecommendationList struct {
	Data []Recommendation `json:"data"`
}

// Recommendation is one recommended entry with its vote count.
type Recommendation struct {
	Entry Item `json:"entry"`
	Votes int  `json:"votes"`
}
