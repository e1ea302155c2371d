package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrRankTaken       = errors.New("rank already taken in this list")
	ErrInvalidCategory = errors.New("invalid watch list category")
	ErrInvalidListType = errors.New("invalid top 10 list type")
	ErrNotInList       = errors.New("item not in list")
)

// GenreRef is a lightweight genre reference as returned by the catalog API.
type GenreRef struct {
	MalID int64  `json:"mal_id"`
	Name  string `json:"name"`
}

// CatalogItem is a denormalized snapshot of a catalog entry, copied into a
// user's lists at the moment of the action. It is stored verbatim and never
// refreshed against the upstream catalog.
type CatalogItem struct {
	MalID    int64           `json:"mal_id"`
	Title    string          `json:"title"`
	Images   json.RawMessage `json:"images,omitempty"`
	Type     string          `json:"type,omitempty"`
	Score    float64         `json:"score,omitempty"`
	Episodes *int            `json:"episodes,omitempty"`
	Chapters *int            `json:"chapters,omitempty"`
	Genres   []GenreRef      `json:"genres,omitempty"`
}

// FavoriteEntry is a favorited catalog item tagged with the time it was added.
type FavoriteEntry struct {
	CatalogItem
	AddedAt time.Time `json:"added_at"`
}

// jsonb scan/value plumbing shared by all embedded collection types.
func jsonbValue(v any) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonbScan(dst any, src any) error {
	if src == nil {
		return nil
	}
	switch b := src.(type) {
	case []byte:
		return json.Unmarshal(b, dst)
	case string:
		return json.Unmarshal([]byte(b), dst)
	default:
		return fmt.Errorf("cannot scan %T into jsonb column", src)
	}
}

// FavoriteList is an unordered set of favorites, unique by catalog item id.
type FavoriteList []FavoriteEntry

func (l FavoriteList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *FavoriteList) Scan(src any) error          { return jsonbScan(l, src) }

func (l FavoriteList) Contains(malID int64) bool {
	for _, e := range l {
		if e.MalID == malID {
			return true
		}
	}
	return false
}

// Add appends the item unless its id is already present. Returns false on a no-op.
func (l *FavoriteList) Add(item CatalogItem, now time.Time) bool {
	if l.Contains(item.MalID) {
		return false
	}
	*l = append(*l, FavoriteEntry{CatalogItem: item, AddedAt: now})
	return true
}

// Remove drops the entry with the given id. Returns false if it was absent.
func (l *FavoriteList) Remove(malID int64) bool {
	for i, e := range *l {
		if e.MalID == malID {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return true
		}
	}
	return false
}

// GenreList is an unordered set of genre references, unique by genre id.
type GenreList []GenreRef

func (l GenreList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *GenreList) Scan(src any) error          { return jsonbScan(l, src) }

// Toggle removes the genre if present, otherwise appends it. Applying it twice
// returns the list to its original state.
func (l *GenreList) Toggle(g GenreRef) {
	for i, existing := range *l {
		if existing.MalID == g.MalID {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return
		}
	}
	*l = append(*l, g)
}

// GenreAnimeIndex maps a genre id to the set of catalog items the user filed
// under it. Items are unique per genre.
type GenreAnimeIndex map[string][]CatalogItem

func (m GenreAnimeIndex) Value() (driver.Value, error) { return jsonbValue(m) }
func (m *GenreAnimeIndex) Scan(src any) error          { return jsonbScan(m, src) }

func (m *GenreAnimeIndex) Add(genreID string, item CatalogItem) bool {
	if *m == nil {
		*m = GenreAnimeIndex{}
	}
	list := (*m)[genreID]
	for _, existing := range list {
		if existing.MalID == item.MalID {
			return false
		}
	}
	(*m)[genreID] = append(list, item)
	return true
}

func (m GenreAnimeIndex) Remove(genreID string, malID int64) bool {
	list, ok := m[genreID]
	if !ok {
		return false
	}
	for i, existing := range list {
		if existing.MalID == malID {
			m[genreID] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Top10Entry is a ranked catalog item inside one top-10 partition.
type Top10Entry struct {
	CatalogItem
	Rank int `json:"rank"`
}

// Top10Partition is one ranked list of at most ten entries, kept sorted
// ascending by rank. Ranks and item ids are unique within the partition.
type Top10Partition []Top10Entry

const top10Max = 10

// Insert drops any existing entry for the item, then adds it with the given
// rank. A rank already held by a different item is rejected rather than
// silently producing a tie; a rejected insert leaves the partition untouched.
// The partition is re-sorted and truncated to ten.
func (p *Top10Partition) Insert(item CatalogItem, rank int) error {
	for _, e := range *p {
		if e.MalID != item.MalID && e.Rank == rank {
			return ErrRankTaken
		}
	}
	kept := make(Top10Partition, 0, len(*p)+1)
	for _, e := range *p {
		if e.MalID == item.MalID {
			continue
		}
		kept = append(kept, e)
	}
	kept = append(kept, Top10Entry{CatalogItem: item, Rank: rank})
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Rank < kept[j].Rank })
	if len(kept) > top10Max {
		kept = kept[:top10Max]
	}
	*p = kept
	return nil
}

func (p *Top10Partition) Remove(malID int64) bool {
	for i, e := range *p {
		if e.MalID == malID {
			*p = append((*p)[:i], (*p)[i+1:]...)
			return true
		}
	}
	return false
}

// SetRank overwrites the rank of an existing entry and re-sorts.
func (p *Top10Partition) SetRank(malID int64, rank int) error {
	idx := -1
	for i, e := range *p {
		if e.MalID == malID {
			idx = i
			continue
		}
		if e.Rank == rank {
			return ErrRankTaken
		}
	}
	if idx < 0 {
		return ErrNotInList
	}
	(*p)[idx].Rank = rank
	sort.SliceStable(*p, func(i, j int) bool { return (*p)[i].Rank < (*p)[j].Rank })
	return nil
}

// Top 10 list type names, matching the catalog content types.
const (
	ListTypeAnime  = "anime"
	ListTypeManga  = "manga"
	ListTypeManhwa = "manhwa"
)

// Top10Lists holds the three independent ranked partitions a user maintains.
type Top10Lists struct {
	Anime  Top10Partition `json:"anime"`
	Manga  Top10Partition `json:"manga"`
	Manhwa Top10Partition `json:"manhwa"`
}

func (t Top10Lists) Value() (driver.Value, error) { return jsonbValue(t) }
func (t *Top10Lists) Scan(src any) error          { return jsonbScan(t, src) }

// Partition selects one ranked list by type name.
func (t *Top10Lists) Partition(listType string) (*Top10Partition, error) {
	switch listType {
	case ListTypeAnime:
		return &t.Anime, nil
	case ListTypeManga:
		return &t.Manga, nil
	case ListTypeManhwa:
		return &t.Manhwa, nil
	default:
		return nil, ErrInvalidListType
	}
}

// Watch list category names. These five are fixed.
const (
	CategoryWatching    = "watching"
	CategoryCompleted   = "completed"
	CategoryPlanToWatch = "planToWatch"
	CategoryOnHold      = "onHold"
	CategoryDropped     = "dropped"
)

// WatchListCategories lists the valid category names in display order.
var WatchListCategories = []string{
	CategoryWatching,
	CategoryCompleted,
	CategoryPlanToWatch,
	CategoryOnHold,
	CategoryDropped,
}

// WatchList partitions catalog items into the five fixed categories. An item
// id appears in at most one category at a time.
type WatchList struct {
	Watching    []CatalogItem `json:"watching"`
	Completed   []CatalogItem `json:"completed"`
	PlanToWatch []CatalogItem `json:"planToWatch"`
	OnHold      []CatalogItem `json:"onHold"`
	Dropped     []CatalogItem `json:"dropped"`
}

func (w WatchList) Value() (driver.Value, error) { return jsonbValue(w) }
func (w *WatchList) Scan(src any) error          { return jsonbScan(w, src) }

func (w *WatchList) bucket(category string) *[]CatalogItem {
	switch category {
	case CategoryWatching:
		return &w.Watching
	case CategoryCompleted:
		return &w.Completed
	case CategoryPlanToWatch:
		return &w.PlanToWatch
	case CategoryOnHold:
		return &w.OnHold
	case CategoryDropped:
		return &w.Dropped
	default:
		return nil
	}
}

// SetStatus moves the item into the given category, removing its id from all
// five categories first so the at-most-one-category invariant holds even when
// re-adding to the same category.
func (w *WatchList) SetStatus(item CatalogItem, category string) error {
	target := w.bucket(category)
	if target == nil {
		return ErrInvalidCategory
	}
	for _, name := range WatchListCategories {
		b := w.bucket(name)
		kept := (*b)[:0]
		for _, existing := range *b {
			if existing.MalID != item.MalID {
				kept = append(kept, existing)
			}
		}
		*b = kept
	}
	*target = append(*target, item)
	return nil
}

// RemoveFrom drops the item from the named category only. Returns false when
// the item was not in that category.
func (w *WatchList) RemoveFrom(category string, malID int64) (bool, error) {
	b := w.bucket(category)
	if b == nil {
		return false, ErrInvalidCategory
	}
	for i, existing := range *b {
		if existing.MalID == malID {
			*b = append((*b)[:i], (*b)[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Contains reports which category holds the item, if any.
func (w *WatchList) Contains(malID int64) (string, bool) {
	for _, name := range WatchListCategories {
		for _, existing := range *w.bucket(name) {
			if existing.MalID == malID {
				return name, true
			}
		}
	}
	return "", false
}

// PrivacySettings are the three independent visibility flags on a profile.
// Favorite genres and the genre index share FavoritesPublic.
type PrivacySettings struct {
	ListsPublic     bool `json:"listsPublic"`
	FavoritesPublic bool `json:"favoritesPublic"`
	Top10Public     bool `json:"top10Public"`
}

func (p PrivacySettings) Value() (driver.Value, error) { return jsonbValue(p) }
func (p *PrivacySettings) Scan(src any) error          { return jsonbScan(p, src) }

// DefaultPrivacy matches the signup default: everything public.
func DefaultPrivacy() PrivacySettings {
	return PrivacySettings{ListsPublic: true, FavoritesPublic: true, Top10Public: true}
}
