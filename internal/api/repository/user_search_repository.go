package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"animehub/internal/api/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const searchLimit = 20

// UserSearchRepository runs the user search query. It goes through pgx
// directly: the query is a projection over jsonb columns that is simpler to
// express as SQL than through the ORM.
type UserSearchRepository interface {
	Search(ctx context.Context, query string) ([]models.UserSearchResult, error)
}

type userSearchRepository struct {
	pool *pgxpool.Pool
}

func NewUserSearchRepository(pool *pgxpool.Pool) UserSearchRepository {
	return &userSearchRepository{pool: pool}
}

// Search matches accounts by username or email, case-insensitive, capped at
// 20 rows. Only the publicly searchable projection is selected.
func (r *userSearchRepository) Search(ctx context.Context, query string) ([]models.UserSearchResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, email, created_at,
		       COALESCE(favorites, '[]'::jsonb),
		       COALESCE(top10_list, '{}'::jsonb)
		FROM users
		WHERE username ILIKE '%' || $1 || '%'
		   OR email ILIKE '%' || $1 || '%'
		ORDER BY username
		LIMIT $2`, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	results := make([]models.UserSearchResult, 0, searchLimit)
	for rows.Next() {
		var (
			res           models.UserSearchResult
			favoritesJSON []byte
			top10JSON     []byte
		)
		if err := rows.Scan(&res.ID, &res.Username, &res.Email, &res.CreatedAt, &favoritesJSON, &top10JSON); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		if err := json.Unmarshal(favoritesJSON, &res.Favorites); err != nil {
			return nil, fmt.Errorf("decode favorites: %w", err)
		}
		if err := json.Unmarshal(top10JSON, &res.Top10List); err != nil {
			return nil, fmt.Errorf("decode top10 list: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return results, nil
}
