package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.jikan.moe/v4"

	// Rate limiting: Jikan allows 3 requests per second
	rateLimit = 3
	rateBurst = 3

	// Retry configuration
	maxRetries   = 3
	initialDelay = 1 * time.Second
	maxDelay     = 8 * time.Second
)

// UpstreamError carries a non-2xx catalog response so handlers can tell an
// upstream failure apart from a local one.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("catalog returned status %d: %s", e.StatusCode, e.Body)
}

// Client is a read-only pass-through to the external catalog, with rate
// limiting and retry on transient failures. It keeps no local state.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a catalog API client. An empty baseURL selects the
// public Jikan endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// TopAnime fetches the top anime listing.
func (c *Client) TopAnime(ctx context.Context, page int, filter string) (*ItemList, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprint(page))
	if filter != "" {
		params.Set("filter", filter)
	}

	var response ItemList
	if err := c.doRequest(ctx, "/top/anime", params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch top anime: %w", err)
	}
	return &response, nil
}

// TopManga fetches the top manga listing.
func (c *Client) TopManga(ctx context.Context, page int, filter string) (*ItemList, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprint(page))
	if filter != "" {
		params.Set("filter", filter)
	}

	var response ItemList
	if err := c.doRequest(ctx, "/top/manga", params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch top manga: %w", err)
	}
	return &response, nil
}

// TopManhwa fetches popular manhwa. Jikan has no /top/manhwa, so this is the
// manga search filtered by type and ordered by popularity.
func (c *Client) TopManhwa(ctx context.Context, page int) (*ItemList, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprint(page))
	params.Set("type", "manhwa")
	params.Set("order_by", "popularity")
	params.Set("sfw", "true")

	var response ItemList
	if err := c.doRequest(ctx, "/manga", params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch top manhwa: %w", err)
	}
	return &response, nil
}

// SearchAnime runs a free-text anime search. Extra filters (type, status,
// genres, order_by, sort) pass through as-is.
func (c *Client) SearchAnime(ctx context.Context, query string, page int, filters url.Values) (*ItemList, error) {
	return c.search(ctx, "/anime", query, page, filters)
}

// SearchManga runs a free-text manga search.
func (c *Client) SearchManga(ctx context.Context, query string, page int, filters url.Values) (*ItemList, error) {
	return c.search(ctx, "/manga", query, page, filters)
}

func (c *Client) search(ctx context.Context, endpoint, query string, page int, filters url.Values) (*ItemList, error) {
	params := url.Values{}
	for k, vs := range filters {
		for _, v := range vs {
			if v != "" {
				params.Add(k, v)
			}
		}
	}
	params.Set("q", query)
	params.Set("page", fmt.Sprint(page))
	params.Set("sfw", "true")

	var response ItemList
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return &response, nil
}

// GetAnimeByID fetches the full record for one anime.
func (c *Client) GetAnimeByID(ctx context.Context, id int64) (*ItemDetail, error) {
	var response ItemDetail
	if err := c.doRequest(ctx, fmt.Sprintf("/anime/%d/full", id), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch anime %d: %w", id, err)
	}
	return &response, nil
}

// GetMangaByID fetches the full record for one manga.
func (c *Client) GetMangaByID(ctx context.Context, id int64) (*ItemDetail, error) {
	var response ItemDetail
	if err := c.doRequest(ctx, fmt.Sprintf("/manga/%d/full", id), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch manga %d: %w", id, err)
	}
	return &response, nil
}

// GetAnimeRecommendations fetches recommendations for one anime.
func (c *Client) GetAnimeRecommendations(ctx context.Context, id int64) (*RecommendationList, error) {
	var response RecommendationList
	if err := c.doRequest(ctx, fmt.Sprintf("/anime/%d/recommendations", id), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations for %d: %w", id, err)
	}
	return &response, nil
}

// AnimeGenres fetches the anime genre vocabulary.
func (c *Client) AnimeGenres(ctx context.Context) (*GenreList, error) {
	var response GenreList
	if err := c.doRequest(ctx, "/genres/anime", nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}
	return &response, nil
}

// doRequest performs an HTTP request with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if resp.StatusCode == http.StatusOK {
				if err := json.Unmarshal(body, result); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
				return nil
			} else {
				lastErr = &UpstreamError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
				// Only rate limiting and server errors are worth retrying
				if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
					return lastErr
				}
			}
		}

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
			}
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", maxRetries+1, lastErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
