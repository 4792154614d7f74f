// Package images looks up cover art for catalog entries against a
// MyAnimeList-compatible search API and writes the URLs back to the store.
package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// one lookup per second keeps us well under the API quota
	lookupsPerSecond = 1

	maxQueryLength = 64
	requestTimeout = 10 * time.Second
)

// ErrNoMatch reports that the search returned no results for a title.
var ErrNoMatch = errors.New("no image match for title")

// Client queries a manga search API for cover images. Requests carry the
// client id header the API requires for anonymous access.
type Client struct {
	apiURL      string
	clientID    string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

func NewClient(apiURL, clientID string) *Client {
	return &Client{
		apiURL:      apiURL,
		clientID:    clientID,
		rateLimiter: rate.NewLimiter(rate.Limit(lookupsPerSecond), 1),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

type searchResponse struct {
	Data []struct {
		Node struct {
			Title       string `json:"title"`
			MainPicture struct {
				Medium string `json:"medium"`
				Large  string `json:"large"`
			} `json:"main_picture"`
		} `json:"node"`
	} `json:"data"`
}

// LookupImageURL searches for a title and returns the best cover URL of the
// top match, preferring the large variant. The query is truncated to the
// API's maximum length.
func (c *Client) LookupImageURL(ctx context.Context, title string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	query := title
	if runes := []rune(query); len(runes) > maxQueryLength {
		query = string(runes[:maxQueryLength])
	}

	endpoint := fmt.Sprintf("%s?q=%s&limit=1&fields=main_picture", c.apiURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-MAL-CLIENT-ID", c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image lookup failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse search response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoMatch, title)
	}

	picture := parsed.Data[0].Node.MainPicture
	if picture.Large != "" {
		return picture.Large, nil
	}
	if picture.Medium != "" {
		return picture.Medium, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoMatch, title)
}
