package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"manhwahub/internal/ingestion"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

	// Rate limiting: the Sheets API allows 60 read requests per minute
	rateLimit = 1
	rateBurst = 2

	maxRetries   = 5
	initialDelay = 1 * time.Second
	maxDelay     = 32 * time.Second
)

// Worksheet layout of the source spreadsheet. Header rows are zero-based
// grid indices; the banner rows above them are skipped.
const (
	masterListSheet   = "Copy of Master List"
	masterListColumns = "0:9"
	masterListHeader  = 7

	genresSheet    = "Genres"
	statusSheet    = "Status"
	ratingSheet    = "Rating"
	refColumns     = "3:4"
	refHeader      = 1
	categorySheet  = "Categories"
	categoryColumn = "3, 5"
)

// ErrSourceUnavailable reports that the spreadsheet could not be fetched
// after retries.
var ErrSourceUnavailable = errors.New("spreadsheet source unavailable")

// Client reads worksheets from one spreadsheet with rate limiting and
// retries.
type Client struct {
	baseURL       string
	apiKey        string
	spreadsheetID string
	httpClient    *http.Client
	rateLimiter   *rate.Limiter
	retryDelay    time.Duration
	logger        *slog.Logger
}

// NewClient creates a client for the given spreadsheet. The API key is sent
// as a query parameter per the values.get contract.
func NewClient(apiKey, spreadsheetID string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       defaultBaseURL,
		apiKey:        apiKey,
		spreadsheetID: spreadsheetID,
		rateLimiter:   rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		retryDelay:    initialDelay,
		logger:        logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// valuesResponse is the values.get payload shape.
type valuesResponse struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// FetchAll fetches every worksheet the sync needs and returns them as one
// snapshot. Any sheet failing fails the whole snapshot; a partial snapshot
// would make the reconciler delete rows that still exist in the source.
func (c *Client) FetchAll(ctx context.Context) (*ingestion.Snapshot, error) {
	snapshot := &ingestion.Snapshot{}

	fetches := []struct {
		sheet   string
		columns string
		header  int
		into    *[]ingestion.Record
	}{
		{genresSheet, refColumns, refHeader, &snapshot.Genres},
		{categorySheet, categoryColumn, refHeader, &snapshot.Categories},
		{ratingSheet, refColumns, refHeader, &snapshot.Rating},
		{statusSheet, refColumns, refHeader, &snapshot.Status},
		{masterListSheet, masterListColumns, masterListHeader, &snapshot.MasterList},
	}

	for _, f := range fetches {
		records, err := c.FetchRecords(ctx, f.sheet, f.columns, f.header)
		if err != nil {
			return nil, fmt.Errorf("fetch sheet %q: %w", f.sheet, err)
		}
		*f.into = records
	}

	return snapshot, nil
}

// FetchRecords fetches one worksheet and maps each data row to a record
// keyed by the header cells of the selected columns. headerRow is the
// zero-based grid index of the header row; data starts on the row after it.
// Rows shorter than the header are padded with empty strings.
func (c *Client) FetchRecords(ctx context.Context, sheet, columns string, headerRow int) ([]ingestion.Record, error) {
	cols, err := ParseColumnRanges(columns)
	if err != nil {
		return nil, err
	}

	grid, err := c.fetchValues(ctx, sheet)
	if err != nil {
		return nil, err
	}
	if len(grid) <= headerRow {
		return nil, fmt.Errorf("sheet %q: header row %d beyond %d fetched rows", sheet, headerRow, len(grid))
	}

	header := pickColumns(grid[headerRow], cols)
	records := make([]ingestion.Record, 0, len(grid)-headerRow-1)
	for _, row := range grid[headerRow+1:] {
		cells := pickColumns(row, cols)
		record := make(ingestion.Record, len(header))
		for i, name := range header {
			record[name] = cells[i]
		}
		records = append(records, record)
	}

	c.logger.Info("fetched worksheet", "sheet", sheet, "records", len(records))
	return records, nil
}

// fetchValues performs the values.get request with rate limiting and
// exponential backoff on 429 and server errors.
func (c *Client) fetchValues(ctx context.Context, sheet string) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s?key=%s",
		c.baseURL, c.spreadsheetID, url.PathEscape(sheet), url.QueryEscape(c.apiKey))

	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				c.logger.Warn("sheets request failed, retrying",
					"sheet", sheet, "attempt", attempt+1, "delay", delay, "error", err)
				if err := sleepCtx(ctx, delay); err != nil {
					return nil, err
				}
				delay = min(delay*2, maxDelay)
				continue
			}
			break
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
			if shouldRetry(resp.StatusCode) && attempt < maxRetries {
				c.logger.Warn("sheets request rejected, retrying",
					"sheet", sheet, "status", resp.StatusCode, "attempt", attempt+1, "delay", delay)
				if err := sleepCtx(ctx, delay); err != nil {
					return nil, err
				}
				delay = min(delay*2, maxDelay)
				continue
			}
			break
		}

		var parsed valuesResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse values response: %w", err)
		}
		return parsed.Values, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, lastErr)
}

// pickColumns selects cells by index, padding past-the-end indices with "".
func pickColumns(row []string, cols []int) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		if col < len(row) {
			out[i] = row[col]
		}
	}
	return out
}

func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode >= 500
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
