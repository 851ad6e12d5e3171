// Package geocode wraps the Nominatim reverse-geocoding API. Lookups are
// best-effort: any failure degrades to "address unknown" at the caller.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"alertline/internal/config"
)

const UnknownAddress = "address unknown"

type Client struct {
	logger    *slog.Logger
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewClient(cfg config.GeocodeConfig, logger *slog.Logger) *Client {
	return &Client{
		logger:    logger,
		baseURL:   cfg.NominatimURL,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Reverse returns a human-readable address for the coordinate. It never
// returns an error to the caller's user; failures come back as
// UnknownAddress plus the underlying error for logging.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return UnknownAddress, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("reverse geocode failed", slog.Any("error", err))
		return UnknownAddress, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("reverse geocode bad status", slog.Int("status", resp.StatusCode))
		return UnknownAddress, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var data reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return UnknownAddress, err
	}
	if data.DisplayName == "" {
		return UnknownAddress, nil
	}

	return data.DisplayName, nil
}
