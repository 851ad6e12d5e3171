// Package overpass queries the Overpass API for emergency amenities close
// to a point. It is independent of the assignment core; the map UI is the
// only consumer.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"alertline/internal/config"
	"alertline/internal/domain"
)

type Client struct {
	logger    *slog.Logger
	endpoint  string
	userAgent string
	http      *http.Client
}

func NewClient(cfg config.GeocodeConfig, logger *slog.Logger) *Client {
	return &Client{
		logger:    logger,
		endpoint:  cfg.OverpassURL,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
}

type overpassResponse struct {
	Elements []struct {
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// NearbyEmergencyServices returns police and hospital amenities within
// radiusM meters of the coordinate.
func (c *Client) NearbyEmergencyServices(ctx context.Context, lat, lng float64, radiusM int) ([]domain.NearbyService, error) {
	query := fmt.Sprintf(`
[out:json];
(
  node["amenity"="police"](around:%d,%f,%f);
  node["amenity"="hospital"](around:%d,%f,%f);
);
out body;
`, radiusM, lat, lng, radiusM, lat, lng)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(query))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("overpass request failed", slog.Any("error", err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("overpass bad status", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("overpass status %d", resp.StatusCode)
	}

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("overpass invalid json: %w", err)
	}

	services := make([]domain.NearbyService, 0, len(data.Elements))
	for _, el := range data.Elements {
		name := el.Tags["name"]
		if name == "" {
			name = "Unknown"
		}
		services = append(services, domain.NearbyService{
			Name:    name,
			Type:    el.Tags["amenity"],
			Lat:     el.Lat,
			Lng:     el.Lon,
			Address: el.Tags["addr:full"],
		})
	}

	return services, nil
}
