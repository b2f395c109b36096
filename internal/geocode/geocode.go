package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pathshare/tracker/internal/geo"
	"github.com/sirupsen/logrus"
)

// Place is one ranked geocoding match.
type Place struct {
	Coordinate  geo.Coordinate `json:"coordinate"`
	DisplayName string         `json:"display_name"`
}

// Client looks up place names against a Nominatim-compatible endpoint.
type Client struct {
	logger     *logrus.Logger
	baseURL    string
	limit      int
	httpClient *http.Client
}

// NewClient creates a new geocoding client with a bounded request timeout
func NewClient(baseURL string, limit int, timeout time.Duration, logger *logrus.Logger) *Client {
	if limit <= 0 {
		limit = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		logger:     logger,
		baseURL:    baseURL,
		limit:      limit,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search resolves a free-form query to ranked places. bias, when non-nil,
// biases results towards a small box around that coordinate. An empty
// result list means "no match" and is not an error.
func (c *Client) Search(ctx context.Context, query string, bias *geo.Coordinate) ([]Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(c.limit))
	if bias != nil {
		// ~0.1 degree box around the bias point
		params.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f",
			bias.Lon-0.1, bias.Lat+0.1, bias.Lon+0.1, bias.Lat-0.1))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "pathshare-tracker")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned %d", resp.StatusCode)
	}

	var result []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(result))
	for _, r := range result {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			c.logger.WithField("lat", r.Lat).Warn("Skipping result with bad latitude")
			continue
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			c.logger.WithField("lon", r.Lon).Warn("Skipping result with bad longitude")
			continue
		}
		places = append(places, Place{
			Coordinate:  geo.Coordinate{Lat: lat, Lon: lon},
			DisplayName: r.DisplayName,
		})
	}

	return places, nil
}
