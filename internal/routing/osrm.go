package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pathshare/tracker/internal/geo"
	"github.com/pathshare/tracker/internal/track"
	"github.com/sirupsen/logrus"
)

// Client fetches routes from an OSRM instance.
type Client struct {
	logger     *logrus.Logger
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new OSRM client with a bounded request timeout
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		logger:     logger,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Route fetches the driving route between origin and destination. OSRM
// speaks GeoJSON, so the response carries lon,lat pairs; the result is
// normalized to lat,lon coordinates. An absent route is returned as an
// empty route, not an error.
func (c *Client) Route(ctx context.Context, origin, dest geo.Coordinate) (track.Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, origin.Lon, origin.Lat, dest.Lon, dest.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osrm returned %d", resp.StatusCode)
	}

	var result struct {
		Routes []struct {
			Geometry struct {
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"routes"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	if len(result.Routes) == 0 {
		return track.Route{}, nil
	}

	coordinates := result.Routes[0].Geometry.Coordinates
	route := make(track.Route, 0, len(coordinates))
	for _, pair := range coordinates {
		if len(pair) < 2 {
			continue
		}
		route = append(route, geo.Coordinate{Lat: pair[1], Lon: pair[0]})
	}

	return route, nil
}
