package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pathshare/tracker/internal/geo"
	"github.com/pathshare/tracker/internal/track"
	"github.com/sirupsen/logrus"
)

// Client submits fixes and routes to the tracking server.
type Client struct {
	logger     *logrus.Logger
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new ingest client
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

type fixPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	DeviceID  string  `json:"device_id"`
}

type routePayload struct {
	Coordinates []coordinatePayload `json:"coordinates"`
}

type coordinatePayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SubmitFix transmits one position fix
func (c *Client) SubmitFix(ctx context.Context, coord geo.Coordinate, deviceID string) error {
	return c.post(ctx, "/api/positions", fixPayload{
		Latitude:  coord.Lat,
		Longitude: coord.Lon,
		DeviceID:  deviceID,
	})
}

// SubmitRoute transmits a full replacement route. An empty route clears the
// current one.
func (c *Client) SubmitRoute(ctx context.Context, route track.Route) error {
	payload := routePayload{Coordinates: make([]coordinatePayload, 0, len(route))}
	for _, coord := range route {
		payload.Coordinates = append(payload.Coordinates, coordinatePayload{
			Latitude:  coord.Lat,
			Longitude: coord.Lon,
		})
	}
	return c.post(ctx, "/api/routes", payload)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
			return fmt.Errorf("server rejected %s: %s", path, errResp.Error)
		}
		return fmt.Errorf("server rejected %s with status %d", path, resp.StatusCode)
	}

	return nil
}
