package track

import (
	"time"

	"github.com/pathshare/tracker/internal/geo"
)

// Fix is a single accepted position reading attributed to a device. The
// timestamp is assigned by the server on ingestion and the value is never
// mutated afterwards.
type Fix struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	DeviceID   string         `json:"device_id"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Route is an ordered polyline from origin to destination. An empty route
// means "no route".
type Route []geo.Coordinate

// Snapshot is a consistent copy of the full tracking state, handed to
// observers when they connect.
type Snapshot struct {
	PathHistory  []Fix          `json:"path_history"`
	CurrentRoute Route          `json:"current_route"`
	LastKnown    *Fix           `json:"last_known,omitempty"`
	Devices      map[string]Fix `json:"devices,omitempty"`
}
