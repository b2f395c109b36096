package track

import (
	"sync"
	"time"

	"github.com/pathshare/tracker/internal/geo"
)

// State is the authoritative tracking state: the accumulated path history,
// the last known fix and the current route. All submitted fixes land in one
// shared history regardless of device; the per-device index only tracks each
// device's last known fix.
type State struct {
	mu           sync.Mutex
	history      []Fix
	route        Route
	lastKnown    *Fix
	lastByDevice map[string]Fix
	historyLimit int
}

// NewState creates an empty tracking state. historyLimit caps the path
// history at the given number of most recent fixes; 0 disables trimming.
func NewState(historyLimit int) *State {
	return &State{
		route:        Route{},
		lastByDevice: make(map[string]Fix),
		historyLimit: historyLimit,
	}
}

// AppendFix records an accepted fix with a server-assigned timestamp and
// returns it. The caller is expected to broadcast the returned fix while
// still holding any outer ordering guarantee it needs.
func (s *State) AppendFix(coord geo.Coordinate, deviceID string) Fix {
	s.mu.Lock()
	defer s.mu.Unlock()

	fix := Fix{
		Coordinate: coord,
		DeviceID:   deviceID,
		Timestamp:  time.Now(),
	}
	s.history = append(s.history, fix)
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = s.history[len(s.history)-s.historyLimit:]
	}
	s.lastKnown = &fix
	s.lastByDevice[deviceID] = fix
	return fix
}

// SetRoute replaces the current route wholesale. An empty route is valid and
// clears the previous one.
func (s *State) SetRoute(route Route) Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make(Route, len(route))
	copy(replacement, route)
	s.route = replacement
	return s.route
}

// Snapshot returns a copy of the full state. The copy is taken under the
// lock so an observer never sees a half-applied ingestion.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		PathHistory:  make([]Fix, len(s.history)),
		CurrentRoute: make(Route, len(s.route)),
		Devices:      make(map[string]Fix, len(s.lastByDevice)),
	}
	copy(snap.PathHistory, s.history)
	copy(snap.CurrentRoute, s.route)
	for id, fix := range s.lastByDevice {
		snap.Devices[id] = fix
	}
	if s.lastKnown != nil {
		last := *s.lastKnown
		snap.LastKnown = &last
	}
	return snap
}

// HistoryLen returns the number of fixes currently retained.
func (s *State) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}
