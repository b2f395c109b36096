package hub

import "github.com/pathshare/tracker/internal/track"

// Event types pushed to observers.
const (
	EventSnapshot = "snapshot"
	EventNewFix   = "new-fix"
	EventNewRoute = "new-route"
)

// Event is the envelope delivered over the observer channel. Exactly one of
// the payload fields is set, matching Type.
type Event struct {
	Type     string          `json:"type"`
	Fix      *track.Fix      `json:"fix,omitempty"`
	Route    *track.Route    `json:"route,omitempty"`
	Snapshot *track.Snapshot `json:"snapshot,omitempty"`
}

// NewFixEvent wraps a single accepted fix.
func NewFixEvent(fix track.Fix) Event {
	return Event{Type: EventNewFix, Fix: &fix}
}

// NewRouteEvent wraps a full replacement route.
func NewRouteEvent(route track.Route) Event {
	if route == nil {
		route = track.Route{}
	}
	return Event{Type: EventNewRoute, Route: &route}
}

// NewSnapshotEvent wraps the one-time initial state push.
func NewSnapshotEvent(snap track.Snapshot) Event {
	return Event{Type: EventSnapshot, Snapshot: &snap}
}
