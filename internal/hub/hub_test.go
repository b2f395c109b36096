package hub

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/pathshare/tracker/internal/geo"
	"github.com/pathshare/tracker/internal/track"
	"github.com/sirupsen/logrus"
)

type fakeObserver struct {
	mu     sync.Mutex
	events []Event
	fail   bool
	closed bool
}

func (f *fakeObserver) Send(event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("write: broken pipe")
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeObserver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeObserver) received() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestBroadcastReachesAllObservers(t *testing.T) {
	h := NewHub(newTestLogger())

	a := &fakeObserver{}
	b := &fakeObserver{}
	h.Add(a)
	h.Add(b)

	fix := track.Fix{Coordinate: geo.Coordinate{Lat: 1, Lon: 2}, DeviceID: "dev1"}
	h.Broadcast(NewFixEvent(fix))

	for name, obs := range map[string]*fakeObserver{"a": a, "b": b} {
		events := obs.received()
		if len(events) != 1 {
			t.Fatalf("observer %s: expected 1 event, got %d", name, len(events))
		}
		if events[0].Type != EventNewFix || events[0].Fix.DeviceID != "dev1" {
			t.Errorf("observer %s: unexpected event %+v", name, events[0])
		}
	}
}

func TestFailingObserverIsIsolated(t *testing.T) {
	h := NewHub(newTestLogger())

	healthy := &fakeObserver{}
	broken := &fakeObserver{fail: true}
	h.Add(healthy)
	h.Add(broken)

	h.Broadcast(NewRouteEvent(track.Route{{Lat: 1, Lon: 1}}))

	if len(healthy.received()) != 1 {
		t.Error("healthy observer missed the broadcast")
	}
	if !broken.closed {
		t.Error("failing observer was not closed")
	}
	if h.Count() != 1 {
		t.Errorf("expected 1 observer after failure, got %d", h.Count())
	}

	// A later broadcast is not attempted against the dropped observer
	h.Broadcast(NewRouteEvent(track.Route{}))
	if len(healthy.received()) != 2 {
		t.Error("healthy observer missed the second broadcast")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	h := NewHub(newTestLogger())

	a := &fakeObserver{}
	b := &fakeObserver{}
	h.Add(a)
	h.Add(b)

	h.Remove(a)
	h.Remove(a)

	if h.Count() != 1 {
		t.Fatalf("expected 1 observer, got %d", h.Count())
	}

	h.Broadcast(NewFixEvent(track.Fix{DeviceID: "dev1"}))
	if len(b.received()) != 1 {
		t.Error("double-remove affected the remaining observer")
	}
	if len(a.received()) != 0 {
		t.Error("removed observer still receives broadcasts")
	}
}

func TestNewRouteEventEmptyRoute(t *testing.T) {
	event := NewRouteEvent(track.Route{})
	if event.Route == nil {
		t.Fatal("empty route event should carry a non-nil route")
	}
	if len(*event.Route) != 0 {
		t.Errorf("expected empty route, got %+v", *event.Route)
	}

	// nil normalizes to empty so observers see [] rather than null
	event = NewRouteEvent(nil)
	if event.Route == nil || *event.Route == nil {
		t.Error("nil route should normalize to an empty route")
	}
}
