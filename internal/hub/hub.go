package hub

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Observer is one connected viewer. Send must return an error when the
// underlying channel is no longer usable.
type Observer interface {
	Send(event Event) error
	Close() error
}

// Hub maintains the set of connected observers and fans events out to all
// of them. Delivery failures disconnect only the failing observer; they
// never propagate to the caller.
type Hub struct {
	logger    *logrus.Logger
	mu        sync.Mutex
	observers map[Observer]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger:    logger,
		observers: make(map[Observer]struct{}),
	}
}

// Add registers an observer for future broadcasts.
func (h *Hub) Add(obs Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers[obs] = struct{}{}
}

// Remove unregisters an observer. Removing an observer that is not
// registered is a no-op.
func (h *Hub) Remove(obs Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.observers, obs)
}

// Broadcast delivers the event to every registered observer. An observer
// whose send fails is closed and dropped from the set.
func (h *Hub) Broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for obs := range h.observers {
		if err := obs.Send(event); err != nil {
			h.logger.WithFields(logrus.Fields{
				"error":      err,
				"event_type": event.Type,
			}).Warn("Dropping observer after failed delivery")
			obs.Close()
			delete(h.observers, obs)
		}
	}
}

// Count returns the number of registered observers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}
