package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pathshare/tracker/internal/geo"
	"github.com/pathshare/tracker/internal/hub"
	"github.com/pathshare/tracker/internal/track"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidCoordinate is returned for coordinates outside WGS84 bounds
	ErrInvalidCoordinate = errors.New("coordinate out of bounds")
	// ErrMissingDeviceID is returned when a fix carries no device identifier
	ErrMissingDeviceID = errors.New("device id must not be empty")
)

// Tracker is the ingestion and broadcast service. It owns the ordering of
// state mutations relative to observer pushes: every ingestion appends and
// broadcasts inside one critical section, and observer registration takes
// the same lock, so a new observer sees either the state strictly before or
// strictly after any given ingestion.
type Tracker struct {
	logger        *logrus.Logger
	state         *track.State
	broadcaster   Broadcaster
	sink          FixSink
	healthChecker HealthChecker

	mu      sync.Mutex
	pending chan track.Fix
	wg      sync.WaitGroup
}

// Config holds tracker service configuration
type Config struct {
	HistoryLimit int
	// SinkQueueSize bounds the backlog of fixes waiting for the sink.
	SinkQueueSize int
}

// NewTracker creates a new tracker service. sink may be nil when no
// downstream pipeline is configured.
func NewTracker(cfg Config, sink FixSink, logger *logrus.Logger) *Tracker {
	queueSize := cfg.SinkQueueSize
	if queueSize <= 0 {
		queueSize = 256
	}

	return &Tracker{
		logger:        logger,
		state:         track.NewState(cfg.HistoryLimit),
		broadcaster:   hub.NewHub(logger),
		sink:          sink,
		healthChecker: NewHealthChecker(logger),
		pending:       make(chan track.Fix, queueSize),
	}
}

// Start launches the background publish and health loops
func (t *Tracker) Start(ctx context.Context) {
	t.wg.Add(2)
	go t.publishFixes(ctx)
	go t.healthCheck(ctx)
}

// Stop waits for the background loops to drain
func (t *Tracker) Stop() error {
	t.wg.Wait()
	if t.sink != nil {
		return t.sink.Close()
	}
	return nil
}

// SubmitFix validates and records one transmitted fix, pushing it to every
// connected observer before returning. Retransmissions are not deduplicated.
func (t *Tracker) SubmitFix(ctx context.Context, coord geo.Coordinate, deviceID string) (track.Fix, error) {
	if !coord.Valid() {
		return track.Fix{}, ErrInvalidCoordinate
	}
	if deviceID == "" {
		return track.Fix{}, ErrMissingDeviceID
	}

	t.mu.Lock()
	fix := t.state.AppendFix(coord, deviceID)
	t.broadcaster.Broadcast(hub.NewFixEvent(fix))
	t.mu.Unlock()

	t.logger.WithFields(logrus.Fields{
		"device_id": deviceID,
		"latitude":  coord.Lat,
		"longitude": coord.Lon,
		"observers": t.broadcaster.Count(),
	}).Debug("Accepted fix")

	// Hand the fix to the sink queue outside the critical section; sink
	// latency must never delay ingestion or broadcast.
	if t.sink != nil {
		select {
		case t.pending <- fix:
		default:
			t.logger.WithField("device_id", deviceID).Warn("Sink queue full, dropping fix")
		}
	}

	return fix, nil
}

// SubmitRoute replaces the current route wholesale and pushes the full new
// route to every connected observer. An empty route is valid.
func (t *Tracker) SubmitRoute(ctx context.Context, route track.Route) (track.Route, error) {
	for _, coord := range route {
		if !coord.Valid() {
			return nil, ErrInvalidCoordinate
		}
	}

	t.mu.Lock()
	applied := t.state.SetRoute(route)
	t.broadcaster.Broadcast(hub.NewRouteEvent(applied))
	t.mu.Unlock()

	t.logger.WithFields(logrus.Fields{
		"coordinates": len(applied),
		"observers":   t.broadcaster.Count(),
	}).Debug("Replaced route")

	return applied, nil
}

// Attach registers a new observer. The observer receives a one-time full
// snapshot and is then subscribed to live pushes with no gap between the
// two: both happen under the ingestion lock.
func (t *Tracker) Attach(obs hub.Observer) error {
	t.mu.Lock()
	snap := t.state.Snapshot()
	if err := obs.Send(hub.NewSnapshotEvent(snap)); err != nil {
		t.mu.Unlock()
		obs.Close()
		return err
	}
	t.broadcaster.Add(obs)
	t.mu.Unlock()

	t.logger.WithField("observers", t.broadcaster.Count()).Info("Observer attached")
	return nil
}

// Detach unregisters an observer and closes it. Detaching twice is a no-op.
func (t *Tracker) Detach(obs hub.Observer) {
	t.broadcaster.Remove(obs)
	obs.Close()
}

// Snapshot returns a consistent copy of the current tracking state
func (t *Tracker) Snapshot() track.Snapshot {
	return t.state.Snapshot()
}

// CheckHealth reports whether the background loops are still alive
func (t *Tracker) CheckHealth() error {
	return t.healthChecker.CheckHealth()
}

// publishFixes forwards accepted fixes to the sink in ingestion order
func (t *Tracker) publishFixes(ctx context.Context) {
	defer t.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case fix := <-t.pending:
			t.healthChecker.UpdateLastCheck()
			if t.sink == nil {
				continue
			}
			if err := t.sink.Publish(ctx, fix); err != nil {
				t.logger.WithFields(logrus.Fields{
					"error":     err,
					"device_id": fix.DeviceID,
				}).Error("Failed to publish fix to sink")
			}
		case <-time.After(30 * time.Second):
			t.healthChecker.UpdateLastCheck()
		}
	}
}

// healthCheck periodically checks the health of the tracker
func (t *Tracker) healthCheck(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.healthChecker.CheckHealth(); err != nil {
				t.logger.Error("Health check failed: ", err)
			}
		}
	}
}
