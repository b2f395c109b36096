package client

import (
	"context"
	"sync"

	"github.com/pathshare/tracker/internal/geo"
	"github.com/sirupsen/logrus"
)

// FixSubmitter defines the contract for transmitting a forwarded fix
type FixSubmitter interface {
	SubmitFix(ctx context.Context, coord geo.Coordinate, deviceID string) error
}

// FixFilter thins a noisy stream of raw position fixes down to a meaningful
// trail. While tracking is enabled, the first fix is always forwarded and
// becomes the reference point; every later fix is forwarded only when it
// moved more than minDistance meters from the reference, which then
// advances. Dropped fixes are gone, not queued.
type FixFilter struct {
	logger      *logrus.Logger
	submitter   FixSubmitter
	deviceID    string
	minDistance float64

	mu      sync.Mutex
	enabled bool
	ref     *geo.Coordinate
	trail   []geo.Coordinate
}

// NewFixFilter creates a new filter. minDistance <= 0 falls back to 1 meter.
func NewFixFilter(submitter FixSubmitter, deviceID string, minDistance float64, logger *logrus.Logger) *FixFilter {
	if minDistance <= 0 {
		minDistance = 1.0
	}
	return &FixFilter{
		logger:      logger,
		submitter:   submitter,
		deviceID:    deviceID,
		minDistance: minDistance,
	}
}

// Enable turns tracking on, clearing the local trail and the reference
// point so the next offered fix is forwarded unconditionally.
func (f *FixFilter) Enable() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = true
	f.ref = nil
	f.trail = nil
}

// Disable turns tracking off; offered fixes are dropped until re-enabled.
func (f *FixFilter) Disable() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = false
}

// Offer feeds one raw fix through the filter. It reports whether the fix
// was forwarded. A transmission failure still advances the reference point;
// retransmission is the caller's concern.
func (f *FixFilter) Offer(ctx context.Context, coord geo.Coordinate) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.enabled {
		return false, nil
	}
	if f.ref != nil && geo.DistanceMeters(*f.ref, coord) <= f.minDistance {
		return false, nil
	}

	ref := coord
	f.ref = &ref
	f.trail = append(f.trail, coord)

	if err := f.submitter.SubmitFix(ctx, coord, f.deviceID); err != nil {
		f.logger.WithFields(logrus.Fields{
			"error":     err,
			"device_id": f.deviceID,
		}).Error("Failed to transmit fix")
		return true, err
	}
	return true, nil
}

// Trail returns a copy of the locally displayed trail.
func (f *FixFilter) Trail() []geo.Coordinate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]geo.Coordinate, len(f.trail))
	copy(out, f.trail)
	return out
}
