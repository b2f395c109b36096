package routing

import (
	"context"
	"sync"

	"github.com/pathshare/tracker/internal/geo"
	"github.com/pathshare/tracker/internal/track"
	"github.com/sirupsen/logrus"
)

// RouteSource defines the contract for computing a route between two points
type RouteSource interface {
	Route(ctx context.Context, origin, dest geo.Coordinate) (track.Route, error)
}

// RouteSubmitter defines the contract for publishing a computed route
type RouteSubmitter interface {
	SubmitRoute(ctx context.Context, route track.Route) error
}

// Planner orchestrates route lookups. Lookups run outside any state lock;
// a newer request supersedes a pending one, and a superseded lookup's
// result is discarded so the latest request always wins. A failed or empty
// lookup submits an empty route rather than leaving the current one stale.
type Planner struct {
	logger    *logrus.Logger
	source    RouteSource
	submitter RouteSubmitter

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewPlanner creates a new route planner
func NewPlanner(source RouteSource, submitter RouteSubmitter, logger *logrus.Logger) *Planner {
	return &Planner{
		logger:    logger,
		source:    source,
		submitter: submitter,
	}
}

// Request starts a route lookup from origin to dest, superseding any lookup
// still in flight. The returned channel yields the submitted route, or is
// closed without a value when a newer request superseded this one.
func (p *Planner) Request(origin, dest geo.Coordinate) <-chan track.Route {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	result := make(chan track.Route, 1)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		defer close(result)

		route, err := p.source.Route(ctx, origin, dest)
		if err != nil {
			p.logger.WithFields(logrus.Fields{
				"error":      err,
				"generation": gen,
			}).Warn("Route lookup failed, substituting empty route")
			route = track.Route{}
		}

		if p.isStale(gen) {
			p.logger.WithField("generation", gen).Debug("Discarding superseded route result")
			return
		}

		if err := p.submitter.SubmitRoute(context.Background(), route); err != nil {
			p.logger.WithError(err).Error("Failed to submit route")
		}
		result <- route
	}()

	return result
}

func (p *Planner) isStale(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen != p.generation
}

// Wait blocks until all in-flight lookups have finished. Mainly for
// shutdown and tests.
func (p *Planner) Wait() {
	p.wg.Wait()
}
