package service

import (
	"context"
	"time"

	"github.com/pathshare/tracker/internal/hub"
	"github.com/pathshare/tracker/internal/track"
)

// Broadcaster defines the contract for fanning events out to observers
type Broadcaster interface {
	Add(obs hub.Observer)
	Remove(obs hub.Observer)
	Broadcast(event hub.Event)
	Count() int
}

// FixSink defines the contract for publishing accepted fixes downstream
type FixSink interface {
	Publish(ctx context.Context, fix track.Fix) error
	Close() error
}

// HealthChecker defines the contract for health checking
type HealthChecker interface {
	CheckHealth() error
	UpdateLastCheck()
	GetLastCheck() time.Time
}
