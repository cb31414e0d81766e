package scraper

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so metadata timestamps are deterministic in tests
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time
type RealClock struct{}

// Now returns time.Now()
func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts session ID generation for the journal
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs
type UUIDGenerator struct{}

// New returns a random version 4 UUID
func (UUIDGenerator) New() string { return uuid.New().String() }

// Sleeper pauses between downloads
type Sleeper func(ctx context.Context, d time.Duration) error

// sleepContext waits for d on the wall clock; cancellation ends the wait early
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
