package roi

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Skip reasons reported when a sweep exits before touching deposits.
const (
	SkipWeekend      = "weekend"
	SkipNoActiveRate = "no_active_rate"
)

// Entry outcomes passed to MetricsCollector.
const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Config tunes the engine.
type Config struct {
	// Location decides which calendar day "today" is. Defaults to UTC.
	Location *time.Location
	// LockTTL bounds how long a crashed sweep can block the next one.
	LockTTL time.Duration
}

// RateSource provides the active daily investment percentage.
type RateSource interface {
	ActiveRate(ctx context.Context, interestType string) (decimal.Decimal, bool, error)
}

// Locker guards a sweep against a concurrent run on another replica.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// MetricsCollector defines the interface for collecting sweep metrics.
// RecordSweep receives a nil result when the sweep failed.
type MetricsCollector interface {
	RecordROIEntry(outcome string, amount decimal.Decimal)
	RecordSweep(trigger string, duration time.Duration, result *SweepResult)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordROIEntry(string, decimal.Decimal)          {}
func (NoopMetricsCollector) RecordSweep(string, time.Duration, *SweepResult) {}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Date       time.Time
	Rate       decimal.Decimal
	SkipReason string
	Processed  int
	Created    int
	Skipped    int
	Failed     int
	Total      decimal.Decimal
}

// Ran reports whether the sweep reached the deposits.
func (r *SweepResult) Ran() bool {
	return r.SkipReason == ""
}
