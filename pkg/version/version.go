// Package version maintains the menu version counter: a single monotonic
// integer bumped after every menu-entity mutation, used by the responder
// and the client cache as the staleness signal.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/bellavista/menu-api/pkg/store"
)

const (
	// CounterKey is the well-known key of the singleton version counter,
	// kept outside every entity prefix.
	CounterKey = "menu:meta:version"

	// recordKey holds the last-increment timestamp document.
	recordKey = "menu:meta:version:updated"
)

var (
	versionBumps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_version_bumps_total",
		Help: "Total number of menu version increments",
	})

	versionBumpFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_version_bump_failures_total",
		Help: "Total number of failed menu version increments",
	})

	currentVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "menu_version",
		Help: "Current menu version counter",
	})
)

// Record is the singleton version record. Exactly one exists per
// deployment environment; it is created implicitly by the first increment
// and never deleted.
type Record struct {
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker reads and bumps the version counter through the document store's
// atomic counter primitive.
type Tracker struct {
	store  store.Store
	logger zerolog.Logger
}

// NewTracker creates a version tracker on top of the given store.
func NewTracker(s store.Store, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store:  s,
		logger: logger.With().Str("component", "version").Logger(),
	}
}

// Increment bumps the version counter by exactly 1 and returns the new
// record. A missing counter is treated as 0 before the increment, so the
// first call yields version 1. The increment itself is atomic in the
// backend; the timestamp document is best-effort bookkeeping.
func (t *Tracker) Increment(ctx context.Context) (Record, error) {
	v, err := t.store.Increment(ctx, CounterKey)
	if err != nil {
		versionBumpFailures.Inc()
		return Record{}, fmt.Errorf("increment version counter: %w", err)
	}

	rec := Record{Version: v, UpdatedAt: time.Now().UTC()}

	versionBumps.Inc()
	currentVersion.Set(float64(v))
	t.logger.Debug().Int64("version", v).Msg("Menu version bumped")

	// Timestamp bookkeeping only. Losing it never loses the signal.
	doc, err := json.Marshal(rec)
	if err == nil {
		if err := t.store.Put(ctx, recordKey, doc); err != nil {
			t.logger.Warn().Err(err).Msg("Failed to store version timestamp")
		}
	}

	return rec, nil
}

// Current returns the current version. When no counter exists yet it
// returns 1 so that clients and server always have a usable comparison
// value: the first increment also yields 1, and both sides agree.
func (t *Tracker) Current(ctx context.Context) (int64, error) {
	v, err := t.store.Counter(ctx, CounterKey)
	if err != nil {
		return 0, fmt.Errorf("read version counter: %w", err)
	}
	if v == 0 {
		return 1, nil
	}
	return v, nil
}

// Get returns the full version record: the current counter and, when
// available, the last-increment timestamp.
func (t *Tracker) Get(ctx context.Context) (Record, error) {
	v, err := t.Current(ctx)
	if err != nil {
		return Record{}, err
	}

	rec := Record{Version: v}
	doc, err := t.store.Get(ctx, recordKey)
	if err == nil {
		var stored Record
		if jsonErr := json.Unmarshal(doc, &stored); jsonErr == nil {
			rec.UpdatedAt = stored.UpdatedAt
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		t.logger.Warn().Err(err).Msg("Failed to read version timestamp")
	}

	return rec, nil
}
