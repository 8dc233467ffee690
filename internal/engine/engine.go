// Package engine implements the slot scheduling and reservation lifecycle:
// availability checks with alternative-slot discovery, reservation creation
// (normal and overbooking), and the two-phase cancellation protocol with
// overbooking promotion.  Internally everything is typed; the legacy token
// strings consumed by the orchestration layer are produced only by
// protocol.go at the boundary.
package engine

import (
    "context"
    "time"

    "github.com/clubrosario/booking-bot/internal/model"
    "github.com/clubrosario/booking-bot/internal/queue"
    "github.com/clubrosario/booking-bot/internal/repository"
    "github.com/clubrosario/booking-bot/internal/schedule"
)

// ReservationStore is the persistence surface the engine requires.
// Implemented by repository.ReservationRepo; tests substitute an in-memory
// fake.  The store, not the engine, is the source of correctness for the
// no-double-booking invariant: Create* must be guarded check-and-insert
// operations that return repository.ErrConflict on a lost race, and
// CancelAndPromote must be a single transaction.
type ReservationStore interface {
    FindBlocking(ctx context.Context, facilityID uint64, start, end time.Time) (*repository.Blocking, error)
    ConfirmedOverlapping(ctx context.Context, facilityID uint64, from, to time.Time) ([]model.Reservation, error)
    CreateConfirmed(ctx context.Context, res *model.Reservation) error
    CreateOverbooking(ctx context.Context, res *model.Reservation, originalID uint64) error
    FutureConfirmedBySession(ctx context.Context, sessionID string, now time.Time) ([]repository.CancellableRow, error)
    CancelAndPromote(ctx context.Context, reservationID uint64, sessionID string, now time.Time) (repository.CancellableRow, []repository.PromotedRow, error)
}

// FacilityResolver maps user-supplied facility names to canonical rows.
// Implemented by registry.Registry.
type FacilityResolver interface {
    Resolve(ctx context.Context, name string) (model.Facility, error)
    Names() []string
}

// RiskEstimator produces the feature snapshot and cancellation probability
// persisted with each reservation.  Implemented by risk.Estimator; both
// operations are fail-safe and never error.
type RiskEstimator interface {
    ComputeFeatures(ctx context.Context, facilityID uint64, slot schedule.Slot, sessionID string, now time.Time) model.FeatureSnapshot
    Predict(ctx context.Context, f model.FeatureSnapshot) float64
}

// Notifier delivers promotion events to the notification pipeline.  Errors
// are logged by the engine and never affect booking state.
type Notifier interface {
    PublishOverbookingPromoted(ctx context.Context, ev queue.OverbookingPromotedEvent) error
}

// Engine wires the scheduling components together.  One Engine serves all
// concurrent requests; it holds no per-request state.
type Engine struct {
    facilities FacilityResolver
    store      ReservationStore
    risk       RiskEstimator
    notifier   Notifier
    grid       schedule.Grid

    threshold   float64 // cancellation probability at or above which overbooking is offered
    discountPct int     // discount quoted with an overbooking offer

    now func() time.Time // injectable clock for tests
}

// New constructs an Engine.  notifier may be nil, in which case promotion
// events are dropped with a log line.
func New(facilities FacilityResolver, store ReservationStore, riskEst RiskEstimator, notifier Notifier, grid schedule.Grid, threshold float64, discountPct int) *Engine {
    return &Engine{
        facilities:  facilities,
        store:       store,
        risk:        riskEst,
        notifier:    notifier,
        grid:        grid,
        threshold:   threshold,
        discountPct: discountPct,
        now:         grid.Now,
    }
}
