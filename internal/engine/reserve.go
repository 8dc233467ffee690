package engine

import (
    "context"
    "errors"

    "github.com/clubrosario/booking-bot/internal/model"
    "github.com/clubrosario/booking-bot/internal/repository"
    "github.com/clubrosario/booking-bot/internal/schedule"
)

// ReserveKind enumerates reservation results.
type ReserveKind int

const (
    // ReserveConfirmed means a confirmed reservation was created.
    ReserveConfirmed ReserveKind = iota
    // ReservePendingOverbooking means a pending overbooking was created on
    // top of the blocking confirmed reservation.
    ReservePendingOverbooking
    // ReserveRejected means the slot could not be booked; Check carries the
    // availability outcome that explains why.
    ReserveRejected
    // ReserveNoSession means no session identity was supplied.
    ReserveNoSession
    // ReserveFailed means a store error aborted the operation.
    ReserveFailed
)

// ReserveResult is the typed outcome of a reservation request.
type ReserveResult struct {
    Kind         ReserveKind
    ID           uint64
    OriginalID   uint64
    CustomerName string
    Check        Availability // set for ReserveRejected
    Err          ErrorKind    // set for ReserveFailed
}

// maxReserveAttempts bounds the check-then-insert loop: the initial attempt
// plus one retry after a storage-level conflict.
const maxReserveAttempts = 2

// Reserve runs the full reservation flow: availability check, feature
// computation, risk scoring and guarded persistence.  The availability
// check always runs internally; a caller's prior check is never trusted.
// A conflict at insert time (slot taken between check and write) triggers
// exactly one re-check-and-retry, after which the slot is reported as
// occupied.
func (e *Engine) Reserve(ctx context.Context, facilityName, dateStr, timeStr, customerName, sessionID string) ReserveResult {
    if sessionID == "" {
        return ReserveResult{Kind: ReserveNoSession}
    }

    for attempt := 0; attempt < maxReserveAttempts; attempt++ {
        av, fac, slot := e.check(ctx, facilityName, dateStr, timeStr)

        switch av.Kind {
        case Available:
            res := e.buildReservation(ctx, fac, slot, customerName, sessionID)
            err := e.store.CreateConfirmed(ctx, res)
            if errors.Is(err, repository.ErrConflict) {
                continue // lost the race; re-check once
            }
            if err != nil {
                return ReserveResult{Kind: ReserveFailed, Err: ErrorDB}
            }
            return ReserveResult{Kind: ReserveConfirmed, ID: res.ID, CustomerName: customerName}

        case Occupied:
            if !av.OverbookingEligible {
                return ReserveResult{Kind: ReserveRejected, Check: av}
            }
            res := e.buildReservation(ctx, fac, slot, customerName, sessionID)
            err := e.store.CreateOverbooking(ctx, res, av.BlockingID)
            if errors.Is(err, repository.ErrConflict) {
                continue // original cancelled or overbooking already taken; re-check once
            }
            if err != nil {
                return ReserveResult{Kind: ReserveFailed, Err: ErrorDB}
            }
            return ReserveResult{Kind: ReservePendingOverbooking, ID: res.ID, OriginalID: av.BlockingID, CustomerName: customerName}

        default:
            return ReserveResult{Kind: ReserveRejected, Check: av}
        }
    }

    // Both attempts conflicted; report the slot's final state.
    av := e.CheckAvailability(ctx, facilityName, dateStr, timeStr)
    return ReserveResult{Kind: ReserveRejected, Check: av}
}

// buildReservation assembles an unsaved reservation with its immutable
// feature snapshot and predicted cancellation probability.
func (e *Engine) buildReservation(ctx context.Context, fac model.Facility, slot schedule.Slot, customerName, sessionID string) *model.Reservation {
    features := e.risk.ComputeFeatures(ctx, fac.ID, slot, sessionID, e.now())
    return &model.Reservation{
        FacilityID:   fac.ID,
        CustomerName: customerName,
        SessionID:    sessionID,
        StartsAt:     slot.Start,
        EndsAt:       slot.End,
        CancelProb:   e.risk.Predict(ctx, features),
        Features:     features,
    }
}
