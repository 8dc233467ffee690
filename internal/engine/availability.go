package engine

import (
    "context"
    "errors"

    "github.com/clubrosario/booking-bot/internal/model"
    "github.com/clubrosario/booking-bot/internal/repository"
    "github.com/clubrosario/booking-bot/internal/schedule"
)

// AvailabilityKind enumerates the outcomes of an availability check.
type AvailabilityKind int

const (
    // Available means the requested slot overlaps no confirmed reservation.
    Available AvailabilityKind = iota
    // Occupied means exactly one confirmed reservation blocks the slot.
    Occupied
    // InvalidPast means the requested slot starts before now.
    InvalidPast
    // InvalidFacility means the facility name resolved to nothing.
    InvalidFacility
    // BadFormat means the date or time input failed to parse.
    BadFormat
    // CheckFailed means the check itself could not run (store error).
    CheckFailed
)

// ErrorKind classifies infrastructure failures for the token protocol.
type ErrorKind int

const (
    ErrorNone ErrorKind = iota
    ErrorDB
    ErrorUnexpected
)

// Availability is the typed result of a slot availability check.  Occupied
// outcomes carry the blocking reservation, its stored cancellation
// probability, whether that probability clears the overbooking threshold,
// and the free alternative start times for the rest of the day.
type Availability struct {
    Kind AvailabilityKind

    BlockingID          uint64
    CancelProb          float64
    OverbookingEligible bool
    DiscountPct         int
    Alternatives        []string // "HH:MM" start times, chronological

    Options []string  // valid facility names, set when Kind is InvalidFacility
    Err     ErrorKind // set when Kind is CheckFailed
}

// CheckAvailability resolves the facility, validates the requested slot and
// reports whether it is free, occupied (with alternatives and overbooking
// eligibility) or invalid.
func (e *Engine) CheckAvailability(ctx context.Context, facilityName, dateStr, timeStr string) Availability {
    av, _, _ := e.check(ctx, facilityName, dateStr, timeStr)
    return av
}

// check is the internal variant also returning the resolved facility and
// parsed slot so Reserve can reuse them.
func (e *Engine) check(ctx context.Context, facilityName, dateStr, timeStr string) (Availability, model.Facility, schedule.Slot) {
    fac, err := e.facilities.Resolve(ctx, facilityName)
    if err != nil {
        if errors.Is(err, repository.ErrFacilityNotFound) {
            return Availability{Kind: InvalidFacility, Options: e.facilities.Names()}, model.Facility{}, schedule.Slot{}
        }
        return Availability{Kind: CheckFailed, Err: ErrorDB}, model.Facility{}, schedule.Slot{}
    }

    slot, err := e.grid.SlotAt(dateStr, timeStr)
    if err != nil {
        return Availability{Kind: BadFormat}, fac, schedule.Slot{}
    }

    now := e.now()
    if e.grid.IsPast(slot, now) {
        return Availability{Kind: InvalidPast}, fac, slot
    }

    blocking, err := e.store.FindBlocking(ctx, fac.ID, slot.Start, slot.End)
    if err != nil {
        return Availability{Kind: CheckFailed, Err: ErrorDB}, fac, slot
    }
    if blocking == nil {
        return Availability{Kind: Available}, fac, slot
    }

    alternatives, err := e.alternatives(ctx, fac.ID, slot)
    if err != nil {
        return Availability{Kind: CheckFailed, Err: ErrorDB}, fac, slot
    }

    return Availability{
        Kind:                Occupied,
        BlockingID:          blocking.ID,
        CancelProb:          blocking.CancelProb,
        OverbookingEligible: blocking.CancelProb >= e.threshold,
        DiscountPct:         e.discountPct,
        Alternatives:        alternatives,
    }, fac, slot
}

// alternatives enumerates every slot of the requested day and returns the
// start times of those that are neither past nor overlapping any confirmed
// reservation, in chronological order.  This is a full re-scan per query by
// design; ordering and inclusion are what matter.
func (e *Engine) alternatives(ctx context.Context, facilityID uint64, requested schedule.Slot) ([]string, error) {
    dayOpen, dayClose := e.grid.DayBounds(requested.Start)
    booked, err := e.store.ConfirmedOverlapping(ctx, facilityID, dayOpen, dayClose)
    if err != nil {
        return nil, err
    }

    now := e.now()
    var free []string
    for _, slot := range e.grid.DaySlots(requested.Start) {
        if e.grid.IsPast(slot, now) {
            continue
        }
        conflict := false
        for _, b := range booked {
            if slot.Overlaps(schedule.Slot{Start: b.StartsAt, End: b.EndsAt}) {
                conflict = true
                break
            }
        }
        if !conflict {
            free = append(free, slot.Start.Format("15:04"))
        }
    }
    return free, nil
}
