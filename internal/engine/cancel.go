package engine

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/clubrosario/booking-bot/internal/queue"
    "github.com/clubrosario/booking-bot/internal/repository"
)

// FindingKind enumerates the phase-1 disambiguation outcomes.
type FindingKind int

const (
    // FindNone means the session has no future confirmed reservation.
    FindNone FindingKind = iota
    // FindSingle means exactly one candidate; explicit confirmation is
    // required before phase 2.
    FindSingle
    // FindMultiple means several candidates; an explicit selection is
    // required before phase 2.
    FindMultiple
    // FindNoSession means no session identity was supplied.
    FindNoSession
    // FindFailed means the lookup itself failed.
    FindFailed
)

// Finding is the phase-1 result of the cancellation protocol.
type Finding struct {
    Kind       FindingKind
    Candidates []repository.CancellableRow // chronological; len 1 for FindSingle
    Err        ErrorKind
}

// FindCancellable locates the session's future confirmed reservations and
// classifies them for disambiguation.  It never mutates anything;
// cancellation only happens in ConfirmCancel after the caller has obtained
// explicit user confirmation.
func (e *Engine) FindCancellable(ctx context.Context, sessionID string) Finding {
    if sessionID == "" {
        return Finding{Kind: FindNoSession}
    }
    rows, err := e.store.FutureConfirmedBySession(ctx, sessionID, e.now())
    if err != nil {
        return Finding{Kind: FindFailed, Err: ErrorDB}
    }
    switch len(rows) {
    case 0:
        return Finding{Kind: FindNone}
    case 1:
        return Finding{Kind: FindSingle, Candidates: rows}
    default:
        return Finding{Kind: FindMultiple, Candidates: rows}
    }
}

// CancelKind enumerates phase-2 outcomes.
type CancelKind int

const (
    // Cancelled means the reservation was cancelled (and any linked
    // pending overbookings promoted).
    Cancelled CancelKind = iota
    // CancelNotFound means the reservation does not exist, belongs to a
    // different session, already started or is not confirmed.
    CancelNotFound
    // CancelFailed means the transaction failed and was rolled back.
    CancelFailed
)

// CancelResult is the typed outcome of a confirmed cancellation.
type CancelResult struct {
    Kind      CancelKind
    Cancelled repository.CancellableRow
    Promoted  []repository.PromotedRow
    Err       ErrorKind
}

// ConfirmCancel executes phase 2: it validates ownership and state, cancels
// the reservation and promotes every linked pending overbooking in a single
// transaction, then emits one notification event per promoted overbooking.
// Notification publish failures are logged and never roll anything back;
// the committed state change is authoritative.
func (e *Engine) ConfirmCancel(ctx context.Context, reservationID uint64, sessionID string) CancelResult {
    cancelled, promoted, err := e.store.CancelAndPromote(ctx, reservationID, sessionID, e.now())
    if errors.Is(err, repository.ErrReservationNotFound) {
        return CancelResult{Kind: CancelNotFound}
    }
    if err != nil {
        return CancelResult{Kind: CancelFailed, Err: ErrorDB}
    }

    for _, p := range promoted {
        start := p.StartsAt.In(e.grid.Loc)
        ev := queue.OverbookingPromotedEvent{
            ReservationID: p.ID,
            SessionID:     p.SessionID,
            CustomerName:  p.CustomerName,
            FacilityName:  p.FacilityName,
            Date:          start.Format("2006-01-02"),
            Time:          start.Format("15:04"),
            PromotedAt:    e.now().Format(time.RFC3339),
        }
        if e.notifier == nil {
            log.Printf("engine: no notifier configured, dropping promotion event for reservation %d", p.ID)
            continue
        }
        if err := e.notifier.PublishOverbookingPromoted(ctx, ev); err != nil {
            log.Printf("engine: failed to publish promotion event for reservation %d: %v", p.ID, err)
        }
    }

    return CancelResult{Kind: Cancelled, Cancelled: cancelled, Promoted: promoted}
}
