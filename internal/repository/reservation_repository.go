package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/clubrosario/booking-bot/internal/model"
)

// ReservationRepo provides persistence for reservations.  The no-double-
// booking invariant is enforced here, not in the engine: confirmed inserts
// are guarded INSERT ... SELECT statements that only write when no
// conflicting confirmed reservation exists, so a lost race surfaces as
// ErrConflict instead of a corrupt schedule.  All timestamps are stored
// in UTC and converted back to the engine's zone by callers.
type ReservationRepo struct {
    db         *sql.DB
    maxPending int // pending overbookings allowed per confirmed reservation
}

// NewReservationRepo returns a new ReservationRepo bound to the given
// database.  maxPending caps how many pending overbookings may stack on one
// confirmed reservation; values below one are raised to one.
func NewReservationRepo(db *sql.DB, maxPending int) *ReservationRepo {
    if maxPending < 1 {
        maxPending = 1
    }
    return &ReservationRepo{db: db, maxPending: maxPending}
}

// Blocking describes the single confirmed reservation occupying a requested
// slot, together with the cancellation probability stored when it was
// created.  The overbooking threshold is applied by the caller.
type Blocking struct {
    ID         uint64
    CancelProb float64
}

// FindBlocking returns the confirmed reservation overlapping [start, end)
// for the facility, or nil when the slot is free.  By invariant at most one
// confirmed reservation can overlap the interval.
func (r *ReservationRepo) FindBlocking(ctx context.Context, facilityID uint64, start, end time.Time) (*Blocking, error) {
    const q = `SELECT id, cancel_probability
               FROM reservations
               WHERE facility_id = ? AND status = ?
                 AND starts_at < ? AND ends_at > ?
               LIMIT 1`
    var b Blocking
    err := r.db.QueryRowContext(ctx, q, facilityID, model.StatusConfirmed, end, start).Scan(&b.ID, &b.CancelProb)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &b, nil
}

// ConfirmedOverlapping returns every confirmed reservation interval that
// intersects the [from, to) window for the facility, ordered by start time.
// The availability resolver uses this to discard occupied slots when
// enumerating alternatives for a day.
func (r *ReservationRepo) ConfirmedOverlapping(ctx context.Context, facilityID uint64, from, to time.Time) ([]model.Reservation, error) {
    const q = `SELECT id, starts_at, ends_at
               FROM reservations
               WHERE facility_id = ? AND status = ?
                 AND starts_at < ? AND ends_at > ?
               ORDER BY starts_at`
    rows, err := r.db.QueryContext(ctx, q, facilityID, model.StatusConfirmed, to, from)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.Reservation
    for rows.Next() {
        var res model.Reservation
        if err := rows.Scan(&res.ID, &res.StartsAt, &res.EndsAt); err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// HistoryCounts returns the number of confirmed and cancelled reservations
// recorded for a session identity.  The risk estimator feeds these into the
// cancellation predictor.
func (r *ReservationRepo) HistoryCounts(ctx context.Context, sessionID string) (confirmed, cancelled int, err error) {
    const q = `SELECT COUNT(*) FROM reservations WHERE phone = ? AND status = ?`
    if err = r.db.QueryRowContext(ctx, q, sessionID, model.StatusConfirmed).Scan(&confirmed); err != nil {
        return 0, 0, err
    }
    if err = r.db.QueryRowContext(ctx, q, sessionID, model.StatusCancelled).Scan(&cancelled); err != nil {
        return 0, 0, err
    }
    return confirmed, cancelled, nil
}

const insertColumns = `facility_id, customer_name, phone, starts_at, ends_at, status,
	is_overbooking, original_reservation_id, cancel_probability,
	rain, lead_time_days, prior_confirmed, prior_cancelled,
	is_weekend, is_peak_hour, is_holiday`

// CreateConfirmed inserts a confirmed reservation, guarded so that the row
// is only written when no confirmed reservation overlaps the slot.  The
// guard and the insert execute as one statement, so concurrent attempts on
// the same slot serialize at the storage layer; the loser observes zero
// affected rows and receives ErrConflict.  On success the generated ID and
// creation timestamp are populated on res.
func (r *ReservationRepo) CreateConfirmed(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservations (` + insertColumns + `)
               SELECT ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?, ?, ?, ?, ?, ?, ?
               FROM DUAL
               WHERE NOT EXISTS (
                   SELECT 1 FROM reservations
                   WHERE facility_id = ? AND status = ?
                     AND starts_at < ? AND ends_at > ?
               )`
    result, err := r.db.ExecContext(ctx, q,
        res.FacilityID, res.CustomerName, res.SessionID, res.StartsAt, res.EndsAt, model.StatusConfirmed,
        res.CancelProb,
        res.Features.Rain, res.Features.LeadTimeDays, res.Features.PriorConfirmed, res.Features.PriorCancelled,
        res.Features.IsWeekend, res.Features.IsPeakHour, res.Features.IsHoliday,
        res.FacilityID, model.StatusConfirmed, res.EndsAt, res.StartsAt,
    )
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrConflict
    }
    return r.populateInserted(ctx, result, res)
}

// CreateOverbooking inserts a pending overbooking linked to the blocking
// confirmed reservation.  The guard requires the original to still be
// confirmed and bounds stacking: fewer than maxPending pending overbookings
// may already reference the original.  A failed guard returns ErrConflict.
func (r *ReservationRepo) CreateOverbooking(ctx context.Context, res *model.Reservation, originalID uint64) error {
    const q = `INSERT INTO reservations (` + insertColumns + `)
               SELECT ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?
               FROM DUAL
               WHERE EXISTS (
                   SELECT 1 FROM reservations WHERE id = ? AND status = ?
               )
               AND (
                   SELECT COUNT(*) FROM reservations
                   WHERE original_reservation_id = ? AND status = ? AND is_overbooking = 1
               ) < ?`
    result, err := r.db.ExecContext(ctx, q,
        res.FacilityID, res.CustomerName, res.SessionID, res.StartsAt, res.EndsAt, model.StatusPending,
        originalID, res.CancelProb,
        res.Features.Rain, res.Features.LeadTimeDays, res.Features.PriorConfirmed, res.Features.PriorCancelled,
        res.Features.IsWeekend, res.Features.IsPeakHour, res.Features.IsHoliday,
        originalID, model.StatusConfirmed,
        originalID, model.StatusPending, r.maxPending,
    )
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrConflict
    }
    if err := r.populateInserted(ctx, result, res); err != nil {
        return err
    }
    res.IsOverbooking = true
    res.OriginalID = &originalID
    return nil
}

// populateInserted queries back the generated id and creation timestamp so
// callers receive a fully populated record.
func (r *ReservationRepo) populateInserted(ctx context.Context, result sql.Result, res *model.Reservation) error {
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)
    const sel = `SELECT status, created_at FROM reservations WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, res.ID).Scan(&res.Status, &res.CreatedAt)
}

// CancellableRow is a future confirmed reservation of a session, joined
// with the facility name for presentation.
type CancellableRow struct {
    ID           uint64
    FacilityName string
    StartsAt     time.Time
}

// FutureConfirmedBySession returns the session's confirmed reservations
// with a start after now, in chronological order.  The cancellation engine
// uses the result for disambiguation.
func (r *ReservationRepo) FutureConfirmedBySession(ctx context.Context, sessionID string, now time.Time) ([]CancellableRow, error) {
    const q = `SELECT r.id, f.name, r.starts_at
               FROM reservations r
               JOIN facilities f ON f.id = r.facility_id
               WHERE r.phone = ? AND r.status = ? AND r.starts_at > ?
               ORDER BY r.starts_at`
    rows, err := r.db.QueryContext(ctx, q, sessionID, model.StatusConfirmed, now)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []CancellableRow
    for rows.Next() {
        var c CancellableRow
        if err := rows.Scan(&c.ID, &c.FacilityName, &c.StartsAt); err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// PromotedRow describes an overbooking promoted to confirmed by a
// cancellation, with everything the notification needs.
type PromotedRow struct {
    ID           uint64
    CustomerName string
    SessionID    string
    FacilityName string
    StartsAt     time.Time
}

// CancelAndPromote cancels a confirmed future reservation owned by the
// session and, in the same transaction, promotes every pending overbooking
// linked to it.  The cancel and the promotions are all-or-nothing; a
// failure rolls back everything, leaving the original confirmed and the
// overbookings pending.  It returns the cancelled reservation's details and
// the promoted rows for post-commit notification.  ErrReservationNotFound
// is returned when the reservation does not exist, belongs to a different
// session, already started or is not confirmed.
func (r *ReservationRepo) CancelAndPromote(ctx context.Context, reservationID uint64, sessionID string, now time.Time) (CancellableRow, []PromotedRow, error) {
    var cancelled CancellableRow

    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return cancelled, nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Lock the target row while validating ownership and state.
    const qCheck = `SELECT r.id, f.name, r.starts_at
                    FROM reservations r
                    JOIN facilities f ON f.id = r.facility_id
                    WHERE r.id = ? AND r.phone = ? AND r.status = ? AND r.starts_at > ?
                    FOR UPDATE`
    err = tx.QueryRowContext(ctx, qCheck, reservationID, sessionID, model.StatusConfirmed, now).
        Scan(&cancelled.ID, &cancelled.FacilityName, &cancelled.StartsAt)
    if errors.Is(err, sql.ErrNoRows) {
        return cancelled, nil, ErrReservationNotFound
    }
    if err != nil {
        return cancelled, nil, err
    }

    // Collect pending overbookings linked to this reservation before
    // flipping any state, so the notification payloads are complete.
    const qPending = `SELECT r.id, r.customer_name, r.phone, f.name, r.starts_at
                      FROM reservations r
                      JOIN facilities f ON f.id = r.facility_id
                      WHERE r.original_reservation_id = ? AND r.status = ? AND r.is_overbooking = 1
                      ORDER BY r.id
                      FOR UPDATE`
    rows, err := tx.QueryContext(ctx, qPending, reservationID, model.StatusPending)
    if err != nil {
        return cancelled, nil, err
    }
    var promoted []PromotedRow
    for rows.Next() {
        var p PromotedRow
        if err := rows.Scan(&p.ID, &p.CustomerName, &p.SessionID, &p.FacilityName, &p.StartsAt); err != nil {
            rows.Close()
            return cancelled, nil, err
        }
        promoted = append(promoted, p)
    }
    if err := rows.Err(); err != nil {
        rows.Close()
        return cancelled, nil, err
    }
    // Drain before issuing further statements on the same transaction.
    rows.Close()

    const qCancel = `UPDATE reservations SET status = ? WHERE id = ?`
    if _, err := tx.ExecContext(ctx, qCancel, model.StatusCancelled, reservationID); err != nil {
        return cancelled, nil, err
    }

    if len(promoted) > 0 {
        const qPromote = `UPDATE reservations SET status = ?
                          WHERE original_reservation_id = ? AND status = ? AND is_overbooking = 1`
        if _, err := tx.ExecContext(ctx, qPromote, model.StatusConfirmed, reservationID, model.StatusPending); err != nil {
            return cancelled, nil, err
        }
    }

    if err := tx.Commit(); err != nil {
        return cancelled, nil, err
    }
    committed = true
    return cancelled, promoted, nil
}
