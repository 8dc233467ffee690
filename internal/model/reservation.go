package model

import "time"

// Reservation status values as stored in the database.  The Spanish
// spellings are kept for compatibility with the production schema and the
// token protocol consumed by the orchestration layer.
const (
    StatusConfirmed = "Confirmada"
    StatusPending   = "Pendiente"
    StatusCancelled = "Cancelada"
)

// Reservation records a customer's claim on a facility slot.  A Confirmed
// reservation holds the slot exclusively among confirmed reservations; a
// Pendiente row is an overbooking that only becomes Confirmed when the
// reservation it links to via OriginalID is cancelled.
//
// Fields:
//  ID          – primary key identifier.
//  FacilityID  – facility being reserved.
//  CustomerName – name given by the customer at booking time.
//  SessionID   – stable identity of the booking channel (phone number).
//  StartsAt    – slot start, zone-aware.
//  EndsAt      – slot end (half-open interval).
//  CreatedAt   – creation timestamp.
//  Status      – Confirmada, Pendiente or Cancelada.
//  IsOverbooking – true when the row was created as an overbooking.
//  OriginalID  – the Confirmed reservation this overbooking stacks on.
//  CancelProb  – model-estimated cancellation probability at creation time.
//  Features    – immutable feature snapshot persisted for audit/retraining.
type Reservation struct {
    ID            uint64          // reservations.id
    FacilityID    uint64          // reservations.facility_id
    CustomerName  string          // reservations.customer_name
    SessionID     string          // reservations.phone
    StartsAt      time.Time       // reservations.starts_at
    EndsAt        time.Time       // reservations.ends_at
    CreatedAt     time.Time       // reservations.created_at
    Status        string          // reservations.status
    IsOverbooking bool            // reservations.is_overbooking
    OriginalID    *uint64         // reservations.original_reservation_id (nullable)
    CancelProb    float64         // reservations.cancel_probability
    Features      FeatureSnapshot // flattened into the reservations row
}

// FeatureSnapshot captures the booking-context features handed to the
// cancellation predictor.  It is computed once when the reservation is
// created and never recomputed afterwards.
type FeatureSnapshot struct {
    FacilityID     uint64 // facility being booked
    LeadTimeDays   int    // whole days between booking time and slot start
    PriorConfirmed int    // the session's prior confirmed reservations
    PriorCancelled int    // the session's prior cancelled reservations
    IsWeekend      bool   // slot starts on Saturday or Sunday
    IsPeakHour     bool   // slot starts between 18:00 and 22:00
    IsHoliday      bool   // slot date is in the configured holiday list
    Rain           bool   // rain likely on the slot date per weather lookup
}
