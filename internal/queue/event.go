// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into customer notifications.
package queue

// OverbookingPromotedEvent is published when a cancellation promotes a
// pending overbooking to a confirmed reservation.  It carries everything
// the notification consumer needs to message the overbooking's customer
// without querying the primary database.
type OverbookingPromotedEvent struct {
    ReservationID uint64 `json:"reservation_id"`
    SessionID     string `json:"session_id"` // recipient phone number
    CustomerName  string `json:"customer_name"`
    FacilityName  string `json:"facility_name"`
    Date          string `json:"date"` // YYYY-MM-DD in the booking time zone
    Time          string `json:"time"` // HH:MM in the booking time zone
    PromotedAt    string `json:"promoted_at"`
}
