package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/clubrosario/booking-bot/internal/engine"
    "github.com/clubrosario/booking-bot/internal/registry"
)

// ToolHandler exposes the booking engine's operations to the conversational
// orchestrator. Every endpoint answers text/plain in the legacy token
// protocol the orchestrator's prompts were written against, so responses are
// fed to the language model verbatim.
type ToolHandler struct {
    engine     *engine.Engine
    facilities *registry.Registry
}

// NewToolHandler wires the engine and facility registry into a handler.
func NewToolHandler(e *engine.Engine, reg *registry.Registry) *ToolHandler {
    return &ToolHandler{engine: e, facilities: reg}
}

// ListFacilities returns the facility names the club offers, comma separated.
// An optional ?filter= narrows the list by substring match.
//
// GET /v1/tools/facilities
func (h *ToolHandler) ListFacilities(c echo.Context) error {
    names, err := h.facilities.List(c.Request().Context(), c.QueryParam("filter"))
    if err != nil {
        return c.String(http.StatusOK, "ERROR: Problema tecnico DB")
    }
    if len(names) == 0 {
        return c.String(http.StatusOK, "ninguna encontrada")
    }
    return c.String(http.StatusOK, strings.Join(names, ", "))
}

// CheckAvailability reports whether a slot is free, occupied, or invalid.
//
// GET /v1/tools/availability?facility=...&date=YYYY-MM-DD&time=HH:MM
func (h *ToolHandler) CheckAvailability(c echo.Context) error {
    av := h.engine.CheckAvailability(c.Request().Context(),
        c.QueryParam("facility"), c.QueryParam("date"), c.QueryParam("time"))
    return c.String(http.StatusOK, engine.FormatAvailability(av))
}

// reserveRequest is the JSON body for creating a reservation.
type reserveRequest struct {
    Facility     string `json:"facility"`
    Date         string `json:"date"`
    Time         string `json:"time"`
    CustomerName string `json:"customer_name"`
    SessionID    string `json:"session_id"`
}

// CreateReservation attempts to book the requested slot, falling back to a
// pending overbooking when the slot is taken but likely to free up.
//
// POST /v1/tools/reservations
func (h *ToolHandler) CreateReservation(c echo.Context) error {
    var req reserveRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    res := h.engine.Reserve(c.Request().Context(),
        req.Facility, req.Date, req.Time, req.CustomerName, req.SessionID)
    return c.String(http.StatusOK, engine.FormatReserve(res))
}

// findCancellableRequest is the JSON body for starting a cancellation.
type findCancellableRequest struct {
    SessionID string `json:"session_id"`
}

// FindCancellable lists the caller's upcoming confirmed reservations so the
// orchestrator can ask which one to cancel, or request confirmation directly
// when there is exactly one.
//
// POST /v1/tools/cancellations/find
func (h *ToolHandler) FindCancellable(c echo.Context) error {
    var req findCancellableRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    f := h.engine.FindCancellable(c.Request().Context(), req.SessionID)
    return c.String(http.StatusOK, h.engine.FormatFinding(f))
}

// confirmCancelRequest is the JSON body for confirming a cancellation.
type confirmCancelRequest struct {
    ReservationID uint64 `json:"reservation_id"`
    SessionID     string `json:"session_id"`
}

// ConfirmCancel cancels the named reservation after the customer confirmed,
// promoting any pending overbooking on the freed slot.
//
// POST /v1/tools/cancellations/confirm
func (h *ToolHandler) ConfirmCancel(c echo.Context) error {
    var req confirmCancelRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    r := h.engine.ConfirmCancel(c.Request().Context(), req.ReservationID, req.SessionID)
    return c.String(http.StatusOK, h.engine.FormatCancel(r))
}
