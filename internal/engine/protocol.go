package engine

// protocol.go serializes typed engine results into the legacy token strings
// the orchestration layer parses.  The tokens are a stable wire contract
// and must be reproduced byte for byte; all internal logic stays typed and
// only this file knows the strings.

import (
    "fmt"
    "strings"
)

// FormatAvailability renders an availability outcome as an ESTADO/ERROR
// token.
func FormatAvailability(av Availability) string {
    switch av.Kind {
    case Available:
        return "ESTADO: Disponible"

    case Occupied:
        if av.OverbookingEligible {
            pct := int(av.CancelProb * 100)
            if len(av.Alternatives) > 0 {
                return fmt.Sprintf("ESTADO: Ocupado | Overbooking Posible: %d%% | Alternativas: %s", pct, strings.Join(av.Alternatives, ", "))
            }
            return fmt.Sprintf("ESTADO: Ocupado | Overbooking Posible: %d%% | Sin Alternativas", pct)
        }
        if len(av.Alternatives) > 0 {
            return fmt.Sprintf("ESTADO: Ocupado | Alternativas: %s", strings.Join(av.Alternatives, ", "))
        }
        return "ESTADO: Ocupado | Sin Alternativas"

    case InvalidPast:
        return "ERROR: Fecha pasada"

    case BadFormat:
        return "ERROR: Formato invalido"

    case InvalidFacility:
        options := "ninguna encontrada"
        if len(av.Options) > 0 {
            options = strings.Join(av.Options, ", ")
        }
        return fmt.Sprintf("ERROR: Instalacion no valida | Opciones: %s", options)

    default:
        return "ERROR: " + errorReason(av.Err)
    }
}

// FormatReserve renders a reservation result as a RESERVA_OK /
// OVERBOOKING_OK / ERROR token.
func FormatReserve(r ReserveResult) string {
    switch r.Kind {
    case ReserveConfirmed:
        return fmt.Sprintf("RESERVA_OK: Reserva %d confirmada para %s.", r.ID, r.CustomerName)

    case ReservePendingOverbooking:
        return fmt.Sprintf("OVERBOOKING_OK: Overbooking %d creado para %s. Se confirmará si la reserva original se cancela.", r.ID, r.CustomerName)

    case ReserveNoSession:
        return "ERROR: Reserva Fallida - Se requiere un número de teléfono válido para realizar la reserva."

    case ReserveRejected:
        return "ERROR: Reserva Fallida - " + FormatAvailability(r.Check)

    default:
        return "ERROR: " + errorReason(r.Err) + " al reservar"
    }
}

// FormatFinding renders the phase-1 disambiguation outcome.
func (e *Engine) FormatFinding(f Finding) string {
    switch f.Kind {
    case FindNone:
        return "SIN_RESERVAS_ACTIVAS: No encontré reservas futuras activas asociadas a tu número de teléfono."

    case FindSingle:
        c := f.Candidates[0]
        start := c.StartsAt.In(e.grid.Loc)
        return fmt.Sprintf("CONFIRMACION_NECESARIA: ID=%d, Detalles: %s el %s a las %s. ¿Confirmas que deseas cancelarla (responde 'Sí, cancelar reserva %d' o 'No')?",
            c.ID, c.FacilityName, start.Format("2006-01-02"), start.Format("15:04"), c.ID)

    case FindMultiple:
        var items []string
        for i, c := range f.Candidates {
            start := c.StartsAt.In(e.grid.Loc)
            items = append(items, fmt.Sprintf("%d. ID %d para %s el %s a las %s",
                i+1, c.ID, c.FacilityName, start.Format("2006-01-02"), start.Format("15:04")))
        }
        return fmt.Sprintf("MULTIPLES_RESERVAS: Encontré estas reservas asociadas a ti: %s Por favor, dime el ID de la reserva que quieres cancelar.",
            strings.Join(items, " "))

    case FindNoSession:
        return "ERROR_CANCELACION: No se pudo buscar las reservas. Falta el identificador de sesión."

    default:
        return "ERROR_CANCELACION: No se pudo buscar las reservas. Motivo: Error técnico en la base de datos."
    }
}

// FormatCancel renders the phase-2 outcome.
func (e *Engine) FormatCancel(r CancelResult) string {
    switch r.Kind {
    case Cancelled:
        start := r.Cancelled.StartsAt.In(e.grid.Loc)
        return fmt.Sprintf("RESERVA_CANCELADA: La reserva con ID %d para %s el %s a las %s ha sido cancelada exitosamente.",
            r.Cancelled.ID, r.Cancelled.FacilityName, start.Format("2006-01-02"), start.Format("15:04"))

    case CancelNotFound:
        return "ERROR_CANCELACION: No se pudo cancelar la reserva. Motivo: La reserva no existe, no pertenece a tu número, ya ha pasado o ya está cancelada."

    default:
        return "ERROR_CANCELACION: No se pudo cancelar la reserva. Motivo: Error técnico en la base de datos."
    }
}

// errorReason maps infrastructure error kinds to the legacy reason tokens.
func errorReason(k ErrorKind) string {
    if k == ErrorDB {
        return "Problema tecnico DB"
    }
    return "Inesperado"
}
