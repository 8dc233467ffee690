// Package schedule implements the slot arithmetic the booking engine is
// built on: quantizing a day into fixed-duration slots inside operating
// hours, interval overlap and past-slot checks.  Everything is pure and
// anchored to a single time zone so results are deterministic for a given
// date and configuration.
package schedule

import (
    "errors"
    "log"
    "time"
)

// ErrBadFormat is returned by SlotAt when the supplied date or time string
// does not match the expected YYYY-MM-DD / HH:MM layout.
var ErrBadFormat = errors.New("invalid date/time format")

// Slot is a half-open time interval [Start, End) aligned to the operating
// hours grid.
type Slot struct {
    Start time.Time
    End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (s Slot) Overlaps(o Slot) bool {
    return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Grid describes the bookable day: slots of Duration minutes between
// OpenHour and CloseHour, all computed in Loc.
type Grid struct {
    Loc       *time.Location
    OpenHour  int
    CloseHour int
    Duration  time.Duration
}

// LoadGrid builds a Grid for the given IANA zone and operating hours.  When
// the zone database does not know the zone, the grid degrades to UTC and
// logs prominently; slot arithmetic stays available but every computed time
// is shifted by the zone offset, so operators must notice.
func LoadGrid(zone string, openHour, closeHour, slotMinutes int) Grid {
    loc, err := time.LoadLocation(zone)
    if err != nil {
        log.Printf("schedule: WARNING: time zone %q unavailable (%v); falling back to UTC, all slots will be computed in UTC", zone, err)
        loc = time.UTC
    }
    return Grid{
        Loc:       loc,
        OpenHour:  openHour,
        CloseHour: closeHour,
        Duration:  time.Duration(slotMinutes) * time.Minute,
    }
}

// SlotAt parses a YYYY-MM-DD date and HH:MM time into a zone-aware slot of
// the grid's duration.  It does not validate alignment to the grid; a slot
// requested off-grid simply overlaps its neighbours like any other interval.
func (g Grid) SlotAt(dateStr, timeStr string) (Slot, error) {
    start, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, g.Loc)
    if err != nil {
        return Slot{}, ErrBadFormat
    }
    return Slot{Start: start, End: start.Add(g.Duration)}, nil
}

// DaySlots returns every slot of the operating day containing t, in
// chronological order.  A slot is included only when it ends at or before
// the closing hour.  The result is a pure function of the date and the grid.
func (g Grid) DaySlots(t time.Time) []Slot {
    day := t.In(g.Loc)
    open := time.Date(day.Year(), day.Month(), day.Day(), g.OpenHour, 0, 0, 0, g.Loc)
    close := time.Date(day.Year(), day.Month(), day.Day(), g.CloseHour, 0, 0, 0, g.Loc)

    var out []Slot
    for start := open; start.Before(close); start = start.Add(g.Duration) {
        end := start.Add(g.Duration)
        if end.After(close) {
            break
        }
        out = append(out, Slot{Start: start, End: end})
    }
    return out
}

// DayBounds returns the [open, close) interval of the operating day
// containing t, used to scope per-day reservation queries.
func (g Grid) DayBounds(t time.Time) (time.Time, time.Time) {
    day := t.In(g.Loc)
    open := time.Date(day.Year(), day.Month(), day.Day(), g.OpenHour, 0, 0, 0, g.Loc)
    close := time.Date(day.Year(), day.Month(), day.Day(), g.CloseHour, 0, 0, 0, g.Loc)
    return open, close
}

// IsPast reports whether the slot's start precedes now.
func (g Grid) IsPast(s Slot, now time.Time) bool {
    return s.Start.Before(now)
}

// Now returns the current time in the grid's zone.
func (g Grid) Now() time.Time {
    return time.Now().In(g.Loc)
}
