// Package risk gathers the booking-context features fed to the external
// cancellation-probability model and wraps the model call itself.  Both
// collaborators (weather lookup, scoring service) are fallible externals:
// failures degrade to safe defaults and never abort a reservation.
package risk

import (
    "context"
    "log"
    "time"

    "github.com/clubrosario/booking-bot/internal/model"
    "github.com/clubrosario/booking-bot/internal/schedule"
)

// Peak hours: slots starting between 18:00 and 22:00 inclusive.
const (
    peakStartHour = 18
    peakEndHour   = 22
)

// defaultHolidays is the Madrid public holiday calendar used when no
// HOLIDAYS list is configured.
var defaultHolidays = []string{
    "2024-12-25",
    "2025-01-01",
    "2025-01-06",
    "2025-04-17",
    "2025-04-18",
    "2025-05-01",
    "2025-05-02",
    "2025-05-15",
    "2025-07-25",
    "2025-08-15",
    "2025-11-01",
    "2025-11-10",
    "2025-12-06",
    "2025-12-08",
    "2025-12-25",
}

// History supplies a session's prior booking counts.  Implemented by the
// reservation repository.
type History interface {
    HistoryCounts(ctx context.Context, sessionID string) (confirmed, cancelled int, err error)
}

// Weather reports whether rain is likely on a date.  Implemented by
// WeatherClient.
type Weather interface {
    RainLikely(ctx context.Context, date string) (bool, error)
}

// Estimator assembles feature snapshots and scores them.  A nil scorer
// disables the model entirely, which means no overbooking is ever offered.
type Estimator struct {
    history  History
    weather  Weather
    scorer   Scorer
    holidays map[string]struct{}
}

// NewEstimator builds an Estimator.  An empty holidays list selects the
// built-in Madrid calendar.
func NewEstimator(history History, weather Weather, scorer Scorer, holidays []string) *Estimator {
    if len(holidays) == 0 {
        holidays = defaultHolidays
    }
    set := make(map[string]struct{}, len(holidays))
    for _, d := range holidays {
        set[d] = struct{}{}
    }
    return &Estimator{history: history, weather: weather, scorer: scorer, holidays: set}
}

// ComputeFeatures builds the immutable snapshot persisted with every
// reservation.  History and weather failures degrade to zero counts and a
// false rain flag; the snapshot is always produced.
func (e *Estimator) ComputeFeatures(ctx context.Context, facilityID uint64, slot schedule.Slot, sessionID string, now time.Time) model.FeatureSnapshot {
    confirmed, cancelled, err := e.history.HistoryCounts(ctx, sessionID)
    if err != nil {
        log.Printf("risk: history lookup failed for session, using zero counts: %v", err)
        confirmed, cancelled = 0, 0
    }

    date := slot.Start.Format("2006-01-02")
    rain := false
    if e.weather != nil {
        if r, err := e.weather.RainLikely(ctx, date); err != nil {
            log.Printf("risk: weather lookup failed for %s, assuming no rain: %v", date, err)
        } else {
            rain = r
        }
    }

    wd := slot.Start.Weekday()
    hour := slot.Start.Hour()
    _, holiday := e.holidays[date]

    return model.FeatureSnapshot{
        FacilityID:     facilityID,
        LeadTimeDays:   int(slot.Start.Sub(now).Hours() / 24),
        PriorConfirmed: confirmed,
        PriorCancelled: cancelled,
        IsWeekend:      wd == time.Saturday || wd == time.Sunday,
        IsPeakHour:     hour >= peakStartHour && hour <= peakEndHour,
        IsHoliday:      holiday,
        Rain:           rain,
    }
}

// Predict returns the model's cancellation probability for the snapshot,
// clamped to [0, 1].  Any scorer failure returns 0.0 so a broken model can
// only suppress overbooking, never block a booking or grant one wrongly.
func (e *Estimator) Predict(ctx context.Context, f model.FeatureSnapshot) float64 {
    if e.scorer == nil {
        return 0.0
    }
    p, err := e.scorer.Score(ctx, f)
    if err != nil {
        log.Printf("risk: prediction failed, using 0.0: %v", err)
        return 0.0
    }
    if p < 0 {
        return 0.0
    }
    if p > 1 {
        return 1.0
    }
    return p
}
