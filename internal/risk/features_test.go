package risk

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/clubrosario/booking-bot/internal/model"
    "github.com/clubrosario/booking-bot/internal/schedule"
)

type fakeHistory struct {
    confirmed, cancelled int
    err                  error
}

func (f fakeHistory) HistoryCounts(context.Context, string) (int, int, error) {
    return f.confirmed, f.cancelled, f.err
}

type fakeWeather struct {
    rain bool
    err  error
}

func (f fakeWeather) RainLikely(context.Context, string) (bool, error) { return f.rain, f.err }

type fakeScorer struct {
    prob float64
    err  error
}

func (f fakeScorer) Score(context.Context, model.FeatureSnapshot) (float64, error) {
    return f.prob, f.err
}

func slotAt(t *testing.T, date, tm string) schedule.Slot {
    t.Helper()
    g := schedule.Grid{Loc: time.UTC, OpenHour: 8, CloseHour: 22, Duration: time.Hour}
    s, err := g.SlotAt(date, tm)
    require.NoError(t, err)
    return s
}

func TestComputeFeaturesFlags(t *testing.T) {
    est := NewEstimator(fakeHistory{confirmed: 5, cancelled: 2}, fakeWeather{rain: true}, nil, []string{"2025-06-09"})
    now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

    cases := []struct {
        name    string
        date    string
        tm      string
        weekend bool
        peak    bool
        holiday bool
    }{
        {"weekday off-peak", "2025-06-03", "10:00", false, false, false}, // Tuesday
        {"weekday peak start", "2025-06-03", "18:00", false, true, false},
        {"saturday", "2025-06-07", "12:00", true, false, false},
        {"sunday peak", "2025-06-08", "20:00", true, true, false},
        {"holiday", "2025-06-09", "10:00", false, false, true},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            f := est.ComputeFeatures(context.Background(), 3, slotAt(t, tc.date, tc.tm), "34600000001", now)
            assert.Equal(t, uint64(3), f.FacilityID)
            assert.Equal(t, 5, f.PriorConfirmed)
            assert.Equal(t, 2, f.PriorCancelled)
            assert.True(t, f.Rain)
            assert.Equal(t, tc.weekend, f.IsWeekend, "weekend")
            assert.Equal(t, tc.peak, f.IsPeakHour, "peak")
            assert.Equal(t, tc.holiday, f.IsHoliday, "holiday")
        })
    }
}

func TestComputeFeaturesLeadTime(t *testing.T) {
    est := NewEstimator(fakeHistory{}, nil, nil, nil)
    now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

    f := est.ComputeFeatures(context.Background(), 1, slotAt(t, "2025-06-04", "10:00"), "s", now)
    assert.Equal(t, 3, f.LeadTimeDays)

    f = est.ComputeFeatures(context.Background(), 1, slotAt(t, "2025-06-01", "10:00"), "s", now)
    assert.Equal(t, 0, f.LeadTimeDays)
}

func TestComputeFeaturesDegradesOnFailures(t *testing.T) {
    est := NewEstimator(
        fakeHistory{confirmed: 9, cancelled: 9, err: errors.New("db down")},
        fakeWeather{rain: true, err: errors.New("api down")},
        nil, nil)
    now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

    f := est.ComputeFeatures(context.Background(), 1, slotAt(t, "2025-06-03", "10:00"), "s", now)
    assert.Zero(t, f.PriorConfirmed)
    assert.Zero(t, f.PriorCancelled)
    assert.False(t, f.Rain)
}

func TestDefaultHolidayCalendar(t *testing.T) {
    est := NewEstimator(fakeHistory{}, nil, nil, nil)
    now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

    f := est.ComputeFeatures(context.Background(), 1, slotAt(t, "2025-05-01", "10:00"), "s", now)
    assert.True(t, f.IsHoliday)
}

func TestPredictFailSafe(t *testing.T) {
    noScorer := NewEstimator(fakeHistory{}, nil, nil, nil)
    assert.Zero(t, noScorer.Predict(context.Background(), model.FeatureSnapshot{}))

    failing := NewEstimator(fakeHistory{}, nil, fakeScorer{prob: 0.9, err: errors.New("timeout")}, nil)
    assert.Zero(t, failing.Predict(context.Background(), model.FeatureSnapshot{}))
}

func TestPredictClampsToUnitInterval(t *testing.T) {
    low := NewEstimator(fakeHistory{}, nil, fakeScorer{prob: -0.3}, nil)
    assert.Equal(t, 0.0, low.Predict(context.Background(), model.FeatureSnapshot{}))

    high := NewEstimator(fakeHistory{}, nil, fakeScorer{prob: 1.7}, nil)
    assert.Equal(t, 1.0, high.Predict(context.Background(), model.FeatureSnapshot{}))

    ok := NewEstimator(fakeHistory{}, nil, fakeScorer{prob: 0.65}, nil)
    assert.Equal(t, 0.65, ok.Predict(context.Background(), model.FeatureSnapshot{}))
}
