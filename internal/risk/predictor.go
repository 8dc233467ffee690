package risk

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "time"

    "github.com/clubrosario/booking-bot/internal/model"
)

// Scorer is the external cancellation-probability model.  The engine never
// talks to it directly; Estimator.Predict wraps every call with the
// fail-safe fallback.
type Scorer interface {
    Score(ctx context.Context, f model.FeatureSnapshot) (float64, error)
}

// HTTPScorer calls a scoring service that wraps the trained model.  The
// request body carries the feature snapshot in the column order the model
// was trained with; the response is {"probability": <float>}.
type HTTPScorer struct {
    URL    string
    client *http.Client
}

// NewHTTPScorer returns a scorer bound to the given endpoint.  A zero
// timeout defaults to three seconds so a slow model can never stall the
// booking flow.
func NewHTTPScorer(url string, timeout time.Duration) *HTTPScorer {
    if timeout <= 0 {
        timeout = 3 * time.Second
    }
    return &HTTPScorer{URL: url, client: &http.Client{Timeout: timeout}}
}

type scoreRequest struct {
    FacilityID     uint64 `json:"facility_id"`
    Rain           bool   `json:"rain"`
    LeadTimeDays   int    `json:"lead_time_days"`
    PriorConfirmed int    `json:"prior_confirmed"`
    PriorCancelled int    `json:"prior_cancelled"`
    IsWeekend      bool   `json:"is_weekend"`
    IsPeakHour     bool   `json:"is_peak_hour"`
    IsHoliday      bool   `json:"is_holiday"`
}

// Score posts the features and returns the predicted cancellation
// probability.
func (s *HTTPScorer) Score(ctx context.Context, f model.FeatureSnapshot) (float64, error) {
    body, err := json.Marshal(scoreRequest{
        FacilityID:     f.FacilityID,
        Rain:           f.Rain,
        LeadTimeDays:   f.LeadTimeDays,
        PriorConfirmed: f.PriorConfirmed,
        PriorCancelled: f.PriorCancelled,
        IsWeekend:      f.IsWeekend,
        IsPeakHour:     f.IsPeakHour,
        IsHoliday:      f.IsHoliday,
    })
    if err != nil {
        return 0, err
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
    if err != nil {
        return 0, err
    }
    req.Header.Set("Content-Type", "application/json")
    resp, err := s.client.Do(req)
    if err != nil {
        return 0, err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return 0, fmt.Errorf("predictor: unexpected status %d", resp.StatusCode)
    }
    var out struct {
        Probability float64 `json:"probability"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return 0, err
    }
    return out.Probability, nil
}
