package risk

// This file implements the weather lookup feeding the rain feature.  The
// Open-Meteo forecast API is treated as a fallible external collaborator:
// every call carries a bounded timeout and any failure is reported to the
// caller, which degrades the rain flag to false rather than blocking a
// booking.

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "time"
)

// Coordinates of the sports complex (Madrid).
const (
    weatherLat = 40.4168
    weatherLon = -3.7038
)

// rainProbabilityCutoff is the daily precipitation probability (percent)
// above which the day counts as rainy.
const rainProbabilityCutoff = 30

// WeatherClient queries the Open-Meteo daily forecast endpoint.
type WeatherClient struct {
    BaseURL string
    client  *http.Client
}

// NewWeatherClient returns a client with the given request timeout.  A zero
// timeout defaults to five seconds.
func NewWeatherClient(timeout time.Duration) *WeatherClient {
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    return &WeatherClient{
        BaseURL: "https://api.open-meteo.com/v1/forecast",
        client:  &http.Client{Timeout: timeout},
    }
}

// RainLikely reports whether the maximum precipitation probability for the
// given date (YYYY-MM-DD) exceeds the cutoff.
func (w *WeatherClient) RainLikely(ctx context.Context, date string) (bool, error) {
    url := fmt.Sprintf("%s?latitude=%g&longitude=%g&daily=precipitation_probability_max&timezone=Europe%%2FMadrid&start_date=%s&end_date=%s",
        w.BaseURL, weatherLat, weatherLon, date, date)
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil {
        return false, err
    }
    resp, err := w.client.Do(req)
    if err != nil {
        return false, err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return false, fmt.Errorf("weather: unexpected status %d", resp.StatusCode)
    }

    var body struct {
        Daily struct {
            PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
        } `json:"daily"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
        return false, err
    }
    if len(body.Daily.PrecipitationProbabilityMax) == 0 {
        return false, fmt.Errorf("weather: empty forecast for %s", date)
    }
    return body.Daily.PrecipitationProbabilityMax[0] > rainProbabilityCutoff, nil
}
