package notify

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestSendPostsToPhoneEndpoint(t *testing.T) {
    var got struct {
        path string
        auth string
        body map[string]any
    }
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        got.path = r.URL.Path
        got.auth = r.Header.Get("Authorization")
        require.NoError(t, json.NewDecoder(r.Body).Decode(&got.body))
        w.WriteHeader(http.StatusOK)
    }))
    defer srv.Close()

    s := NewSender("tok123", "555001", time.Second)
    s.BaseURL = srv.URL

    err := s.Send(context.Background(), "34600000001", "hola")
    require.NoError(t, err)

    assert.Equal(t, "/555001/messages", got.path)
    assert.Equal(t, "Bearer tok123", got.auth)
    assert.Equal(t, "whatsapp", got.body["messaging_product"])
    assert.Equal(t, "34600000001", got.body["to"])
    text, ok := got.body["text"].(map[string]any)
    require.True(t, ok)
    assert.Equal(t, "hola", text["body"])
}

func TestSendRejectsMissingCredentials(t *testing.T) {
    s := NewSender("", "", time.Second)
    assert.Error(t, s.Send(context.Background(), "34600000001", "hola"))
}

func TestSendSurfacesAPIError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
        http.Error(w, `{"error":{"message":"bad token"}}`, http.StatusUnauthorized)
    }))
    defer srv.Close()

    s := NewSender("tok", "555001", time.Second)
    s.BaseURL = srv.URL

    err := s.Send(context.Background(), "34600000001", "hola")
    require.Error(t, err)
    assert.Contains(t, err.Error(), "401")
}
