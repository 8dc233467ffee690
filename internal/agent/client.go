// Package agent forwards inbound customer messages to the conversational
// orchestrator service and returns its reply.
package agent

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"

    "github.com/clubrosario/booking-bot/internal/history"
)

// FallbackReply is returned to the customer whenever the orchestrator cannot
// be reached or answers with garbage. The conversation must never go silent.
const FallbackReply = "Lo siento, ha ocurrido un problema técnico. Por favor, inténtalo de nuevo en unos minutos."

// Client talks to the orchestrator over HTTP.
type Client struct {
    // URL is the orchestrator endpoint. Empty disables forwarding and
    // makes Ask return the fallback reply.
    URL string

    client *http.Client
}

// NewClient builds a Client with the given endpoint and request timeout.
func NewClient(url string, timeout time.Duration) *Client {
    if timeout <= 0 {
        timeout = 30 * time.Second
    }
    return &Client{URL: url, client: &http.Client{Timeout: timeout}}
}

type askRequest struct {
    SessionID string        `json:"session_id"`
    Message   string        `json:"message"`
    History   []historyTurn `json:"history,omitempty"`
}

// historyTurn is the wire shape of one prior exchange; timestamps are
// dropped because the orchestrator only consumes role and text.
type historyTurn struct {
    Role    string `json:"role"`
    Content string `json:"content"`
}

type askResponse struct {
    Reply string `json:"reply"`
}

// Ask sends the customer's message to the orchestrator, together with the
// session's recent turns for context, and returns the assistant reply. On
// any failure it returns the fallback reply together with the underlying
// error so callers can log it.
func (c *Client) Ask(ctx context.Context, sessionID, message string, recent []history.Turn) (string, error) {
    if c == nil || c.URL == "" {
        return FallbackReply, fmt.Errorf("agent endpoint not configured")
    }

    payload := askRequest{SessionID: sessionID, Message: message}
    for _, t := range recent {
        payload.History = append(payload.History, historyTurn{Role: t.Role, Content: t.Content})
    }
    body, err := json.Marshal(payload)
    if err != nil {
        return FallbackReply, fmt.Errorf("marshal request: %w", err)
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
    if err != nil {
        return FallbackReply, fmt.Errorf("build request: %w", err)
    }
    req.Header.Set("Content-Type", "application/json")

    resp, err := c.client.Do(req)
    if err != nil {
        return FallbackReply, fmt.Errorf("call orchestrator: %w", err)
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusOK {
        io.Copy(io.Discard, resp.Body)
        return FallbackReply, fmt.Errorf("orchestrator returned status %d", resp.StatusCode)
    }

    var out askResponse
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return FallbackReply, fmt.Errorf("decode response: %w", err)
    }
    if out.Reply == "" {
        return FallbackReply, fmt.Errorf("orchestrator returned empty reply")
    }
    return out.Reply, nil
}
