// Package notify sends outbound text messages through the WhatsApp
// Business API.  Delivery is best-effort with a bounded timeout; callers
// log failures and move on.
package notify

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"
)

// Sender posts text messages to the Graph API for one business phone
// number.
type Sender struct {
    Token   string
    PhoneID string
    BaseURL string
    client  *http.Client
}

// NewSender builds a Sender.  A zero timeout defaults to ten seconds.
func NewSender(token, phoneID string, timeout time.Duration) *Sender {
    if timeout <= 0 {
        timeout = 10 * time.Second
    }
    return &Sender{
        Token:   token,
        PhoneID: phoneID,
        BaseURL: "https://graph.facebook.com/v20.0",
        client:  &http.Client{Timeout: timeout},
    }
}

type textPayload struct {
    MessagingProduct string `json:"messaging_product"`
    RecipientType    string `json:"recipient_type"`
    To               string `json:"to"`
    Type             string `json:"type"`
    Text             struct {
        PreviewURL bool   `json:"preview_url"`
        Body       string `json:"body"`
    } `json:"text"`
}

// Send delivers a text message to the given phone number.
func (s *Sender) Send(ctx context.Context, to, body string) error {
    if s.Token == "" || s.PhoneID == "" {
        return fmt.Errorf("whatsapp: credentials not configured")
    }

    payload := textPayload{
        MessagingProduct: "whatsapp",
        RecipientType:    "individual",
        To:               to,
        Type:             "text",
    }
    payload.Text.Body = body

    raw, err := json.Marshal(payload)
    if err != nil {
        return err
    }
    url := fmt.Sprintf("%s/%s/messages", s.BaseURL, s.PhoneID)
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
    if err != nil {
        return err
    }
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("Authorization", "Bearer "+s.Token)

    resp, err := s.client.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
        return fmt.Errorf("whatsapp: send failed with status %d: %s", resp.StatusCode, detail)
    }
    return nil
}
