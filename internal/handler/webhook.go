package handler

import (
    "context"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/clubrosario/booking-bot/internal/agent"
    "github.com/clubrosario/booking-bot/internal/history"
    "github.com/clubrosario/booking-bot/internal/notify"
)

// WebhookHandler receives WhatsApp webhook callbacks: the one-time
// subscription verification handshake and the per-message POSTs. Inbound
// texts are deduplicated, recorded in the conversation history, forwarded to
// the orchestrator, and the reply is sent back to the customer.
type WebhookHandler struct {
    verifyToken string
    rdb         *redis.Client
    hist        *history.Store
    agent       *agent.Client
    sender      *notify.Sender
}

// NewWebhookHandler wires the webhook dependencies.
func NewWebhookHandler(verifyToken string, rdb *redis.Client, hist *history.Store, ag *agent.Client, sender *notify.Sender) *WebhookHandler {
    return &WebhookHandler{verifyToken: verifyToken, rdb: rdb, hist: hist, agent: ag, sender: sender}
}

// Verify handles Meta's subscription handshake: it echoes hub.challenge when
// hub.mode is "subscribe" and hub.verify_token matches ours.
//
// GET /webhook
func (h *WebhookHandler) Verify(c echo.Context) error {
    mode := c.QueryParam("hub.mode")
    token := c.QueryParam("hub.verify_token")
    challenge := c.QueryParam("hub.challenge")

    if mode == "subscribe" && token == h.verifyToken {
        return c.String(http.StatusOK, challenge)
    }
    return c.String(http.StatusForbidden, "verification failed")
}

// webhookPayload mirrors the fields of the WhatsApp Business webhook body we
// care about; everything else is ignored.
type webhookPayload struct {
    Entry []struct {
        Changes []struct {
            Value struct {
                Messages []inboundMessage `json:"messages"`
            } `json:"value"`
        } `json:"changes"`
    } `json:"entry"`
}

type inboundMessage struct {
    ID   string `json:"id"`
    From string `json:"from"`
    Type string `json:"type"`
    Text struct {
        Body string `json:"body"`
    } `json:"text"`
}

// Receive accepts message notifications. It always answers 200 quickly --
// Meta retries on anything else -- and processes each text message in the
// background.
//
// POST /webhook
func (h *WebhookHandler) Receive(c echo.Context) error {
    var payload webhookPayload
    if err := c.Bind(&payload); err != nil {
        // Malformed bodies still get a 200 so Meta does not retry them.
        return c.NoContent(http.StatusOK)
    }

    for _, entry := range payload.Entry {
        for _, change := range entry.Changes {
            for _, msg := range change.Value.Messages {
                if msg.Type != "text" || msg.From == "" {
                    continue
                }
                go h.process(msg)
            }
        }
    }
    return c.NoContent(http.StatusOK)
}

// process handles one inbound text end to end. Meta redelivers webhooks, so
// the message ID is claimed in Redis first; a duplicate is dropped silently.
func (h *WebhookHandler) process(msg inboundMessage) {
    ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
    defer cancel()

    if !h.claim(ctx, msg.ID) {
        return
    }

    // Recent turns are read before appending the current message so the
    // orchestrator sees prior context and the message itself exactly once.
    recent, err := h.hist.Recent(ctx, msg.From)
    if err != nil {
        log.Printf("webhook: read history for %s: %v", msg.From, err)
    }

    if err := h.hist.Append(ctx, msg.From, history.Turn{Role: "user", Content: msg.Text.Body}); err != nil {
        log.Printf("webhook: append user turn for %s: %v", msg.From, err)
    }

    reply, err := h.agent.Ask(ctx, msg.From, msg.Text.Body, recent)
    if err != nil {
        log.Printf("webhook: orchestrator call for %s failed: %v", msg.From, err)
    }

    if err := h.hist.Append(ctx, msg.From, history.Turn{Role: "assistant", Content: reply}); err != nil {
        log.Printf("webhook: append assistant turn for %s: %v", msg.From, err)
    }

    if err := h.sender.Send(ctx, msg.From, reply); err != nil {
        log.Printf("webhook: reply to %s failed: %v", msg.From, err)
    }
}

// claim marks the message ID as seen and reports whether this delivery is
// the first one. Without Redis every delivery counts as first.
func (h *WebhookHandler) claim(ctx context.Context, messageID string) bool {
    if h.rdb == nil || messageID == "" {
        return true
    }
    ok, err := h.rdb.SetNX(ctx, "wamid:"+messageID, 1, 24*time.Hour).Result()
    if err != nil {
        log.Printf("webhook: dedup check for %s failed: %v", messageID, err)
        return true // fail open rather than dropping customer messages
    }
    return ok
}
