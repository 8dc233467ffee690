// Package history stores recent conversation turns per session in Redis so
// the orchestrator can be given context across messages. The store degrades
// gracefully when Redis is not configured: all operations become no-ops.
package history

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/redis/go-redis/v9"
)

// Turn is a single exchange in a conversation.
type Turn struct {
    Role    string    `json:"role"` // "user" or "assistant"
    Content string    `json:"content"`
    At      time.Time `json:"at"`
}

// Store keeps a bounded list of turns per session under key
// "history:<session>". A nil client disables the store.
type Store struct {
    rdb      *redis.Client
    maxTurns int64
    ttl      time.Duration
}

// NewStore builds a Store. maxTurns bounds how many turns are retained per
// session; ttl expires idle conversations.
func NewStore(rdb *redis.Client, maxTurns int64, ttl time.Duration) *Store {
    if maxTurns <= 0 {
        maxTurns = 20
    }
    if ttl <= 0 {
        ttl = 24 * time.Hour
    }
    return &Store{rdb: rdb, maxTurns: maxTurns, ttl: ttl}
}

func (s *Store) key(session string) string { return "history:" + session }

// Append records one turn for the session, trimming the list to maxTurns.
func (s *Store) Append(ctx context.Context, session string, turn Turn) error {
    if s == nil || s.rdb == nil {
        return nil
    }
    if turn.At.IsZero() {
        turn.At = time.Now().UTC()
    }
    raw, err := json.Marshal(turn)
    if err != nil {
        return fmt.Errorf("marshal turn: %w", err)
    }
    key := s.key(session)
    pipe := s.rdb.TxPipeline()
    pipe.LPush(ctx, key, raw)
    pipe.LTrim(ctx, key, 0, s.maxTurns-1)
    pipe.Expire(ctx, key, s.ttl)
    if _, err := pipe.Exec(ctx); err != nil {
        return fmt.Errorf("append history: %w", err)
    }
    return nil
}

// Recent returns up to maxTurns turns for the session, oldest first. A
// missing session yields an empty slice.
func (s *Store) Recent(ctx context.Context, session string) ([]Turn, error) {
    if s == nil || s.rdb == nil {
        return nil, nil
    }
    raws, err := s.rdb.LRange(ctx, s.key(session), 0, s.maxTurns-1).Result()
    if err != nil {
        if err == redis.Nil {
            return nil, nil
        }
        return nil, fmt.Errorf("read history: %w", err)
    }
    turns := make([]Turn, 0, len(raws))
    // LPUSH stores newest first; walk backwards to return oldest first.
    for i := len(raws) - 1; i >= 0; i-- {
        var t Turn
        if err := json.Unmarshal([]byte(raws[i]), &t); err != nil {
            continue // skip corrupt entries
        }
        turns = append(turns, t)
    }
    return turns, nil
}
