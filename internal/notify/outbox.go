package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClientCookie identifies a browser across requests for the Outbox.
const ClientCookie = "portal_client"

// Outbox carries toasts across a redirect, keyed by client id.
type Outbox struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOutbox constructs an Outbox. Toasts expire after ttl without a Drain.
func NewOutbox(client *redis.Client, ttl time.Duration) *Outbox {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Outbox{client: client, ttl: ttl}
}

func outboxKey(clientID string) string {
	return "portal:toasts:" + clientID
}

// Push queues t for clientID.
func (o *Outbox) Push(ctx context.Context, clientID string, t Toast) error {
	if o == nil || o.client == nil || clientID == "" {
		return nil
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	key := outboxKey(clientID)
	pipe := o.client.TxPipeline()
	pipe.RPush(ctx, key, raw)
	pipe.Expire(ctx, key, o.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("notify: push: %w", err)
	}
	return nil
}

// Drain removes and returns every queued toast for clientID in push order.
func (o *Outbox) Drain(ctx context.Context, clientID string) ([]Toast, error) {
	if o == nil || o.client == nil || clientID == "" {
		return nil, nil
	}
	key := outboxKey(clientID)
	pipe := o.client.TxPipeline()
	items := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("notify: drain: %w", err)
	}
	toasts := make([]Toast, 0, len(items.Val()))
	for _, raw := range items.Val() {
		var t Toast
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			continue
		}
		toasts = append(toasts, t)
	}
	return toasts, nil
}

// DrainInto moves queued toasts for clientID onto board.
func (o *Outbox) DrainInto(ctx context.Context, clientID string, board *Board) error {
	toasts, err := o.Drain(ctx, clientID)
	if err != nil {
		return err
	}
	for _, t := range toasts {
		board.Add(t)
	}
	return nil
}

// ClientID returns the request's client id, issuing a cookie when absent.
func ClientID(w http.ResponseWriter, r *http.Request, secure bool) string {
	if c, err := r.Cookie(ClientCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
