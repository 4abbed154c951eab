package events

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/disgoorg/loyalty-engine/loyalty/config"
)

// WebhookSink POSTs envelopes as JSON to a single URL. When a secret is set
// the body is signed with HMAC-SHA256.
type WebhookSink struct {
	url        string
	secret     string
	client     *http.Client
	maxRetries uint
	retryDelay time.Duration
}

type WebhookConfig struct {
	URL        string
	Secret     string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

func NewWebhookSink(cfg WebhookConfig) *WebhookSink {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = config.WebhookMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = config.WebhookRetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.WebhookClientTimeout
	}
	return &WebhookSink{
		url:        cfg.URL,
		secret:     cfg.Secret,
		client:     &http.Client{Timeout: cfg.Timeout},
		maxRetries: uint(cfg.MaxRetries),
		retryDelay: cfg.RetryDelay,
	}
}

// Sign returns the hex HMAC-SHA256 of payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (w *WebhookSink) Deliver(ctx context.Context, env Envelope) error {
	if w.url == "" {
		return nil
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.retryDelay

	attempt := 0
	_, err = backoff.Retry(ctx, func() (int, error) {
		attempt++
		return w.post(ctx, env, payload)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(w.maxRetries),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("Webhook delivery retry",
				slog.String("type", "http"),
				slog.String("event_id", env.ID),
				slog.Int("attempt", attempt),
				slog.Duration("next", next),
				slog.Any("error", err))
		}),
	)
	return err
}

func (w *WebhookSink) post(ctx context.Context, env Envelope, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Loyalty-Event", env.Type)
	req.Header.Set("X-Loyalty-Delivery", env.ID)
	if w.secret != "" {
		req.Header.Set(config.WebhookSignatureHdr, Sign(payload, w.secret))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.StatusCode, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return resp.StatusCode, backoff.Permanent(fmt.Errorf("webhook rejected event: status %d", resp.StatusCode))
	default:
		return resp.StatusCode, fmt.Errorf("webhook delivery failed: status %d", resp.StatusCode)
	}
}
