// Package push forwards freshly created notifications to an external
// delivery gateway. The notification row is the durable output; delivery
// here is fire-and-forget and is never awaited by request handlers.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"alertline/internal/config"
	"alertline/internal/domain"
)

type Sender struct {
	logger *slog.Logger
	cfg    config.PushConfig
	http   *http.Client
}

func NewSender(logger *slog.Logger, cfg config.PushConfig) *Sender {
	return &Sender{
		logger: logger,
		cfg:    cfg,
		http:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Send posts the message to the gateway in a detached goroutine. A disabled
// or unconfigured gateway makes it a no-op.
func (s *Sender) Send(msg domain.PushMessage) {
	if s.cfg.Disabled || s.cfg.GatewayURL == "" {
		return
	}
	go s.sendWithRetry(context.Background(), msg)
}

func (s *Sender) sendWithRetry(ctx context.Context, msg domain.PushMessage) {
	const maxRetries = 3

	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("marshal push payload failed", slog.String("error", err.Error()))
		return
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL, bytes.NewReader(body))
		if err != nil {
			s.logger.Error("create push request failed", slog.String("error", err.Error()))
			return
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := s.http.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}

		reason := "unknown"
		if err != nil {
			reason = err.Error()
		} else if resp != nil {
			reason = resp.Status
		}

		s.logger.Warn("push delivery failed",
			slog.Int("attempt", attempt),
			slog.String("user_id", msg.UserID),
			slog.String("reason", reason),
		)

		time.Sleep(time.Duration(attempt) * time.Second)
	}
}
