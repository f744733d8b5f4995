package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/retry"
)

// HTTPNotifier implements callback delivery via HTTP POST with bounded
// retries.
type HTTPNotifier struct {
	httpClient *http.Client
	policy     retry.Policy
	log        zerolog.Logger
}

// NewHTTPNotifier creates a new HTTP-based callback notifier.
func NewHTTPNotifier(log zerolog.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		policy: retry.DefaultPolicy(),
		log:    log.With().Str("component", "webhook").Logger(),
	}
}

// NotifyResult posts the final response text, visible in the channel.
func (s *HTTPNotifier) NotifyResult(ctx context.Context, callbackURL, text string) error {
	return s.deliver(ctx, callbackURL, SlackMessage{
		ResponseType: ResponseTypeInChannel,
		Text:         text,
	})
}

// NotifyFailure posts an ephemeral failure notice to the requester.
func (s *HTTPNotifier) NotifyFailure(ctx context.Context, callbackURL, message string) error {
	return s.deliver(ctx, callbackURL, SlackMessage{
		ResponseType: ResponseTypeEphemeral,
		Text:         message,
	})
}

func (s *HTTPNotifier) deliver(ctx context.Context, callbackURL string, payload SlackMessage) error {
	if callbackURL == "" {
		s.log.Debug().Msg("no callback URL, skipping delivery")
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal callback payload: %w", err)
	}

	err = s.policy.Execute(ctx, func(ctx context.Context, attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create callback request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "homehub-assistant/1.0")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.log.Warn().Err(err).Int("attempt", attempt).Msg("callback delivery failed")
			return fmt.Errorf("send callback: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		s.log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("callback delivery failed")
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	})
	if err != nil {
		return err
	}

	s.log.Info().Msg("callback delivered")
	return nil
}

var _ Notifier = (*HTTPNotifier)(nil)
