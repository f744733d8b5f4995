package webhook_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/webhook"
)

func TestHTTPNotifier_NotifyResult(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := webhook.NewHTTPNotifier(zerolog.Nop())
	if err := notifier.NotifyResult(context.Background(), server.URL, "Two tasks due today."); err != nil {
		t.Fatalf("NotifyResult() error = %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}

	var msg webhook.SlackMessage
	if err := json.Unmarshal(gotBody, &msg); err != nil {
		t.Fatalf("Failed to parse delivered payload: %v", err)
	}
	if msg.ResponseType != webhook.ResponseTypeInChannel {
		t.Errorf("ResponseType = %q, want in_channel", msg.ResponseType)
	}
	if msg.Text != "Two tasks due today." {
		t.Errorf("Text = %q", msg.Text)
	}
}

func TestHTTPNotifier_NotifyFailure(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := webhook.NewHTTPNotifier(zerolog.Nop())
	if err := notifier.NotifyFailure(context.Background(), server.URL, "Sorry, that did not work."); err != nil {
		t.Fatalf("NotifyFailure() error = %v", err)
	}

	var msg webhook.SlackMessage
	if err := json.Unmarshal(gotBody, &msg); err != nil {
		t.Fatalf("Failed to parse delivered payload: %v", err)
	}
	if msg.ResponseType != webhook.ResponseTypeEphemeral {
		t.Errorf("ResponseType = %q, want ephemeral", msg.ResponseType)
	}
}

func TestHTTPNotifier_EmptyURLSkipsDelivery(t *testing.T) {
	notifier := webhook.NewHTTPNotifier(zerolog.Nop())
	if err := notifier.NotifyResult(context.Background(), "", "ignored"); err != nil {
		t.Errorf("NotifyResult() with empty URL = %v, want nil", err)
	}
}

func TestHTTPNotifier_RetriesFailedDelivery(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := webhook.NewHTTPNotifier(zerolog.Nop())
	if err := notifier.NotifyResult(context.Background(), server.URL, "eventually delivered"); err != nil {
		t.Fatalf("NotifyResult() error = %v, want success after retry", err)
	}

	if got := atomic.LoadInt32(&requests); got != 2 {
		t.Errorf("server received %d requests, want 2", got)
	}
}

func TestHTTPNotifier_CancelledContext(t *testing.T) {
	hit := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notifier := webhook.NewHTTPNotifier(zerolog.Nop())
	if err := notifier.NotifyResult(ctx, server.URL, "never sent"); err == nil {
		t.Error("Expected an error for a cancelled context")
	}
	if hit {
		t.Error("No request may be sent after cancellation")
	}
}
