// Package webhook delivers deferred turn results back to the requesting
// platform's callback URL.
package webhook

import (
	"context"
)

// Slack response types.
const (
	ResponseTypeInChannel = "in_channel"
	ResponseTypeEphemeral = "ephemeral"
)

// Notifier posts a deferred turn's outcome to its one-time callback URL.
type Notifier interface {
	// NotifyResult posts the final response text, visible in the channel.
	NotifyResult(ctx context.Context, callbackURL, text string) error

	// NotifyFailure posts an ephemeral failure notice to the requester.
	NotifyFailure(ctx context.Context, callbackURL, message string) error
}

// SlackMessage is the payload posted to a Slack response_url.
type SlackMessage struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}
