package toolservice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/tool"
)

// Loader mirrors the remote manifest into the tool registry. Each remote
// tool is registered with a handler that forwards the call over RPC.
type Loader struct {
	client   *Client
	registry tool.Registry
	log      zerolog.Logger
}

// NewLoader builds a manifest loader.
func NewLoader(client *Client, registry tool.Registry, log zerolog.Logger) *Loader {
	return &Loader{
		client:   client,
		registry: registry,
		log:      log.With().Str("component", "tool_loader").Logger(),
	}
}

// Refresh fetches the manifest and replaces the registry entries for every
// remote tool. Locally registered tools are untouched.
func (l *Loader) Refresh(ctx context.Context) error {
	manifest, err := l.client.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("fetch tool manifest: %w", err)
	}

	for _, remote := range manifest {
		def := tool.Definition{
			Name:        remote.Name,
			Description: remote.Description,
			Parameters:  remote.InputSchema,
		}
		if err := l.registry.Replace(def, l.remoteHandler(remote.Name)); err != nil {
			return fmt.Errorf("register tool %s: %w", remote.Name, err)
		}
	}

	l.log.Info().Int("tools", len(manifest)).Msg("tool manifest refreshed")
	return nil
}

func (l *Loader) remoteHandler(name string) tool.Handler {
	return func(ctx context.Context, args json.RawMessage, actingUserID string) (any, error) {
		return l.client.CallTool(ctx, name, args, actingUserID)
	}
}
