package memory

import (
	"context"
	"encoding/json"
	"strings"

	"homehub/assistant-api/internal/domain/tool"
)

// RememberFactTool returns the registry entry for the built-in
// remember_fact tool, the one local capability in the dispatch table.
func RememberFactTool(svc *Service) (tool.Definition, tool.Handler) {
	def := tool.Definition{
		Name:        "remember_fact",
		Description: "Store a lasting fact about the user for future conversations, such as a preference, routine, or constraint.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"fact": map[string]any{
					"type":        "string",
					"description": "The fact to remember, phrased as a short statement.",
				},
			},
			"required": []string{"fact"},
		},
	}

	handler := func(ctx context.Context, args json.RawMessage, actingUserID string) (any, error) {
		var payload struct {
			Fact string `json:"fact"`
		}
		if len(args) > 0 {
			if err := json.Unmarshal(args, &payload); err != nil {
				return nil, tool.NewError(tool.ErrCodeInvalidArgs, "arguments must be a JSON object").WithCause(err)
			}
		}
		if strings.TrimSpace(payload.Fact) == "" {
			return nil, tool.NewError(tool.ErrCodeInvalidArgs, "fact is required")
		}

		fact, err := svc.Remember(ctx, actingUserID, payload.Fact)
		if err != nil {
			return nil, tool.NewError(tool.ErrCodeFailed, "could not store fact").WithCause(err)
		}
		return map[string]any{"remembered": fact.Fact}, nil
	}

	return def, handler
}
