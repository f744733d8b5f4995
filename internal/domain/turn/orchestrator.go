// Package turn runs the per-turn state machine: model calls, bounded tool
// rounds, and the persistence lifecycle around them.
package turn

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/domain/llm"
	"homehub/assistant-api/internal/domain/tool"
	"homehub/assistant-api/internal/utils/platformerrors"
)

// FallbackText is returned when the round bound exhausts with no model text
// to show.
const FallbackText = "Done."

// DefaultMaxToolRounds bounds tool rounds per turn.
const DefaultMaxToolRounds = 10

// Invoker dispatches one tool call and always returns the result envelope.
type Invoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage, actingUserID string) tool.Result
}

// ActionRecorder persists one audit row per executed tool call.
type ActionRecorder interface {
	RecordAction(ctx context.Context, action *conversation.Action) error
}

// ExecuteParams carries one prepared turn into the round loop.
type ExecuteParams struct {
	ConversationID uint
	UserID         string
	Channel        string
	Model          string
	System         string
	Window         []llm.Message
	Tools          []llm.ToolDefinition
	MaxTokens      int
}

// ExecuteResult reports a completed loop. MidLoop holds the assistant
// messages produced before the final one, in order; the caller persists
// them together with the final row so a failed turn leaves none behind.
type ExecuteResult struct {
	FinalText string
	Rounds    int
	ToolCalls int
	Usage     llm.Usage
	MidLoop   []conversation.Message
	Degraded  bool
}

// Orchestrator drives the state machine AwaitingModel → {ToolUse →
// AwaitingModel, Final}. Rounds are atomic: every result of a round is
// gathered before the next model call.
type Orchestrator struct {
	provider  llm.Provider
	invoker   Invoker
	actions   ActionRecorder
	maxRounds int
	log       zerolog.Logger
}

// NewOrchestrator creates the round loop. A non-positive maxRounds falls
// back to DefaultMaxToolRounds.
func NewOrchestrator(provider llm.Provider, invoker Invoker, actions ActionRecorder, maxRounds int, log zerolog.Logger) *Orchestrator {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}
	return &Orchestrator{
		provider:  provider,
		invoker:   invoker,
		actions:   actions,
		maxRounds: maxRounds,
		log:       log.With().Str("component", "turn_orchestrator").Logger(),
	}
}

// Execute runs the loop until the model returns final text or the round
// bound is reached. A provider failure is the only error path; tool
// failures stay inside the loop as result envelopes.
func (o *Orchestrator) Execute(ctx context.Context, params ExecuteParams) (*ExecuteResult, error) {
	messages := append([]llm.Message(nil), params.Window...)
	result := &ExecuteResult{}
	lastText := ""

	for {
		completion, err := o.provider.Complete(ctx, llm.CompletionRequest{
			Model:     params.Model,
			System:    params.System,
			Messages:  messages,
			Tools:     params.Tools,
			MaxTokens: params.MaxTokens,
		})
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeExternal, "model call failed", err,
				"f41c9d27-8a6e-45b3-bf02-7d9e5c1a8b34")
		}

		result.Usage.Add(completion.Usage)
		if text := completion.Text(); text != "" {
			lastText = text
		}

		toolUses := completion.ToolUses()
		if len(toolUses) == 0 {
			result.FinalText = completion.Text()
			return result, nil
		}

		result.Rounds++
		result.MidLoop = append(result.MidLoop,
			conversation.NewAssistantMessage(completion.Text(), toToolCalls(toolUses)))

		resultBlocks := make([]llm.ContentBlock, 0, len(toolUses))
		for _, use := range toolUses {
			res := o.invoker.Invoke(ctx, use.Name, use.Input, params.UserID)
			result.ToolCalls++

			action := conversation.NewAction(params.ConversationID, params.UserID,
				use.Name, actionSummary(use.Name, res), params.Channel)
			if err := o.actions.RecordAction(ctx, action); err != nil {
				o.log.Error().Err(err).
					Str("tool", use.Name).
					Msg("recording action failed")
			}

			resultBlocks = append(resultBlocks, llm.ToolResultBlock(use.ID, res.Payload(), !res.Success))
		}

		messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: completion.Content})
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: resultBlocks})

		if result.Rounds >= o.maxRounds {
			break
		}
	}

	// Bound exhausted: accept whatever text is available.
	result.Degraded = true
	result.FinalText = lastText
	if result.FinalText == "" {
		result.FinalText = FallbackText
	}
	o.log.Warn().
		Int("rounds", result.Rounds).
		Uint("conversation_id", params.ConversationID).
		Msg("tool round bound reached")
	return result, nil
}

func toToolCalls(uses []llm.ContentBlock) []conversation.ToolCall {
	calls := make([]conversation.ToolCall, 0, len(uses))
	for _, use := range uses {
		calls = append(calls, conversation.ToolCall{
			ID:    use.ID,
			Name:  use.Name,
			Input: use.Input,
		})
	}
	return calls
}

func actionSummary(name string, res tool.Result) string {
	if res.Success {
		return fmt.Sprintf("%s succeeded", name)
	}
	if res.Error != nil {
		return fmt.Sprintf("%s failed: %s", name, res.Error.Code)
	}
	return fmt.Sprintf("%s failed", name)
}
