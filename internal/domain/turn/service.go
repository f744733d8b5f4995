package turn

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/domain/llm"
	"homehub/assistant-api/internal/domain/memory"
	"homehub/assistant-api/internal/domain/tool"
	"homehub/assistant-api/internal/utils/platformerrors"
)

// DefaultMaxOutputTokens caps a single completion.
const DefaultMaxOutputTokens = 1024

const systemPromptBase = "You are a personal household assistant. You help the user manage tasks, goals, habits, budget and shopping through the tools available to you. Keep replies short and concrete, and use tools for any lookup or change instead of guessing."

// RunParams is one inbound turn request. ConversationPublicID may be empty
// to start a new conversation on the given channel.
type RunParams struct {
	ConversationPublicID string
	UserID               string
	Channel              string
	Message              string
}

// Result is the outcome of one completed turn.
type Result struct {
	ResponseText         string
	ConversationPublicID string
	Tier                 llm.Tier
	Usage                llm.Usage
	CostCents            decimal.Decimal
	ToolRounds           int
	Degraded             bool
}

// FactSource supplies the user's long-term memory facts for the prompt.
type FactSource interface {
	ListFacts(ctx context.Context, userID string) ([]memory.Fact, error)
}

// Service runs complete turns against a conversation.
type Service interface {
	Run(ctx context.Context, params RunParams) (*Result, error)
}

type service struct {
	sessions        conversation.Service
	compressor      *conversation.Compressor
	router          *llm.Router
	catalog         *llm.Catalog
	ledger          *llm.Ledger
	registry        tool.Registry
	facts           FactSource
	orchestrator    *Orchestrator
	maxOutputTokens int
	log             zerolog.Logger
}

// NewService wires the turn lifecycle. A non-positive maxOutputTokens falls
// back to DefaultMaxOutputTokens.
func NewService(
	sessions conversation.Service,
	compressor *conversation.Compressor,
	router *llm.Router,
	catalog *llm.Catalog,
	ledger *llm.Ledger,
	registry tool.Registry,
	facts FactSource,
	orchestrator *Orchestrator,
	maxOutputTokens int,
	log zerolog.Logger,
) Service {
	if maxOutputTokens <= 0 {
		maxOutputTokens = DefaultMaxOutputTokens
	}
	return &service{
		sessions:        sessions,
		compressor:      compressor,
		router:          router,
		catalog:         catalog,
		ledger:          ledger,
		registry:        registry,
		facts:           facts,
		orchestrator:    orchestrator,
		maxOutputTokens: maxOutputTokens,
		log:             log.With().Str("component", "turn_service").Logger(),
	}
}

// Run executes one turn: persist the user message, assemble the model
// context, loop through tool rounds, then persist the assistant rows in one
// batch. A model failure after the user message leaves no assistant rows.
func (s *service) Run(ctx context.Context, params RunParams) (*Result, error) {
	text := strings.TrimSpace(params.Message)
	if text == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "message must not be empty", nil,
			"3b8a1f59-6c47-4e2d-90ab-54c3d7e8f216")
	}
	channel := params.Channel
	if channel == "" {
		channel = conversation.ChannelWeb
	}

	conv, err := s.sessions.ResolveOrCreate(ctx, params.ConversationPublicID, params.UserID, channel)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.AppendMessage(ctx, conv.ID, conversation.NewUserMessage(text)); err != nil {
		return nil, err
	}

	window, summary, err := s.buildWindow(ctx, conv)
	if err != nil {
		return nil, err
	}

	system := s.buildSystemPrompt(ctx, params.UserID, summary)
	tier := s.router.Classify(text)

	execResult, err := s.orchestrator.Execute(ctx, ExecuteParams{
		ConversationID: conv.ID,
		UserID:         params.UserID,
		Channel:        channel,
		Model:          s.catalog.Model(tier),
		System:         system,
		Window:         window,
		Tools:          toToolDefinitions(s.registry.Manifest()),
		MaxTokens:      s.maxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	cost := s.ledger.Cost(tier, execResult.Usage.InputTokens, execResult.Usage.OutputTokens)

	final := conversation.NewAssistantMessage(execResult.FinalText, nil)
	final.InputTokens = execResult.Usage.InputTokens
	final.OutputTokens = execResult.Usage.OutputTokens
	final.ModelTier = tier.String()
	final.CostCents = cost

	rows := append(execResult.MidLoop, final)
	if err := s.sessions.AppendMessages(ctx, conv.ID, rows); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("conversation", conv.PublicID).
		Str("channel", channel).
		Str("tier", tier.String()).
		Int("tool_rounds", execResult.Rounds).
		Int("tool_calls", execResult.ToolCalls).
		Int("input_tokens", execResult.Usage.InputTokens).
		Int("output_tokens", execResult.Usage.OutputTokens).
		Str("cost_cents", cost.String()).
		Bool("degraded", execResult.Degraded).
		Msg("turn completed")

	return &Result{
		ResponseText:         execResult.FinalText,
		ConversationPublicID: conv.PublicID,
		Tier:                 tier,
		Usage:                execResult.Usage,
		CostCents:            cost,
		ToolRounds:           execResult.Rounds,
		Degraded:             execResult.Degraded,
	}, nil
}

// buildWindow loads recent history, compresses it when it outgrows the
// window, and returns the alternation-normalized tail plus the summary that
// covers everything before it.
func (s *service) buildWindow(ctx context.Context, conv *conversation.Conversation) ([]llm.Message, string, error) {
	history, err := s.sessions.LoadWindow(ctx, conv.ID, conversation.HardHistoryCap)
	if err != nil {
		return nil, "", err
	}

	compression := s.compressor.Compress(history, conv.Summary)
	if compression.WasSummarized {
		if err := s.sessions.UpdateSummary(ctx, conv.ID, compression.Summary); err != nil {
			return nil, "", err
		}
	}

	normalized := conversation.NormalizeAlternation(compression.Window)
	return toModelMessages(normalized), compression.Summary, nil
}

func (s *service) buildSystemPrompt(ctx context.Context, userID, summary string) string {
	var sb strings.Builder
	sb.WriteString(systemPromptBase)

	if summary != "" {
		sb.WriteString("\n\nConversation so far, condensed: ")
		sb.WriteString(summary)
	}

	facts, err := s.facts.ListFacts(ctx, userID)
	if err != nil {
		// The turn can proceed without long-term memory.
		s.log.Warn().Err(err).Str("user_id", userID).Msg("loading memory facts failed")
	} else if len(facts) > 0 {
		sb.WriteString("\n\nKnown facts about the user:")
		for _, fact := range facts {
			sb.WriteString("\n- ")
			sb.WriteString(fact.Fact)
		}
	}

	return sb.String()
}

// toModelMessages renders persisted history as plain text turns. Stored
// tool_calls stay on the rows for the history API; the live loop carries
// tool blocks in memory only.
func toModelMessages(msgs []conversation.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		out = append(out, llm.Message{
			Role:    m.Role,
			Content: []llm.ContentBlock{llm.TextBlock(m.Content)},
		})
	}
	return out
}

func toToolDefinitions(defs []tool.Definition) []llm.ToolDefinition {
	out := make([]llm.ToolDefinition, 0, len(defs))
	for _, def := range defs {
		out = append(out, llm.ToolDefinition{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.Parameters,
		})
	}
	return out
}
