package conversation

import (
	"fmt"
	"strings"

	"homehub/assistant-api/internal/domain/llm"
)

// Compressor defaults.
const (
	DefaultWindowSize      = 20
	DefaultTriggerMessages = 30
	DefaultTriggerTokens   = 3000

	maxSummaryRunes  = 2000
	digestEntryRunes = 140
)

// Compression is the outcome of one compressor pass.
type Compression struct {
	Summary       string
	Window        []Message
	WasSummarized bool
}

// Compressor converts (full history, prior summary) into (summary, bounded
// recent window). Compression is deterministic and does no I/O: the summary
// is a capped textual digest, not a model call. Each compression event
// replaces the prior summary; the boundary between summarized and recent is
// always a clean chronological split.
type Compressor struct {
	windowSize      int
	triggerMessages int
	triggerTokens   int
}

// NewCompressor creates a compressor; non-positive arguments fall back to
// the defaults.
func NewCompressor(windowSize, triggerMessages, triggerTokens int) *Compressor {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if triggerMessages <= 0 {
		triggerMessages = DefaultTriggerMessages
	}
	if triggerTokens <= 0 {
		triggerTokens = DefaultTriggerTokens
	}
	return &Compressor{
		windowSize:      windowSize,
		triggerMessages: triggerMessages,
		triggerTokens:   triggerTokens,
	}
}

// Compress decides whether the history needs compression and, when it does,
// folds the prior summary plus every dropped message into exactly one new
// summary string, returning the contiguous recent suffix as the window.
// Below the trigger the history and prior summary pass through unchanged.
func (c *Compressor) Compress(history []Message, priorSummary string) Compression {
	if len(history) <= c.triggerMessages && c.estimateTokens(history) <= c.triggerTokens {
		return Compression{Summary: priorSummary, Window: history, WasSummarized: false}
	}

	cutoff := len(history) - c.windowSize
	if cutoff <= 0 {
		// Nothing old enough to drop; a clean split is impossible.
		return Compression{Summary: priorSummary, Window: history, WasSummarized: false}
	}

	dropped := history[:cutoff]
	window := history[cutoff:]

	return Compression{
		Summary:       c.fold(priorSummary, dropped),
		Window:        window,
		WasSummarized: true,
	}
}

// fold subsumes the prior summary and every dropped message into one digest,
// keeping the most recent content when the cap is exceeded.
func (c *Compressor) fold(priorSummary string, dropped []Message) string {
	parts := make([]string, 0, len(dropped)+1)
	if priorSummary != "" {
		parts = append(parts, priorSummary)
	}
	for _, m := range dropped {
		parts = append(parts, digestEntry(m))
	}

	digest := strings.Join(parts, "; ")
	runes := []rune(digest)
	if len(runes) > maxSummaryRunes {
		digest = string(runes[len(runes)-maxSummaryRunes:])
	}
	return digest
}

func digestEntry(m Message) string {
	content := strings.Join(strings.Fields(m.Content), " ")
	if content == "" && len(m.ToolCalls) > 0 {
		names := make([]string, 0, len(m.ToolCalls))
		for _, tc := range m.ToolCalls {
			names = append(names, tc.Name)
		}
		content = fmt.Sprintf("(called %s)", strings.Join(names, ", "))
	}
	runes := []rune(content)
	if len(runes) > digestEntryRunes {
		content = string(runes[:digestEntryRunes]) + "..."
	}
	return m.Role + ": " + content
}

func (c *Compressor) estimateTokens(history []Message) int {
	total := 0
	for _, m := range history {
		total += llm.MessageOverheadTokens
		total += llm.EstimateTokens(m.Content)
		total += len(m.ToolCalls) * llm.ToolCallOverheadTokens
	}
	return total
}
