package llm

import "unicode/utf8"

const (
	// TokenEstimateRatio estimates ~4 characters per token (conservative estimate).
	TokenEstimateRatio = 4

	// MessageOverheadTokens covers role and structure per message.
	MessageOverheadTokens = 10

	// ToolCallOverheadTokens covers the structure of one tool call entry.
	ToolCallOverheadTokens = 20
)

// EstimateTokens provides a rough token count for a piece of text.
// Uses character count / 4 as a conservative approximation.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / TokenEstimateRatio
}
