// Package llm defines the completion contract with the model backend: the
// content-block message shapes, tool definitions, tier catalog, message
// classification and cost accounting.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Roles in the outgoing model context.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content block types.
const (
	BlockTypeText       = "text"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
)

// Stop reasons reported by the provider.
const (
	StopReasonEndTurn   = "end_turn"
	StopReasonToolUse   = "tool_use"
	StopReasonMaxTokens = "max_tokens"
)

// ContentBlock is one element of a message body: plain text, a tool-use
// request emitted by the model, or a tool result fed back to it.
type ContentBlock struct {
	Type string `json:"type"`

	// Text is set for "text" blocks.
	Text string `json:"text,omitempty"`

	// ID, Name and Input are set for "tool_use" blocks.
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// ToolUseID, Content and IsError are set for "tool_result" blocks.
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockTypeText, Text: text}
}

// ToolResultBlock builds the result block answering one tool_use request.
func ToolResultBlock(toolUseID, content string, isError bool) ContentBlock {
	return ContentBlock{
		Type:      BlockTypeToolResult,
		ToolUseID: toolUseID,
		Content:   content,
		IsError:   isError,
	}
}

// Message is one turn of the outgoing model context.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// UserText builds a single-text-block user message.
func UserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock(text)}}
}

// Text concatenates the text blocks of the message.
func (m Message) Text() string {
	var sb strings.Builder
	for _, block := range m.Content {
		if block.Type == BlockTypeText {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// ToolDefinition describes one invocable tool advertised to the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// CompletionRequest is one call to the model backend.
type CompletionRequest struct {
	Model     string           `json:"model"`
	System    string           `json:"system,omitempty"`
	Messages  []Message        `json:"messages"`
	Tools     []ToolDefinition `json:"tools,omitempty"`
	MaxTokens int              `json:"max_tokens"`
}

// Usage reports token consumption for one completion call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates another call's usage into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Completion is the provider's reply to one CompletionRequest.
type Completion struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// Text concatenates the completion's text blocks.
func (c *Completion) Text() string {
	var sb strings.Builder
	for _, block := range c.Content {
		if block.Type == BlockTypeText {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// ToolUses returns the tool_use blocks in content order.
func (c *Completion) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, block := range c.Content {
		if block.Type == BlockTypeToolUse {
			uses = append(uses, block)
		}
	}
	return uses
}

// Provider is the completion backend consumed by the turn orchestrator.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}
