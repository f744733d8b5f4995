package conversation_test

import (
	"fmt"
	"strings"
	"testing"

	"homehub/assistant-api/internal/domain/conversation"
)

// makeHistory builds n alternating user/assistant messages with short
// numbered contents.
func makeHistory(n int) []conversation.Message {
	msgs := make([]conversation.Message, 0, n)
	for i := 0; i < n; i++ {
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		msgs = append(msgs, conversation.Message{
			Role:     role,
			Content:  fmt.Sprintf("message %d", i),
			Sequence: i + 1,
		})
	}
	return msgs
}

func TestCompressor_BelowTriggerPassesThrough(t *testing.T) {
	compressor := conversation.NewCompressor(20, 30, 3000)
	history := makeHistory(10)

	result := compressor.Compress(history, "earlier summary")

	if result.WasSummarized {
		t.Error("short history should not be summarized")
	}
	if result.Summary != "earlier summary" {
		t.Errorf("Summary = %q, want prior summary unchanged", result.Summary)
	}
	if len(result.Window) != 10 {
		t.Errorf("Window has %d messages, want 10", len(result.Window))
	}
}

func TestCompressor_SplitsAtWindowBoundary(t *testing.T) {
	compressor := conversation.NewCompressor(20, 30, 3000)
	history := makeHistory(35)

	result := compressor.Compress(history, "")

	if !result.WasSummarized {
		t.Fatal("history above the trigger should be summarized")
	}
	if len(result.Window) != 20 {
		t.Fatalf("Window has %d messages, want 20", len(result.Window))
	}
	// The window is the contiguous recent suffix, nothing reordered.
	for i, m := range result.Window {
		wantSeq := 16 + i
		if m.Sequence != wantSeq {
			t.Fatalf("Window[%d].Sequence = %d, want %d", i, m.Sequence, wantSeq)
		}
	}
	// Every dropped message is represented in the summary; none of the
	// window messages are.
	if !strings.Contains(result.Summary, "message 0") {
		t.Error("summary is missing the oldest dropped message")
	}
	if !strings.Contains(result.Summary, "message 14") {
		t.Error("summary is missing the newest dropped message")
	}
	if strings.Contains(result.Summary, "message 15") {
		t.Error("summary contains a message that stayed in the window")
	}
}

func TestCompressor_ReplacesPriorSummary(t *testing.T) {
	compressor := conversation.NewCompressor(5, 8, 100000)

	first := compressor.Compress(makeHistory(10), "")
	if !first.WasSummarized {
		t.Fatal("first pass should summarize")
	}

	// The conversation keeps growing: the stored tail plus five new turns.
	grown := append(append([]conversation.Message(nil), first.Window...), makeHistory(20)[10:15]...)
	second := compressor.Compress(grown, first.Summary)
	if !second.WasSummarized {
		t.Fatal("second pass should summarize")
	}

	// The new summary subsumes the old one instead of standing next to it.
	if !strings.Contains(second.Summary, first.Summary) {
		t.Error("new summary should fold in the prior one")
	}
	if strings.Count(second.Summary, "user: message 0") != 1 {
		t.Errorf("prior content duplicated in summary: %q", second.Summary)
	}
	if !strings.Contains(second.Summary, "message 9") {
		t.Error("newly dropped messages should join the summary")
	}
}

func TestCompressor_IdempotentOnCompressedWindow(t *testing.T) {
	compressor := conversation.NewCompressor(20, 30, 3000)

	first := compressor.Compress(makeHistory(35), "")
	if !first.WasSummarized {
		t.Fatal("first pass should summarize")
	}

	second := compressor.Compress(first.Window, first.Summary)

	if second.WasSummarized {
		t.Error("compressing an already-bounded window should be a no-op")
	}
	if second.Summary != first.Summary {
		t.Errorf("Summary changed on no-op pass: %q", second.Summary)
	}
	if len(second.Window) != len(first.Window) {
		t.Errorf("Window length changed on no-op pass: %d", len(second.Window))
	}
}

func TestCompressor_TokenTrigger(t *testing.T) {
	compressor := conversation.NewCompressor(2, 100, 100)

	// Six messages of ~200 characters blow the token trigger long before
	// the message-count trigger.
	long := strings.Repeat("budget planning detail ", 9)
	history := make([]conversation.Message, 6)
	for i := range history {
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		history[i] = conversation.Message{Role: role, Content: long}
	}

	result := compressor.Compress(history, "")

	if !result.WasSummarized {
		t.Fatal("token-heavy history should be summarized")
	}
	if len(result.Window) != 2 {
		t.Errorf("Window has %d messages, want 2", len(result.Window))
	}
}

func TestCompressor_NoCleanSplitPassesThrough(t *testing.T) {
	// Fewer messages than the window holds, but enough text to trip the
	// token trigger: there is nothing old enough to drop.
	compressor := conversation.NewCompressor(20, 30, 100)
	history := makeHistory(5)
	history[0].Content = strings.Repeat("long content ", 60)

	result := compressor.Compress(history, "prior")

	if result.WasSummarized {
		t.Error("history inside the window should never be summarized")
	}
	if len(result.Window) != 5 {
		t.Errorf("Window has %d messages, want 5", len(result.Window))
	}
	if result.Summary != "prior" {
		t.Errorf("Summary = %q, want prior summary unchanged", result.Summary)
	}
}

func TestCompressor_SummaryStaysBounded(t *testing.T) {
	compressor := conversation.NewCompressor(5, 8, 100000)

	long := strings.Repeat("very detailed household discussion ", 20)
	history := make([]conversation.Message, 40)
	for i := range history {
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		history[i] = conversation.Message{Role: role, Content: long}
	}

	result := compressor.Compress(history, strings.Repeat("old summary ", 300))

	if !result.WasSummarized {
		t.Fatal("history above the trigger should be summarized")
	}
	if got := len([]rune(result.Summary)); got > 2000 {
		t.Errorf("summary is %d runes, want at most 2000", got)
	}
}

func TestCompressor_ToolOnlyMessagesDigestByName(t *testing.T) {
	compressor := conversation.NewCompressor(2, 3, 100000)

	history := []conversation.Message{
		{Role: conversation.RoleUser, Content: "check my tasks"},
		{Role: conversation.RoleAssistant, Content: "", ToolCalls: []conversation.ToolCall{{ID: "t1", Name: "list_tasks"}}},
		{Role: conversation.RoleAssistant, Content: "two tasks open"},
		{Role: conversation.RoleUser, Content: "thanks"},
	}

	result := compressor.Compress(history, "")

	if !result.WasSummarized {
		t.Fatal("history above the trigger should be summarized")
	}
	if !strings.Contains(result.Summary, "(called list_tasks)") {
		t.Errorf("summary should name the tool call, got %q", result.Summary)
	}
}
