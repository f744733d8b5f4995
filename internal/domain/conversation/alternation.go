package conversation

// NormalizeAlternation merges consecutive same-role messages into one entry,
// producing a new slice in a single pass. The result never holds two
// adjacent entries with the same role; the input is not mutated.
func NormalizeAlternation(msgs []Message) []Message {
	if len(msgs) == 0 {
		return nil
	}

	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		entry := m
		entry.ToolCalls = append([]ToolCall(nil), m.ToolCalls...)

		if len(out) > 0 && out[len(out)-1].Role == entry.Role {
			prev := &out[len(out)-1]
			prev.Content = joinContents(prev.Content, entry.Content)
			prev.ToolCalls = append(prev.ToolCalls, entry.ToolCalls...)
			continue
		}

		out = append(out, entry)
	}
	return out
}

func joinContents(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n\n" + b
	}
}
