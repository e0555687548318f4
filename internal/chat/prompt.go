package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

const instructions = `You are a helpful and friendly personal finance assistant.
Your goal is to provide clear, actionable insights based ONLY on the financial data provided to you.
After your answer, add a special marker ` + "`" + Delimiter + "`" + `.
After the marker, provide exactly three relevant follow-up questions the user might ask next. Each suggestion must be on a new line.`

// BuildPrompt embeds the disclosed fields and the user's message in the
// fixed assistant instructions. Fields are rendered as 2-space indented
// JSON with sorted keys; an empty map renders as {}.
func BuildPrompt(disclosed map[string]json.RawMessage, message string) (string, error) {
	if disclosed == nil {
		disclosed = map[string]json.RawMessage{}
	}
	data, err := json.MarshalIndent(disclosed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode disclosed data: %w", err)
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nHere is the user's financial data you are allowed to see:\n---\n")
	b.Write(data)
	b.WriteString("\n---\nThe user's question is: \"")
	b.WriteString(message)
	b.WriteString("\"\n")
	return b.String(), nil
}
