package chat

import (
	"encoding/json"
	"html"
	"strings"
)

const (
	// Delimiter separates the model's answer from its follow-up questions.
	Delimiter = "---SUGGESTIONS---"

	// MaxSuggestions caps the follow-ups returned to the browser.
	MaxSuggestions = 3

	// ApologyReply is the only thing a caller sees when generation fails.
	ApologyReply = "Sorry, an error occurred on the server."
)

// Response is the JSON body of /chat. A failed exchange carries only the
// reply; a successful one always carries a suggestions array.
type Response struct {
	Reply       string
	Suggestions []string
	Failed      bool
}

// Apology is the response for a failed exchange.
func Apology() Response {
	return Response{Reply: ApologyReply, Failed: true}
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.Failed {
		return json.Marshal(struct {
			Reply string `json:"reply"`
		}{r.Reply})
	}
	suggestions := r.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return json.Marshal(struct {
		Reply       string   `json:"reply"`
		Suggestions []string `json:"suggestions"`
	}{r.Reply, suggestions})
}

// ParseReply splits raw model output on the first Delimiter. The reply is
// HTML-escaped with newlines rendered as <br>. Suggestions are the
// non-blank trimmed lines after the delimiter, at most MaxSuggestions.
func ParseReply(raw string) Response {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	before, after, found := strings.Cut(raw, Delimiter)

	reply := html.EscapeString(strings.TrimSpace(before))
	reply = strings.ReplaceAll(reply, "\n", "<br>")

	suggestions := []string{}
	if found {
		// A repeated marker ends the suggestion block.
		after, _, _ = strings.Cut(after, Delimiter)
		for _, line := range strings.Split(after, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			suggestions = append(suggestions, line)
			if len(suggestions) == MaxSuggestions {
				break
			}
		}
	}
	return Response{Reply: reply, Suggestions: suggestions}
}
