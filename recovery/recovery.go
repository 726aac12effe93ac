// Package recovery repairs model responses that were truncated at the
// output token limit. A truncated response can carry tool calls the model
// never finished writing; forwarding those to the tool loop produces
// confusing failures, so they are replaced with an explanatory note.
package recovery

import (
	"fmt"
	"strings"

	"github.com/agentry-dev/agentry"
)

const incompleteToolUseNote = "The selected tool %s's tool use was incomplete due to " +
	"maximum token limits being reached."

// CleanResponse returns a copy of resp with incomplete tool calls removed
// and a note about each appended to the text content. A tool call is
// incomplete when it lacks an ID, a name, or any input. Responses without
// incomplete tool calls are returned unchanged.
func CleanResponse(resp *agentry.ModelResponse) *agentry.ModelResponse {
	if resp == nil || !hasIncompleteToolUse(resp.ToolCalls) {
		return resp
	}

	cleaned := &agentry.ModelResponse{
		Content:    resp.Content,
		StopReason: resp.StopReason,
		Usage:      resp.Usage,
	}

	var notes []string
	for _, call := range resp.ToolCalls {
		if isCompleteToolUse(call) {
			cleaned.ToolCalls = append(cleaned.ToolCalls, call)
			continue
		}
		name := call.Name
		if name == "" {
			name = "<unknown>"
		}
		notes = append(notes, fmt.Sprintf(incompleteToolUseNote, name))
	}

	joined := strings.Join(notes, "\n")
	if cleaned.Content != "" {
		cleaned.Content += "\n" + joined
	} else {
		cleaned.Content = joined
	}
	return cleaned
}

func hasIncompleteToolUse(calls []*agentry.ToolUse) bool {
	for _, call := range calls {
		if !isCompleteToolUse(call) {
			return true
		}
	}
	return false
}

func isCompleteToolUse(call *agentry.ToolUse) bool {
	return call != nil && call.ToolUseID != "" && call.Name != "" && len(call.Input) > 0
}
