package agentry

// InvocationStats contains counters aggregated from published events over one
// invocation. Counters count attempts: a model call retried twice contributes
// three to ModelCalls and two to ModelRetries.
//
// Stats are updated by InvocationContext.Publish after the event's hooks have
// run, so retry flags are settled by the time they are counted.
type InvocationStats struct {
	// ModelCalls is the number of model call attempts.
	ModelCalls int

	// ModelRetries is the number of model call attempts that were retried.
	ModelRetries int

	// ToolCalls is the number of tool call attempts.
	ToolCalls int

	// ToolRetries is the number of tool call attempts that were retried.
	ToolRetries int

	// InputTokens and OutputTokens aggregate token usage across successful
	// model calls.
	InputTokens  int
	OutputTokens int

	// ToolCallsByName breaks ToolCalls down per tool name.
	ToolCallsByName map[string]int
}

// clone returns a deep copy of the stats.
func (s InvocationStats) clone() InvocationStats {
	out := s
	out.ToolCallsByName = make(map[string]int, len(s.ToolCallsByName))
	for k, v := range s.ToolCallsByName {
		out.ToolCallsByName[k] = v
	}
	return out
}

// observe updates the counters for one published event.
func (s *InvocationStats) observe(event Event) {
	switch e := event.(type) {
	case *AfterModelCallEvent:
		s.ModelCalls++
		if e.Retry {
			s.ModelRetries++
		}
		if e.StopResponse != nil {
			s.InputTokens += e.StopResponse.Usage.InputTokens
			s.OutputTokens += e.StopResponse.Usage.OutputTokens
		}
	case *AfterToolCallEvent:
		s.ToolCalls++
		if e.Retry {
			s.ToolRetries++
		}
		if e.ToolUse != nil && e.ToolUse.Name != "" {
			s.ToolCallsByName[e.ToolUse.Name]++
		}
	}
}
