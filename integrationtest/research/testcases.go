package research

import (
	"time"

	"github.com/agentry-dev/agentry"
	"github.com/agentry-dev/agentry/internal/tt"
	"github.com/agentry-dev/agentry/retry"
)

// retryCase is one scripted end-to-end scenario.
type retryCase struct {
	name    string
	options []retry.Option
	script  func(*tt.ScriptedModel)

	wantText      string
	wantDelays    []time.Duration
	wantToolCalls map[string]int
	wantThrottles int
}

var retryCases = []retryCase{
	{
		name:    "model throttle backs off and recovers",
		options: []retry.Option{retry.WithModelInitialDelay(time.Second)},
		script: func(m *tt.ScriptedModel) {
			m.Fail(agentry.NewThrottledError("429 rate limited", nil)).
				Fail(agentry.NewThrottledError("429 rate limited", nil)).
				Fail(agentry.NewThrottledError("429 rate limited", nil)).
				Respond(tt.TextResponse("throttling cleared"))
		},
		wantText: "throttling cleared",
		wantDelays: []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
		},
		wantThrottles: 3,
	},
	{
		name:    "tool retries until it succeeds",
		options: []retry.Option{retry.WithToolMaxAttempts(5)},
		script: func(m *tt.ScriptedModel) {
			// search_paper fails twice before succeeding.
			m.Respond(toolTurn("t1", "search_paper", "raft consensus")).
				Respond(tt.TextResponse("found 3 papers"))
		},
		wantText: "found 3 papers",
		wantDelays: []time.Duration{
			1 * time.Second,
			2 * time.Second,
		},
		wantToolCalls: map[string]int{"search_paper": 3},
	},
	{
		name:    "tool retry cap counts the original call",
		options: []retry.Option{retry.WithToolMaxAttempts(2)},
		script: func(m *tt.ScriptedModel) {
			// fetch_citation never succeeds: two attempts total, then the
			// failure goes back to the model.
			m.Respond(toolTurn("t1", "fetch_citation", "lamport 1998")).
				Respond(tt.TextResponse("citation unavailable"))
		},
		wantText:      "citation unavailable",
		wantDelays:    []time.Duration{1 * time.Second},
		wantToolCalls: map[string]int{"fetch_citation": 2},
	},
	{
		name: "override widens the budget for one tool",
		options: []retry.Option{
			retry.WithToolOverride("fetch_citation", retry.ToolOverride{
				MaxAttempts:  5,
				InitialDelay: 2 * time.Second,
			}),
		},
		script: func(m *tt.ScriptedModel) {
			m.Respond(toolTurn("t1", "fetch_citation", "lamport 1998")).
				Respond(tt.TextResponse("gave up"))
		},
		wantText: "gave up",
		wantDelays: []time.Duration{
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			16 * time.Second,
		},
		wantToolCalls: map[string]int{"fetch_citation": 5},
	},
	{
		name: "allow list restricts retry to named tools",
		options: []retry.Option{
			retry.WithToolMaxAttempts(3),
			retry.WithEnabledTools("search_paper"),
		},
		script: func(m *tt.ScriptedModel) {
			m.Respond(toolTurn("t1", "search_paper", "raft consensus")).
				Respond(toolTurn("t2", "send_email", "summary")).
				Respond(tt.TextResponse("sent"))
		},
		wantText: "sent",
		wantDelays: []time.Duration{
			1 * time.Second,
			2 * time.Second,
		},
		wantToolCalls: map[string]int{"search_paper": 3, "send_email": 1},
	},
	{
		name: "deny list blocks retry for named tools",
		options: []retry.Option{
			retry.WithToolMaxAttempts(3),
			retry.WithDisabledTools("send_email"),
		},
		script: func(m *tt.ScriptedModel) {
			m.Respond(toolTurn("t1", "send_email", "summary")).
				Respond(tt.TextResponse("could not send"))
		},
		wantText:      "could not send",
		wantToolCalls: map[string]int{"send_email": 1},
	},
	{
		name: "model and tool retries combine in one invocation",
		options: []retry.Option{
			retry.WithModelInitialDelay(time.Second),
			retry.WithToolMaxAttempts(5),
		},
		script: func(m *tt.ScriptedModel) {
			m.Fail(agentry.NewThrottledError("429 rate limited", nil)).
				Respond(toolTurn("t1", "search_paper", "raft consensus")).
				Respond(tt.TextResponse("all done"))
		},
		wantText: "all done",
		wantDelays: []time.Duration{
			1 * time.Second, // model throttle
			1 * time.Second, // first search_paper failure
			2 * time.Second, // second search_paper failure
		},
		wantToolCalls: map[string]int{"search_paper": 3},
		wantThrottles: 1,
	},
}
