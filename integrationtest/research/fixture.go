// Package research is an integration scenario: a research assistant whose
// search tools fail transiently and whose model gets rate limited, exercising
// the combined retry strategy end to end against a scripted model.
package research

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentry-dev/agentry"
	"github.com/agentry-dev/agentry/executor"
	"github.com/agentry-dev/agentry/retry"
	"github.com/agentry-dev/agentry/schema"

	"github.com/agentry-dev/agentry/integrationtest/testutil"
	"github.com/agentry-dev/agentry/internal/tt"
)

// Fixture wires a scripted model, the scenario tools, and a retry strategy
// into an executor ready to run one invocation.
type Fixture struct {
	Model    *tt.ScriptedModel
	Exec     *executor.Executor
	Strategy *retry.Strategy
	Sleeps   *testutil.SleepRecorder

	mu        sync.Mutex
	toolCalls map[string]int
}

// NewFixture builds the scenario around the given retry options. Backoff
// sleeps are recorded, not slept.
func NewFixture(opts ...retry.Option) (*Fixture, error) {
	f := &Fixture{
		Model:     tt.NewScriptedModel(),
		Sleeps:    &testutil.SleepRecorder{},
		toolCalls: make(map[string]int),
	}

	strategy, err := retry.New(append(opts, retry.WithSleep(f.Sleeps.Sleep))...)
	if err != nil {
		return nil, err
	}
	f.Strategy = strategy

	f.Exec = executor.New(f.Model).
		RegisterHook(strategy).
		RegisterTool(f.flakyTool("search_paper", 2)).
		RegisterTool(f.flakyTool("fetch_citation", 100)).
		RegisterTool(f.sendEmailTool())
	return f, nil
}

// ToolCalls returns how many times the named tool ran.
func (f *Fixture) ToolCalls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.toolCalls[name]
}

func (f *Fixture) countCall(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toolCalls[name]++
	return f.toolCalls[name]
}

// flakyTool fails its first failures calls with an error-status result and
// succeeds afterwards.
func (f *Fixture) flakyTool(name string, failures int) agentry.Tool {
	params := schema.Object(map[string]*schema.Property{
		"query": schema.String("What to look for"),
	}, "query")

	return agentry.NewToolFunc(name, "searches the research index", params,
		func(_ context.Context, input map[string]any) (*agentry.ToolResult, error) {
			n := f.countCall(name)
			if n <= failures {
				return agentry.ErrorResult(fmt.Sprintf("%s: upstream timeout (call %d)", name, n)), nil
			}
			return agentry.TextResult(fmt.Sprintf("%s results for %v", name, input["query"])), nil
		})
}

// sendEmailTool always fails. It exists to verify that deny-listed tools are
// never retried, whatever the global policy says.
func (f *Fixture) sendEmailTool() agentry.Tool {
	params := schema.Object(map[string]*schema.Property{
		"to":   schema.String("Recipient address").Format("email"),
		"body": schema.String("Message body"),
	}, "to", "body")

	return agentry.NewToolFunc("send_email", "sends a summary email", params,
		func(_ context.Context, _ map[string]any) (*agentry.ToolResult, error) {
			f.countCall("send_email")
			return agentry.ErrorResult("smtp: connection reset"), nil
		})
}

// toolTurn scripts a model turn requesting one tool call.
func toolTurn(id, name, query string) *agentry.ModelResponse {
	return tt.ToolCallResponse(&agentry.ToolUse{
		ToolUseID: id,
		Name:      name,
		Input:     map[string]any{"query": query},
	})
}
