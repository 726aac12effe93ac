package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"goa.design/clue/log"
	"golang.org/x/sync/errgroup"

	"github.com/agentry-dev/agentry"
	"github.com/agentry-dev/agentry/hooks"
	"github.com/agentry-dev/agentry/recovery"
	"github.com/agentry-dev/agentry/schema"
)

// DefaultMaxIterations caps the number of model/tool rounds in one invocation.
const DefaultMaxIterations = 25

// ErrMaxIterationsExceeded is returned when an invocation keeps requesting
// tool calls past the configured iteration cap.
var ErrMaxIterationsExceeded = errors.New("executor: max iterations exceeded")

// ErrNoModel is returned by Run when the executor was built without a model.
var ErrNoModel = errors.New("executor: no model configured")

// Executor drives the model/tool loop for one or more invocations.
//
// The Executor is responsible for:
//   - Calling the model repeatedly until it stops requesting tools
//   - Dispatching requested tool calls (concurrently within a round)
//   - Firing lifecycle hooks at each step and honoring their Retry claims
//
// Retry behavior lives entirely in hooks: when an AfterModelCall or
// AfterToolCall hook sets Retry, the executor re-issues that call with the
// same inputs. The executor itself never inspects errors for retryability.
type Executor struct {
	model         agentry.Model
	tools         map[string]agentry.Tool
	hooks         *hooks.Registry
	maxIterations int

	// registerErr collects tool registration failures; Run reports them
	// because the chaining builder methods cannot.
	registerErr error
}

// New creates an Executor for the given model.
func New(model agentry.Model) *Executor {
	return &Executor{
		model:         model,
		tools:         make(map[string]agentry.Tool),
		hooks:         hooks.NewRegistry(),
		maxIterations: DefaultMaxIterations,
	}
}

// WithHooks replaces the executor's hook registry with the provided one.
// Use this when you need to share a registry across multiple executors.
// Returns the executor for chaining.
func (e *Executor) WithHooks(h *hooks.Registry) *Executor {
	e.hooks = h
	return e
}

// RegisterHook adds a hook to the executor's existing hook registry.
// The hook can implement any combination of hook interfaces.
// Returns the executor for chaining.
//
// Example:
//
//	strategy, _ := retry.New(retry.WithToolMaxAttempts(2))
//	exec := executor.New(model).
//	    RegisterHook(strategy).
//	    RegisterHook(&LoggerHook{})
func (e *Executor) RegisterHook(hook any) *Executor {
	e.hooks.Register(hook)
	return e
}

// RegisterTool makes a tool available to the model by name. The tool's
// parameter schema is compiled once here so a malformed schema is rejected
// at registration rather than surfacing mid-conversation; the error is
// reported by Run. Returns the executor for chaining.
func (e *Executor) RegisterTool(tool agentry.Tool) *Executor {
	if _, err := schema.Compile(tool.ParameterSchema()); err != nil {
		e.registerErr = errors.Join(e.registerErr,
			fmt.Errorf("register tool %q: %w", tool.Name(), err))
		return e
	}
	e.tools[tool.Name()] = tool
	return e
}

// WithMaxIterations sets the model/tool round cap. Values below one are
// ignored. Returns the executor for chaining.
func (e *Executor) WithMaxIterations(n int) *Executor {
	if n > 0 {
		e.maxIterations = n
	}
	return e
}

// Tools returns the registered tools keyed by name.
func (e *Executor) Tools() map[string]agentry.Tool {
	return e.tools
}

// Run executes one invocation until the model produces a final answer.
//
// The flow:
//  1. Fire BeforeInvocation.
//  2. Call the model; re-issue the call while an AfterModelCall hook
//     claims a retry.
//  3. If the model requested tools, run them (concurrently within the
//     round, with the same per-call retry handling), append the results
//     to the conversation, and go to 2.
//  4. Fire AfterInvocation with the final result or error, exactly once,
//     and close the invocation's event streams.
//
// A response stopped on the max-token limit has incomplete tool uses
// scrubbed and is returned as a *agentry.MaxTokensError holding the
// cleaned response.
func (e *Executor) Run(
	inv *agentry.InvocationContext,
	messages []llms.MessageContent,
) (result []agentry.ContentBlock, err error) {
	if e.model == nil {
		return nil, ErrNoModel
	}
	if e.registerErr != nil {
		return nil, e.registerErr
	}

	ctx := inv.Context()

	defer func() {
		inv.SetResult(result, err)
		after := &agentry.AfterInvocationEvent{Result: result, Err: err}
		e.hooks.FireAfterInvocation(ctx, inv, after)
		inv.Publish(after)
		inv.Close()
	}()

	before := &agentry.BeforeInvocationEvent{}
	e.hooks.FireBeforeInvocation(ctx, inv, before)
	inv.Publish(before)

	for iteration := 0; iteration < e.maxIterations; iteration++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		resp, modelErr := e.callModel(ctx, inv, messages)
		if modelErr != nil {
			return nil, fmt.Errorf("model call (iteration %d): %w", iteration+1, modelErr)
		}

		if resp.StopReason == agentry.StopReasonMaxTokens {
			cleaned := recovery.CleanResponse(resp)
			return contentBlocks(cleaned), &agentry.MaxTokensError{Response: cleaned}
		}

		if resp.StopReason == agentry.StopReasonToolUse && len(resp.ToolCalls) > 0 {
			log.Debug(ctx,
				log.KV{K: "iteration", V: iteration + 1},
				log.KV{K: "tool_calls", V: len(resp.ToolCalls)},
				log.KV{K: "msg", V: "running tool round"})
			messages = append(messages, assistantToolMessage(resp))
			results := e.runToolRound(ctx, inv, resp.ToolCalls)
			messages = append(messages, toolResultMessages(resp.ToolCalls, results)...)
			continue
		}

		return contentBlocks(resp), nil
	}

	log.Debug(ctx,
		log.KV{K: "max_iterations", V: e.maxIterations},
		log.KV{K: "msg", V: "iteration cap reached"})
	return nil, ErrMaxIterationsExceeded
}

// contentBlocks wraps a response's text as the invocation result.
func contentBlocks(resp *agentry.ModelResponse) []agentry.ContentBlock {
	if resp.Content == "" {
		return nil
	}
	return []agentry.ContentBlock{{Text: resp.Content}}
}

// callModel issues one logical model call, re-issuing it while an
// AfterModelCall hook claims a retry. Events are published to the
// invocation's stream after hooks have settled the Retry flag.
func (e *Executor) callModel(
	ctx context.Context,
	inv *agentry.InvocationContext,
	messages []llms.MessageContent,
) (*agentry.ModelResponse, error) {
	for {
		before := &agentry.BeforeModelCallEvent{Messages: messages}
		e.hooks.FireBeforeModelCall(ctx, inv, before)
		inv.Publish(before)

		resp, err := e.model.Generate(ctx, inv, messages)

		after := &agentry.AfterModelCallEvent{StopResponse: resp, Err: err}
		e.hooks.FireAfterModelCall(ctx, inv, after)
		inv.Publish(after)

		if after.Retry {
			continue
		}
		return resp, err
	}
}

// runToolRound runs every requested tool call of one model response.
// Calls run concurrently; results line up with the requests by index.
func (e *Executor) runToolRound(
	ctx context.Context,
	inv *agentry.InvocationContext,
	calls []*agentry.ToolUse,
) []*agentry.ToolResult {
	results := make([]*agentry.ToolResult, len(calls))
	var g errgroup.Group
	for i, call := range calls {
		g.Go(func() error {
			results[i] = e.callTool(ctx, inv, call)
			return nil
		})
	}
	// Tool failures never surface as group errors; they become error results.
	_ = g.Wait()
	return results
}

// callTool issues one logical tool call, re-issuing it while an
// AfterToolCall hook claims a retry. An exhausted retry sequence returns
// the last failure unmodified.
func (e *Executor) callTool(
	ctx context.Context,
	inv *agentry.InvocationContext,
	use *agentry.ToolUse,
) *agentry.ToolResult {
	if use.ToolUseID == "" {
		use.ToolUseID = uuid.NewString()
	}

	tool, ok := e.tools[use.Name]
	if !ok {
		return agentry.ErrorResult(fmt.Sprintf("unknown tool: %s", use.Name))
	}

	for {
		before := &agentry.BeforeToolCallEvent{ToolUse: use}
		e.hooks.FireBeforeToolCall(ctx, inv, before)
		inv.Publish(before)

		result, err := tool.Call(ctx, use.Input)
		if result == nil {
			if err != nil {
				result = agentry.ErrorResult(err.Error())
			} else {
				result = agentry.TextResult("")
			}
		}

		after := &agentry.AfterToolCallEvent{ToolUse: use, Result: result, Err: err}
		e.hooks.FireAfterToolCall(ctx, inv, after)
		inv.Publish(after)

		if after.Retry {
			continue
		}
		return result
	}
}

// assistantToolMessage rebuilds the assistant turn that requested tools so
// the requests stay in the conversation ahead of their results.
func assistantToolMessage(resp *agentry.ModelResponse) llms.MessageContent {
	msg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	if resp.Content != "" {
		msg.Parts = append(msg.Parts, llms.TextPart(resp.Content))
	}
	for _, call := range resp.ToolCalls {
		args, _ := json.Marshal(call.Input)
		msg.Parts = append(msg.Parts, llms.ToolCall{
			ID:   call.ToolUseID,
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      call.Name,
				Arguments: string(args),
			},
		})
	}
	return msg
}

// toolResultMessages converts a round's results into tool-role messages.
func toolResultMessages(
	calls []*agentry.ToolUse,
	results []*agentry.ToolResult,
) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(results))
	for i, result := range results {
		msgs = append(msgs, llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{
					ToolCallID: calls[i].ToolUseID,
					Name:       calls[i].Name,
					Content:    result.FirstText(),
				},
			},
		})
	}
	return msgs
}
