// Package loggers provides reusable logging hooks for integration testing.
package loggers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"gopkg.in/yaml.v3"

	"github.com/agentry-dev/agentry"
)

// LoggerHook implements all hook interfaces to log everything that happens
// during an invocation. Structured payloads are logged as YAML for easy
// reading; nothing is truncated.
type LoggerHook struct {
	out io.Writer
}

// NewLoggerHook creates a LoggerHook that writes to stdout.
func NewLoggerHook() *LoggerHook {
	return &LoggerHook{out: os.Stdout}
}

// NewLoggerHookWithWriter creates a LoggerHook that writes to the given writer.
func NewLoggerHookWithWriter(w io.Writer) *LoggerHook {
	return &LoggerHook{out: w}
}

func (h *LoggerHook) logEvent(name string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(h.out, "\n>>> [%s]: %s\n", name, timestamp)
}

func (h *LoggerHook) log(format string, args ...any) {
	fmt.Fprintf(h.out, format+"\n", args...)
}

func (h *LoggerHook) logYAML(v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		h.log("(failed to marshal: %v)", err)
		return
	}
	fmt.Fprint(h.out, string(data))
}

// OnBeforeInvocation logs invocation start.
func (h *LoggerHook) OnBeforeInvocation(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.BeforeInvocationEvent,
) {
	h.logEvent("BeforeInvocation")
	h.log("================================================================================")
	h.log("INVOCATION STARTED")
	h.log("================================================================================")
	if inv != nil {
		h.log("Name: %s", inv.Name())
	}
}

// OnAfterInvocation logs invocation completion with final stats.
func (h *LoggerHook) OnAfterInvocation(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.AfterInvocationEvent,
) {
	h.logEvent("AfterInvocation")
	h.log("================================================================================")
	h.log("INVOCATION COMPLETED")
	h.log("================================================================================")

	eventData := map[string]any{}
	if event.Err != nil {
		eventData["error"] = event.Err.Error()
	}
	for _, block := range event.Result {
		eventData["result"] = block.Text
		break
	}
	h.logYAML(eventData)

	if inv == nil {
		return
	}
	stats := inv.Stats()
	h.log("")
	h.log("Stats:")
	h.logYAML(map[string]any{
		"model_calls":        stats.ModelCalls,
		"model_retries":      stats.ModelRetries,
		"tool_calls":         stats.ToolCalls,
		"tool_retries":       stats.ToolRetries,
		"input_tokens":       stats.InputTokens,
		"output_tokens":      stats.OutputTokens,
		"tool_calls_by_name": stats.ToolCallsByName,
		"duration":           inv.Duration().String(),
	})
}

// OnBeforeModelCall logs the request before a model call.
func (h *LoggerHook) OnBeforeModelCall(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.BeforeModelCallEvent,
) {
	h.logEvent("BeforeModelCall")
	h.log("Request:")
	for i, msg := range event.Messages {
		h.log("  [%d] Role: %s", i, msg.Role)
		for _, part := range msg.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				h.log("      Content:")
				for _, line := range strings.Split(tc.Text, "\n") {
					h.log("        %s", line)
				}
			}
		}
	}
}

// OnAfterModelCall logs the response (or error) after a model call.
func (h *LoggerHook) OnAfterModelCall(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.AfterModelCallEvent,
) {
	h.logEvent("AfterModelCall")

	if event.Err != nil {
		h.log("Error: %v", event.Err)
		h.log("Retry: %v", event.Retry)
		return
	}

	resp := event.StopResponse
	if resp == nil {
		return
	}
	if resp.Content != "" {
		h.log("Content:")
		for _, line := range strings.Split(resp.Content, "\n") {
			h.log("  %s", line)
		}
	}
	h.log("StopReason: %s", resp.StopReason)
	for _, call := range resp.ToolCalls {
		h.log("ToolCall: %s (%s)", call.Name, call.ToolUseID)
	}
	h.log("Tokens: input=%d, output=%d, total=%d",
		resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens)
}

// OnBeforeToolCall logs the tool call before execution.
func (h *LoggerHook) OnBeforeToolCall(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.BeforeToolCallEvent,
) {
	h.logEvent(fmt.Sprintf("BeforeToolCall: %s", event.ToolUse.Name))
	h.log("Input:")
	h.logYAML(event.ToolUse.Input)
}

// OnAfterToolCall logs the tool call result after execution.
func (h *LoggerHook) OnAfterToolCall(
	ctx context.Context,
	inv *agentry.InvocationContext,
	event *agentry.AfterToolCallEvent,
) {
	h.logEvent(fmt.Sprintf("AfterToolCall: %s", event.ToolUse.Name))

	if event.Err != nil {
		h.log("Error: %v", event.Err)
		h.log("Retry: %v", event.Retry)
		return
	}
	if event.Result != nil {
		h.log("Status: %s", event.Result.Status)
		h.log("Output:")
		h.logYAML(event.Result.FirstText())
	}
	h.log("Retry: %v", event.Retry)
}

// Compile-time checks that LoggerHook implements all hook interfaces.
var (
	_ agentry.BeforeInvocationHook = (*LoggerHook)(nil)
	_ agentry.AfterInvocationHook  = (*LoggerHook)(nil)
	_ agentry.BeforeModelCallHook  = (*LoggerHook)(nil)
	_ agentry.AfterModelCallHook   = (*LoggerHook)(nil)
	_ agentry.BeforeToolCallHook   = (*LoggerHook)(nil)
	_ agentry.AfterToolCallHook    = (*LoggerHook)(nil)
)
