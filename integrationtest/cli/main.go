// Package main is an interactive harness for exercising retry scenarios
// against a scripted model, with full event logging.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/tmc/langchaingo/llms"

	"github.com/agentry-dev/agentry"
	"github.com/agentry-dev/agentry/executor"
	"github.com/agentry-dev/agentry/integrationtest/loggers"
	"github.com/agentry-dev/agentry/retry"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

// session holds the mutable harness state between commands.
type session struct {
	throttles  int // model throttles before success
	flakyFails int // tool failures before success
	policyPath string
	realSleep  bool
}

func run() error {
	rl, err := readline.New(colorCyan + "agentry> " + colorReset)
	if err != nil {
		return fmt.Errorf("create readline: %w", err)
	}
	defer rl.Close()

	s := &session{throttles: 2, flakyFails: 2}
	printHelp()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "q", "quit", "exit":
			return nil
		case "help":
			printHelp()
		case "throttles":
			s.setCount(&s.throttles, fields)
		case "failures":
			s.setCount(&s.flakyFails, fields)
		case "policy":
			if len(fields) < 2 {
				fmt.Println("usage: policy <path/to/retry.yaml>")
				continue
			}
			s.policyPath = fields[1]
			fmt.Printf("%spolicy file: %s%s\n", colorGreen, s.policyPath, colorReset)
		case "sleep":
			s.realSleep = !s.realSleep
			fmt.Printf("real backoff sleeps: %v\n", s.realSleep)
		case "run":
			prompt := "look up the answer"
			if len(fields) > 1 {
				prompt = strings.Join(fields[1:], " ")
			}
			if err := s.runOnce(prompt); err != nil {
				fmt.Printf("%s%v%s\n", colorRed, err, colorReset)
			}
		default:
			fmt.Printf("unknown command %q (try 'help')\n", fields[0])
		}
	}
}

func (s *session) setCount(target *int, fields []string) {
	if len(fields) < 2 {
		fmt.Printf("current value: %d\n", *target)
		return
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		fmt.Println("expected a non-negative number")
		return
	}
	*target = n
}

// runOnce builds a fresh scripted scenario from the session settings and
// executes it with the logger hook attached.
func (s *session) runOnce(prompt string) error {
	opts := []retry.Option{
		retry.WithModelInitialDelay(time.Second),
		retry.WithToolMaxAttempts(s.flakyFails + 1),
	}
	if s.policyPath != "" {
		cfg, err := retry.LoadConfig(s.policyPath)
		if err != nil {
			return err
		}
		opts = append(cfg.Options(), opts...)
	}
	if !s.realSleep {
		opts = append(opts, retry.WithSleep(announceSleep))
	}

	strategy, err := retry.New(opts...)
	if err != nil {
		return err
	}

	model := newScriptedScenario(s.throttles)
	flaky := newFlakySearch(s.flakyFails)

	exec := executor.New(model).
		RegisterTool(flaky).
		RegisterHook(strategy).
		RegisterHook(loggers.NewLoggerHook())

	inv := agentry.NewInvocationContext(context.Background(), "cli")
	result, err := exec.Run(inv, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		return err
	}
	for _, block := range result {
		fmt.Printf("\n%s%s%s\n", colorGreen, block.Text, colorReset)
	}
	return nil
}

// announceSleep prints the delay the strategy would have waited instead of
// actually waiting.
func announceSleep(_ context.Context, d time.Duration) error {
	fmt.Printf("%s(backoff: would sleep %s)%s\n", colorYellow, d, colorReset)
	return nil
}

// scriptedScenario throttles a fixed number of times, requests one search,
// then answers.
type scriptedScenario struct {
	throttles int
	calls     int
}

func newScriptedScenario(throttles int) *scriptedScenario {
	return &scriptedScenario{throttles: throttles}
}

func (m *scriptedScenario) Generate(
	_ context.Context,
	_ *agentry.InvocationContext,
	_ []llms.MessageContent,
	_ ...llms.CallOption,
) (*agentry.ModelResponse, error) {
	m.calls++
	switch {
	case m.calls <= m.throttles:
		return nil, agentry.NewThrottledError("429 too many requests", nil)
	case m.calls == m.throttles+1:
		return &agentry.ModelResponse{
			StopReason: agentry.StopReasonToolUse,
			ToolCalls: []*agentry.ToolUse{{
				ToolUseID: "cli-1",
				Name:      "search",
				Input:     map[string]any{"query": "the answer"},
			}},
		}, nil
	default:
		return &agentry.ModelResponse{
			Content:    "The answer is 42.",
			StopReason: agentry.StopReasonEndTurn,
			Usage:      agentry.Usage{InputTokens: 20, OutputTokens: 8, TotalTokens: 28},
		}, nil
	}
}

// newFlakySearch builds a search tool that fails its first n calls.
func newFlakySearch(n int) agentry.Tool {
	var calls int
	return agentry.NewToolFunc("search", "searches the index", nil,
		func(_ context.Context, input map[string]any) (*agentry.ToolResult, error) {
			calls++
			if calls <= n {
				return agentry.ErrorResult(fmt.Sprintf("upstream timeout (call %d)", calls)), nil
			}
			return agentry.TextResult(fmt.Sprintf("results for %v", input["query"])), nil
		})
}

func printHelp() {
	fmt.Print(`Commands:
  throttles [n]   model throttles before success (default 2)
  failures [n]    search tool failures before success (default 2)
  policy <path>   load retry settings from a YAML policy file
  sleep           toggle real backoff sleeps (default: announced, not slept)
  run [prompt]    run one invocation with the current settings
  help            show this help
  q               quit
`)
}
