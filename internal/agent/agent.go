// Package agent drives the function-calling loop: send the conversation to
// the model, execute any tools it requests, feed the results back, and repeat
// until the model produces a final text answer or the round limit is hit.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/daecheol96/funcagent/internal/conversation"
	"github.com/daecheol96/funcagent/internal/log"
	"github.com/daecheol96/funcagent/internal/tools"
	"github.com/daecheol96/funcagent/internal/vllm"
)

const defaultMaxToolRounds = 10

// partialNotice is appended to the answer when the round limit cuts a turn
// short with tool calls still pending.
const partialNotice = "(partial result: tool call limit reached before the request was fully resolved)"

// ModelClient is the slice of the inference client the agent needs.
type ModelClient interface {
	Complete(ctx context.Context, msgs []conversation.Message, tools []vllm.FunctionSchema) (*vllm.Response, error)
}

// ToolRunner is the slice of the tool registry the agent needs.
type ToolRunner interface {
	List() []tools.Tool
	Invoke(ctx context.Context, name, argsJSON string) (tools.Result, error)
}

// Config assembles an Agent.
type Config struct {
	Client        ModelClient
	Tools         ToolRunner
	MaxToolRounds int
	Logger        log.Logger
}

// Result is the outcome of one completed user turn.
type Result struct {
	// Response is the assistant's final text answer.
	Response string
	// ToolsUsed lists the tool names executed during the turn, in order,
	// with repeats.
	ToolsUsed []string
	// Partial is set when the round limit ended the turn before the model
	// finished calling tools.
	Partial bool
}

// Agent runs user turns against one model client and tool registry. Safe for
// concurrent use across different conversations; callers serialize turns on
// the same conversation.
type Agent struct {
	client    ModelClient
	tools     ToolRunner
	maxRounds int
	logger    log.Logger
}

// New creates an Agent.
func New(cfg Config) (*Agent, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("model client is required")
	}
	if cfg.Tools == nil {
		return nil, fmt.Errorf("tool runner is required")
	}

	maxRounds := cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Agent{
		client:    cfg.Client,
		tools:     cfg.Tools,
		maxRounds: maxRounds,
		logger:    logger,
	}, nil
}

// Chat runs one user turn.
//
// The user message commits to the conversation immediately. Everything the
// turn produces after that (assistant tool calls, tool results, the final
// answer) is staged locally and committed only when the turn succeeds, so a
// model failure mid-turn leaves the conversation with just the user message
// and the turn can be retried cleanly.
func (a *Agent) Chat(ctx context.Context, conv *conversation.Conversation, userMessage string) (Result, error) {
	conv.Append(conversation.Message{Role: conversation.RoleUser, Content: userMessage})

	schemas := a.schemas()

	var staged []conversation.Message
	var toolsUsed []string

	for round := 0; ; round++ {
		resp, err := a.client.Complete(ctx, append(conv.History(), staged...), schemas)
		if err != nil {
			a.logger.Error("model request failed", "round", round, "error", err)
			return Result{}, fmt.Errorf("model request: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			staged = append(staged, conversation.Message{
				Role:    conversation.RoleAssistant,
				Content: resp.Content,
			})
			conv.Append(staged...)
			return Result{Response: resp.Content, ToolsUsed: toolsUsed}, nil
		}

		if round >= a.maxRounds {
			// The model still wants tools but the budget is spent. Commit
			// what we have with a partial answer instead of executing more.
			a.logger.Warn("tool round limit reached", "max_rounds", a.maxRounds, "tools_used", len(toolsUsed))
			answer := resp.Content
			if answer == "" {
				answer = partialNotice
			} else {
				answer = answer + "\n\n" + partialNotice
			}
			staged = append(staged, conversation.Message{
				Role:    conversation.RoleAssistant,
				Content: answer,
			})
			conv.Append(staged...)
			return Result{Response: answer, ToolsUsed: toolsUsed, Partial: true}, nil
		}

		staged = append(staged, conversation.Message{
			Role:      conversation.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			output := a.runTool(ctx, call)
			toolsUsed = append(toolsUsed, call.Name)
			staged = append(staged, conversation.Message{
				Role:       conversation.RoleTool,
				Content:    output,
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}
}

// runTool executes one requested call and renders its outcome as the tool
// message content. All failures (unknown tool, bad arguments, execution
// errors) come back as error text for the model to react to; nothing here
// aborts the turn.
func (a *Agent) runTool(ctx context.Context, call conversation.ToolCall) string {
	res, err := a.tools.Invoke(ctx, call.Name, call.Arguments)
	if err != nil {
		a.logger.Warn("tool call rejected", "tool", call.Name, "error", err)
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			return fmt.Sprintf("error: tool %q does not exist", call.Name)
		case errors.Is(err, tools.ErrInvalidArguments):
			return fmt.Sprintf("error: invalid arguments for %q: %v", call.Name, err)
		default:
			return fmt.Sprintf("error: %v", err)
		}
	}
	if res.Err != nil {
		return fmt.Sprintf("error: %v", res.Err)
	}

	a.logger.Info("tool executed", "tool", call.Name, "output_size", len(res.Output))
	return res.Output
}

// schemas renders the registry into the wire tool descriptions.
func (a *Agent) schemas() []vllm.FunctionSchema {
	list := a.tools.List()
	out := make([]vllm.FunctionSchema, len(list))
	for i, t := range list {
		out[i] = vllm.FunctionSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		}
	}
	return out
}
