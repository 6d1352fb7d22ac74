package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/davidvonthenen/a2a-simple/logging"
	"github.com/davidvonthenen/a2a-simple/model"
	"github.com/davidvonthenen/a2a-simple/session"
	"github.com/davidvonthenen/a2a-simple/tool"
)

// DefaultMaxToolIterations bounds how many times a single invocation may
// re-ask the model after resolving function calls.
const DefaultMaxToolIterations = 5

// DefaultFallback is returned when the model produces no usable text.
const DefaultFallback = "I was unable to generate a response."

// ChatAgentOptions configures a ChatAgent instance.
//
// Use functional options with NewChatAgent to override defaults.
type ChatAgentOptions struct {
	Tools             []tool.Tool
	Fallback          string
	MaxToolIterations int
	Logger            logging.Logger
}

// Result is the outcome of one agent invocation.
type Result struct {
	Content          string // Final reply text (never empty; fallback applies)
	TaskComplete     bool   // Whether the agent considers the request done
	RequireUserInput bool   // Whether the agent needs more input to proceed
}

// ChatAgent answers one user query per invocation with a hosted chat model.
//
// Each invocation assembles the system instruction, the stored conversation
// history for the context and the new query, and calls the model once. When
// tools are configured and the model requests function calls, the agent
// resolves them and re-asks, bounded by MaxToolIterations. The user/assistant
// exchange is appended to the session store so follow-up turns in the same
// context see it.
//
// ChatAgent holds no per-request state and is safe for concurrent use.
type ChatAgent struct {
	name              string
	instruction       string
	llm               model.Model
	history           session.Store
	tools             []tool.Tool
	fallback          string
	maxToolIterations int
	logger            logging.Logger
}

// NewChatAgent creates a conversational agent with sensible defaults: no
// tools, the standard fallback reply and a five-iteration tool loop bound.
func NewChatAgent(name, instruction string, llm model.Model, history session.Store, optFns ...func(o *ChatAgentOptions)) *ChatAgent {
	opts := ChatAgentOptions{
		Fallback:          DefaultFallback,
		MaxToolIterations: DefaultMaxToolIterations,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ChatAgent{
		name:              name,
		instruction:       instruction,
		llm:               llm,
		history:           history,
		tools:             opts.Tools,
		fallback:          opts.Fallback,
		maxToolIterations: opts.MaxToolIterations,
		logger:            opts.Logger,
	}
}

// Name returns the agent's display name.
func (a *ChatAgent) Name() string { return a.name }

// RegisterTool adds a function tool to the agent's capability set.
//
// Registered tools become available for the model to call during
// invocations. Tools should implement the tool.Tool interface with proper
// JSON schema definitions.
func (a *ChatAgent) RegisterTool(t tool.Tool) {
	a.tools = append(a.tools, t)
}

// RegisterTools adds multiple tools to the agent's capability set.
func (a *ChatAgent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// ListTools returns the names of all registered tools.
func (a *ChatAgent) ListTools() []string {
	names := make([]string, 0, len(a.tools))
	for _, t := range a.tools {
		names = append(names, t.Name())
	}

	return names
}

// Invoke answers a single user query within the given conversation context.
//
// A model failure is returned unchanged so callers can decide how to surface
// it; every successful invocation reports a complete task.
func (a *ChatAgent) Invoke(ctx context.Context, query, contextID string) (*Result, error) {
	start := time.Now()

	turns, err := a.history.History(contextID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	contents := make([]model.Content, 0, len(turns)+1)
	contents = append(contents, turns...)
	contents = append(contents, model.NewUserContent(query))

	req := model.Request{
		Instructions: a.instruction,
		Contents:     contents,
		Tools:        tool.Definitions(a.tools),
	}

	a.logger.Debug(
		"agent.invoke.start",
		"agent", a.name,
		"context_id", contextID,
		"history_turns", len(turns),
		"tools", len(a.tools),
	)

	resp, err := a.llm.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	for iteration := 0; len(resp.Content.FunctionCalls()) > 0; iteration++ {
		if iteration >= a.maxToolIterations {
			a.logger.Warn(
				"agent.tool_loop.limit",
				"agent", a.name,
				"context_id", contextID,
				"iterations", a.maxToolIterations,
			)

			break
		}

		calls := resp.Content.FunctionCalls()

		req.Contents = append(req.Contents, resp.Content)

		responses := make([]model.FunctionResponse, 0, len(calls))
		for _, call := range calls {
			responses = append(responses, a.executeCall(ctx, call))
		}

		req.Contents = append(req.Contents, model.NewToolContent(responses...))

		resp, err = a.llm.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	reply := strings.TrimSpace(resp.Content.Text())
	if reply == "" {
		reply = a.fallback
	}

	if err := a.history.Append(contextID, model.NewUserContent(query), model.NewAssistantContent(reply)); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	a.logger.Info(
		"agent.invoke.complete",
		"agent", a.name,
		"context_id", contextID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{Content: reply, TaskComplete: true, RequireUserInput: false}, nil
}

// executeCall resolves one requested function call. Failures become the
// function response payload so the model can react instead of the turn
// aborting.
func (a *ChatAgent) executeCall(ctx context.Context, call model.FunctionCall) model.FunctionResponse {
	t := a.findTool(call.Name)
	if t == nil {
		a.logger.Warn("agent.tool.unknown", "agent", a.name, "tool", call.Name)

		return model.FunctionResponse{ID: call.ID, Name: call.Name, Error: fmt.Sprintf("tool %s not found", call.Name)}
	}

	args := make(map[string]any)
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return model.FunctionResponse{ID: call.ID, Name: call.Name, Error: fmt.Sprintf("invalid tool arguments: %v", err)}
		}
	}

	start := time.Now()
	result, err := t.Call(ctx, args)

	a.logger.Info(
		"agent.tool.executed",
		"agent", a.name,
		"tool", call.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	if err != nil {
		return model.FunctionResponse{ID: call.ID, Name: call.Name, Error: err.Error()}
	}

	return model.FunctionResponse{ID: call.ID, Name: call.Name, Response: result}
}

func (a *ChatAgent) findTool(name string) tool.Tool {
	for _, t := range a.tools {
		if t.Name() == name {
			return t
		}
	}

	return nil
}
