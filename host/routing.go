package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/davidvonthenen/a2a-simple/a2a"
	"github.com/davidvonthenen/a2a-simple/a2aclient"
	"github.com/davidvonthenen/a2a-simple/internal/httputil"
	"github.com/davidvonthenen/a2a-simple/logging"
	"github.com/davidvonthenen/a2a-simple/model"
	"github.com/davidvonthenen/a2a-simple/session"
)

// routingInstruction steers the planner toward the JSON decision format. The
// agent roster and the decision shapes are appended per turn.
const routingInstruction = "You are a routing assistant coordinating specialized agents. " +
	"Decide whether to answer the user directly or delegate to one of the remote agents. " +
	"Respond with JSON only."

// summaryInstruction rewrites a remote agent's raw output into a reply the
// host can hand back to the user.
const summaryInstruction = "You are the host assistant. Summarize the remote agent's reply for the user. " +
	"If the remote agent output is empty, politely inform the user that the specialist " +
	"did not return any information."

// Planner decision actions. Anything else falls through to a direct reply.
const (
	actionDelegate = "delegate"
	actionAskUser  = "ask_user"
	actionRespond  = "respond"
)

// Reply kinds emitted while handling one user turn.
const (
	ReplyKindStatus = "status" // Progress note, e.g. "Delegating to ..."
	ReplyKindReply  = "reply"  // Assistant reply text
	ReplyKindError  = "error"  // Turn failed; text holds a user-safe notice
)

// Reply is one host response produced while handling a user turn. A turn
// yields one or two replies: delegation emits a status line first, every
// other path emits a single reply.
type Reply struct {
	Kind string `json:"type"`
	Text string `json:"text"`
}

// AgentInfo summarizes one registered remote agent.
type AgentInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RemoteConnection pairs a discovered agent card with the client used to
// reach the agent.
type RemoteConnection struct {
	Card   a2a.AgentCard
	Client *a2aclient.Client
}

// RoutingAgentOptions configures a RoutingAgent instance.
type RoutingAgentOptions struct {
	// History stores the host-side conversation per UI session. Defaults to
	// an in-memory store.
	History session.Store
	// HTTPClient is shared by card resolution and remote agent calls.
	// Defaults to a pooled client sized for slow remote agents.
	HTTPClient *http.Client
	// Logger receives routing telemetry. Defaults to a no-op logger.
	Logger logging.Logger
}

// RoutingAgent coordinates a set of remote A2A agents behind one chat
// surface. Each user turn is planned with the model: the planner either
// answers directly, asks the user for more detail, or delegates the task to
// one remote agent and summarizes that agent's reply.
//
// Remote agents are registered once via Discover; the roster is read-only
// afterwards. Per-session state (conversation history and the remote context
// ids carried across delegations) is keyed by the caller's session id, so a
// single RoutingAgent serves any number of concurrent sessions.
type RoutingAgent struct {
	llm        model.Model
	history    session.Store
	httpClient *http.Client
	logger     logging.Logger

	mu          sync.RWMutex
	connections map[string]*RemoteConnection
	roster      []string // registration order, drives prompt listing
	contextIDs  map[contextKey]string
}

// contextKey identifies the remote conversation thread one UI session holds
// with one remote agent.
type contextKey struct {
	sessionID string
	agent     string
}

// NewRoutingAgent creates a host agent with no remote connections. Call
// Discover to register remote agents before handling traffic; without any the
// planner can still answer directly.
func NewRoutingAgent(llm model.Model, optFns ...func(o *RoutingAgentOptions)) *RoutingAgent {
	opts := RoutingAgentOptions{
		History: session.NewInMemoryStore(),
		Logger:  logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = httputil.NewClient(httputil.DefaultConnectTimeout, httputil.DefaultResponseTimeout)
	}

	return &RoutingAgent{
		llm:         llm,
		history:     opts.History,
		httpClient:  httpClient,
		logger:      opts.Logger,
		connections: make(map[string]*RemoteConnection),
		contextIDs:  make(map[contextKey]string),
	}
}

// Discover resolves the agent card at each address and registers a connection
// for every reachable agent, keyed by card name. Unreachable addresses are
// logged and skipped so the host comes up with whatever subset answered.
func (a *RoutingAgent) Discover(ctx context.Context, addresses ...string) {
	for _, address := range addresses {
		resolver := a2aclient.NewCardResolver(address, func(o *a2aclient.CardResolverOptions) {
			o.HTTPClient = a.httpClient
		})

		card, err := resolver.Resolve(ctx)
		if err != nil {
			a.logger.Error("host.discover.failed", "url", address, "error", err.Error())
			continue
		}

		client := a2aclient.New(address, func(o *a2aclient.Options) {
			o.HTTPClient = a.httpClient
			o.Logger = a.logger
		})

		a.mu.Lock()
		if _, exists := a.connections[card.Name]; !exists {
			a.roster = append(a.roster, card.Name)
		}
		a.connections[card.Name] = &RemoteConnection{Card: *card, Client: client}
		a.mu.Unlock()

		a.logger.Info("host.discover.registered", "agent", card.Name, "url", address)
	}
}

// RemoteAgents lists the registered remote agents in registration order.
func (a *RoutingAgent) RemoteAgents() []AgentInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()

	agents := make([]AgentInfo, 0, len(a.roster))
	for _, name := range a.roster {
		agents = append(agents, AgentInfo{
			Name:        name,
			Description: a.connections[name].Card.Description,
		})
	}

	return agents
}

// HandleMessage runs one user turn: plan, then answer, ask back, or delegate
// and summarize. The ordered replies are returned and, when emit is non-nil,
// also forwarded one by one as they materialize so callers can stream
// progress (the delegation status line arrives before the remote round trip
// completes).
//
// Remote failures never fail the turn; they surface as an empty remote output
// for the summarizer to explain. A model failure is returned unchanged with
// the replies emitted so far.
func (a *RoutingAgent) HandleMessage(ctx context.Context, message, sessionID string, emit func(Reply)) ([]Reply, error) {
	start := time.Now()

	plan, err := a.planAction(ctx, message, sessionID)
	if err != nil {
		return nil, err
	}

	var replies []Reply
	push := func(r Reply) {
		replies = append(replies, r)
		if emit != nil {
			emit(r)
		}
	}

	switch plan.Action {
	case actionDelegate:
		if plan.Agent == "" || plan.Task == "" {
			fallback := "I could not determine which specialist to use. Could you rephrase your request?"
			if err := a.appendAssistant(sessionID, fallback); err != nil {
				return replies, err
			}
			push(Reply{Kind: ReplyKindReply, Text: fallback})
			return replies, nil
		}

		push(Reply{Kind: ReplyKindStatus, Text: fmt.Sprintf("Delegating to %s...", plan.Agent)})

		task := a.sendToAgent(ctx, plan.Agent, plan.Task, sessionID)
		output := extractTaskOutput(task)

		summary, err := a.summarize(ctx, message, plan.Agent, output, sessionID)
		if err != nil {
			return replies, err
		}
		push(Reply{Kind: ReplyKindReply, Text: summary})
	case actionAskUser:
		question := plan.Question
		if question == "" {
			question = "Could you share more details?"
		}
		if err := a.appendAssistant(sessionID, question); err != nil {
			return replies, err
		}
		push(Reply{Kind: ReplyKindReply, Text: question})
	default:
		reply := plan.Message
		if reply == "" {
			reply = "I'm not sure how to help with that."
		}
		if err := a.appendAssistant(sessionID, reply); err != nil {
			return replies, err
		}
		push(Reply{Kind: ReplyKindReply, Text: reply})
	}

	a.logger.Info(
		"host.turn.complete",
		"session_id", sessionID,
		"action", plan.Action,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return replies, nil
}

// routePlan is the planner's decision for one turn.
type routePlan struct {
	Action   string `json:"action"`
	Agent    string `json:"agent"`
	Task     string `json:"task"`
	Question string `json:"question"`
	Message  string `json:"message"`
}

// planAction asks the model for the turn's routing decision. Output that is
// not a JSON decision object is downgraded to a direct reply carrying the raw
// text. The user message joins the session history once the model answered.
func (a *RoutingAgent) planAction(ctx context.Context, message, sessionID string) (routePlan, error) {
	turns, err := a.history.History(sessionID)
	if err != nil {
		return routePlan{}, fmt.Errorf("load history: %w", err)
	}

	contents := make([]model.Content, 0, len(turns)+1)
	contents = append(contents, turns...)
	contents = append(contents, model.NewUserContent(message))

	req := model.Request{
		Instructions: a.planInstructions(),
		Contents:     contents,
	}

	a.logger.Debug("host.plan.start", "session_id", sessionID, "history_turns", len(turns))

	resp, err := a.llm.Generate(ctx, req)
	if err != nil {
		return routePlan{}, err
	}

	if err := a.history.Append(sessionID, model.NewUserContent(message)); err != nil {
		return routePlan{}, fmt.Errorf("append history: %w", err)
	}

	raw := resp.Content.Text()
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}

	var plan routePlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		a.logger.Warn("host.plan.invalid_json", "session_id", sessionID, "raw", raw)
		return routePlan{Action: actionRespond, Message: raw}, nil
	}

	return plan, nil
}

// planInstructions builds the planner system prompt: preamble, the current
// agent roster and the three decision shapes.
func (a *RoutingAgent) planInstructions() string {
	a.mu.RLock()
	lines := make([]string, 0, len(a.roster))
	for _, name := range a.roster {
		description := a.connections[name].Card.Description
		if description == "" {
			description = "No description provided."
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", name, description))
	}
	a.mu.RUnlock()

	agents := strings.Join(lines, "\n")
	if agents == "" {
		agents = "- No remote agents available"
	}

	return routingInstruction + "\n\nAvailable agents:\n" + agents + "\n\n" +
		"Respond with one of the following JSON structures:\n" +
		`{"action": "delegate", "agent": "Agent Name", "task": "Detailed task"}` + "\n" +
		`{"action": "ask_user", "question": "Clarifying question"}` + "\n" +
		`{"action": "respond", "message": "Assistant reply"}`
}

// sendToAgent forwards the task text to the named remote agent over
// message/send and returns the resulting task. Any failure (unknown agent,
// transport or protocol error, non-task result) is logged and reported as
// nil; the caller treats that as an empty remote output.
//
// The remote context id returned with the task is remembered per
// (session, agent) pair and sent on follow-up delegations so the remote
// agent sees one continuous conversation per UI session.
func (a *RoutingAgent) sendToAgent(ctx context.Context, agentName, task, sessionID string) *a2a.Task {
	a.mu.RLock()
	connection := a.connections[agentName]
	a.mu.RUnlock()

	if connection == nil {
		a.logger.Error("host.delegate.unknown_agent", "agent", agentName)
		return nil
	}

	key := contextKey{sessionID: sessionID, agent: agentName}

	a.mu.RLock()
	contextID := a.contextIDs[key]
	a.mu.RUnlock()

	start := time.Now()

	event, err := connection.Client.SendMessage(ctx, a2a.MessageSendParams{
		Message: a2a.NewUserTextMessage(task, contextID),
	})
	if err != nil {
		a.logger.Error("host.delegate.send_failed", "agent", agentName, "error", err.Error())
		return nil
	}

	result, ok := event.(*a2a.Task)
	if !ok {
		a.logger.Error("host.delegate.unexpected_result", "agent", agentName, "result", fmt.Sprintf("%T", event))
		return nil
	}

	a.mu.Lock()
	a.contextIDs[key] = result.ContextID
	a.mu.Unlock()

	a.logger.Info(
		"host.delegate.complete",
		"agent", agentName,
		"task_id", result.ID,
		"state", string(result.Status.State),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result
}

// summarize turns the remote agent's output into the reply shown to the user
// and appends it to the session history.
func (a *RoutingAgent) summarize(ctx context.Context, userMessage, agentName, agentOutput, sessionID string) (string, error) {
	if agentOutput == "" {
		agentOutput = "No response"
	}

	req := model.Request{
		Instructions: summaryInstruction,
		Contents: []model.Content{
			model.NewUserContent(fmt.Sprintf(
				"Original user request:\n%s\n\nRemote agent (%s) responded:\n%s",
				userMessage, agentName, agentOutput,
			)),
		},
	}

	resp, err := a.llm.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Content.Text())
	if summary == "" {
		summary = "The remote agent did not provide any additional details."
	}

	if err := a.appendAssistant(sessionID, summary); err != nil {
		return "", err
	}

	return summary, nil
}

func (a *RoutingAgent) appendAssistant(sessionID, text string) error {
	if err := a.history.Append(sessionID, model.NewAssistantContent(text)); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	return nil
}

// extractTaskOutput flattens the reply carried by the task's final status
// message. Text parts pass through verbatim, data parts render as indented
// JSON and file parts as a receipt note; a nil task yields the empty string.
func extractTaskOutput(task *a2a.Task) string {
	if task == nil || task.Status.Message == nil {
		return ""
	}

	texts := make([]string, 0, len(task.Status.Message.Parts))
	for _, part := range task.Status.Message.Parts {
		if text := partText(part); text != "" {
			texts = append(texts, text)
		}
	}

	return strings.Join(texts, "\n")
}

func partText(part a2a.Part) string {
	switch p := part.(type) {
	case a2a.TextPart:
		return p.Text
	case a2a.DataPart:
		data, err := json.MarshalIndent(p.Data, "", "  ")
		if err != nil {
			return ""
		}
		return string(data)
	case a2a.FilePart:
		mimeType := p.File.MimeType
		if mimeType == "" {
			mimeType = "unknown mime type"
		}
		return fmt.Sprintf("Received file content (%s).", mimeType)
	default:
		return ""
	}
}
