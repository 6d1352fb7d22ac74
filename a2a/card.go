package a2a

// WellKnownCardPath is the HTTP path where an agent publishes its card.
const WellKnownCardPath = "/.well-known/agent.json"

// AgentProvider represents the service provider of an agent.
type AgentProvider struct {
	Organization string `json:"organization"` // Provider organization name
	URL          string `json:"url"`          // Provider URL
}

// AgentCapabilities declares the optional protocol features an agent supports.
// Absent capabilities are treated as unsupported.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming,omitempty"`              // message/stream supported
	PushNotifications      bool `json:"pushNotifications,omitempty"`      // push notification config supported
	StateTransitionHistory bool `json:"stateTransitionHistory,omitempty"` // task history includes transitions
}

// AgentSkill describes one capability of an agent, used by callers (and
// routing models) to decide whether the agent fits a request.
type AgentSkill struct {
	ID          string   `json:"id"`                    // Stable skill identifier
	Name        string   `json:"name"`                  // Human readable name
	Description string   `json:"description"`           // What the skill does
	Tags        []string `json:"tags"`                  // Classification tags
	Examples    []string `json:"examples,omitempty"`    // Example prompts
	InputModes  []string `json:"inputModes,omitempty"`  // Overrides card defaults
	OutputModes []string `json:"outputModes,omitempty"` // Overrides card defaults
}

// AgentCard conveys key information about an agent: identity, service URL,
// supported modalities, protocol capabilities and the set of skills it can
// perform. Agents publish their card at WellKnownCardPath; the host fetches
// it once at startup and treats it as immutable afterwards.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	URL                string            `json:"url"`
	IconURL            string            `json:"iconUrl,omitempty"`
	Provider           *AgentProvider    `json:"provider,omitempty"`
	Version            string            `json:"version"`
	DocumentationURL   string            `json:"documentationUrl,omitempty"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	DefaultInputModes  []string          `json:"defaultInputModes"`
	DefaultOutputModes []string          `json:"defaultOutputModes"`
	Skills             []AgentSkill      `json:"skills"`
}
