package weather

import (
	"github.com/davidvonthenen/a2a-simple/a2a"
	"github.com/davidvonthenen/a2a-simple/agent"
	"github.com/davidvonthenen/a2a-simple/logging"
	"github.com/davidvonthenen/a2a-simple/model"
	"github.com/davidvonthenen/a2a-simple/session"
	"github.com/davidvonthenen/a2a-simple/tool"
)

// AgentName is the display name advertised on the agent card.
const AgentName = "Weather Agent"

// Instruction is the system prompt for the weather agent.
const Instruction = "You are a helpful weather assistant. Respond clearly and concisely using only the information you have been provided in the conversation."

// Fallback is returned when the model produces no usable text.
const Fallback = "I was unable to generate a response."

// Temperature pins sampling for reproducible answers. Applied by the binary
// when constructing the provider adapter.
const Temperature = 0.0

// Options configures NewAgent.
type Options struct {
	Tools  []tool.Tool
	Logger logging.Logger
}

// NewAgent builds the weather chat agent on the shared leaf runtime.
func NewAgent(llm model.Model, history session.Store, optFns ...func(o *Options)) *agent.ChatAgent {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return agent.NewChatAgent(AgentName, Instruction, llm, history, func(o *agent.ChatAgentOptions) {
		o.Tools = opts.Tools
		o.Fallback = Fallback
		o.Logger = opts.Logger
	})
}

// Card describes the weather agent to A2A clients. url is the externally
// reachable base address of the service.
func Card(url string) a2a.AgentCard {
	return a2a.AgentCard{
		Name:               AgentName,
		Description:        "Helps with weather",
		URL:                url,
		Version:            "1.0.0",
		Capabilities:       a2a.AgentCapabilities{Streaming: true},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []a2a.AgentSkill{
			{
				ID:          "weather_search",
				Name:        "Search weather",
				Description: "Helps with weather in city, or states",
				Tags:        []string{"weather"},
				Examples:    []string{"weather in LA, CA"},
			},
		},
	}
}
