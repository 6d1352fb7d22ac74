package airbnb

import (
	"github.com/davidvonthenen/a2a-simple/a2a"
	"github.com/davidvonthenen/a2a-simple/agent"
	"github.com/davidvonthenen/a2a-simple/logging"
	"github.com/davidvonthenen/a2a-simple/model"
	"github.com/davidvonthenen/a2a-simple/session"
)

// AgentName is the display name advertised on the agent card.
const AgentName = "Airbnb Agent"

// Instruction is the system prompt for the accommodation agent.
const Instruction = "You are a specialized assistant for researching Airbnb accommodations. " +
	"Always be explicit when you do not have live listing data. " +
	"Provide thoughtful suggestions, outline assumptions, and recommend next steps " +
	"the user can take on airbnb.com. Format answers using Markdown."

// Fallback is returned when the model produces no usable text.
const Fallback = "I'm sorry, I was unable to generate a response."

// Temperature keeps suggestions varied but grounded. Applied by the binary
// when constructing the provider adapter.
const Temperature = 0.2

// Options configures NewAgent.
type Options struct {
	Logger logging.Logger
}

// NewAgent builds the accommodation chat agent on the shared leaf runtime.
func NewAgent(llm model.Model, history session.Store, optFns ...func(o *Options)) *agent.ChatAgent {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return agent.NewChatAgent(AgentName, Instruction, llm, history, func(o *agent.ChatAgentOptions) {
		o.Fallback = Fallback
		o.Logger = opts.Logger
	})
}

// Card describes the accommodation agent to A2A clients. url is the
// externally reachable base address of the service.
func Card(url string) a2a.AgentCard {
	modes := []string{"text", "text/plain"}

	return a2a.AgentCard{
		Name:               AgentName,
		Description:        "Helps with searching accommodation",
		URL:                url,
		Version:            "1.0.0",
		Capabilities:       a2a.AgentCapabilities{Streaming: true, PushNotifications: true},
		DefaultInputModes:  modes,
		DefaultOutputModes: modes,
		Skills: []a2a.AgentSkill{
			{
				ID:          "airbnb_search",
				Name:        "Search airbnb accommodation",
				Description: "Helps with accommodation search",
				Tags:        []string{"airbnb accommodation"},
				Examples:    []string{"Please find a room in LA, CA, April 15, 2025, checkout date is april 18, 2 adults"},
			},
		},
	}
}
