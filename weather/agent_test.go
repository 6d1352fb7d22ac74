package weather

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidvonthenen/a2a-simple/model"
	"github.com/davidvonthenen/a2a-simple/session"
	"github.com/davidvonthenen/a2a-simple/tool"
)

func TestAgentUsesInstructionAndFallback(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.EnqueueResponse(model.Response{Content: model.Content{Role: model.RoleAssistant}, FinishReason: "stop"})

	a := NewAgent(llm, session.NewInMemoryStore())

	result, err := a.Invoke(context.Background(), "weather in LA, CA", "ctx-1")
	require.NoError(t, err)
	assert.Equal(t, Fallback, result.Content)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, Instruction, reqs[0].Instructions)
	assert.Empty(t, reqs[0].Tools, "tools are opt-in")
}

func TestAgentForwardsTools(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.EnqueueResponse(model.Response{Content: model.NewAssistantContent("No alerts right now."), FinishReason: "stop"})

	nws := NewNWSClient()
	a := NewAgent(llm, session.NewInMemoryStore(), func(o *Options) {
		o.Tools = []tool.Tool{NewAlertsTool(nws), NewForecastTool(nws, NewGeocoder())}
	})

	result, err := a.Invoke(context.Background(), "any alerts for CA?", "ctx-1")
	require.NoError(t, err)
	assert.Equal(t, "No alerts right now.", result.Content)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Tools, 2)
	assert.Equal(t, AlertsToolName, reqs[0].Tools[0].Name)
	assert.Equal(t, ForecastToolName, reqs[0].Tools[1].Name)
}
