// Package agent contains the leaf-agent runtime shared by the weather and
// airbnb services. The package focuses on two concerns:
//
//  1. Model-centric conversational / tool-calling agent (ChatAgent)
//  2. Bridging an agent onto the A2A task lifecycle (Executor)
//
// Design principles:
//   - Minimal hidden global state – explicit wiring via constructor options
//   - One completion per user turn – a bounded tool loop is the only place
//     the model is re-asked within a single invocation
//   - Observability – clear logging hooks around invocations and tool calls
//
// Execution Model:
//   - ChatAgent.Invoke assembles instruction + session history + user query,
//     drives the model (resolving any requested function calls) and appends
//     the exchange to the session store
//   - Executor adapts any Invoker onto a2asrv.Executor: it emits the task,
//     a single result artifact and a final status update per request
//
// The package intentionally keeps session persistence, model specifics and
// tool schemas in their respective packages to avoid cyclic deps.
package agent
