// Package host implements the orchestrating agent that fronts the remote
// leaf agents. RoutingAgent discovers remote agents by their cards, plans
// each user turn with the model (answer directly, ask back, or delegate over
// A2A and summarize the result), and Server exposes that loop through an
// embedded chat page, a websocket stream and a REST endpoint.
package host
