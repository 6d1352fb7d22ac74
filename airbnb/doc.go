// Package airbnb assembles the accommodation leaf agent: its instruction and
// agent card. The agent has no live listing data and says so; the binary in
// cmd/airbnb-agent wires it onto the shared leaf-agent runtime.
package airbnb
