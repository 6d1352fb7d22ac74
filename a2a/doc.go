// Package a2a defines the wire types for the Agent-to-Agent (A2A) protocol:
// agent cards, messages, tasks, artifacts, streaming events and the JSON-RPC
// envelope that carries them over HTTP.
//
// The package is transport-free. Server-side handling lives in a2asrv and
// client-side access in a2aclient; both share these types so the three
// services interoperate on the exact same JSON shapes.
//
// Polymorphic protocol objects (message parts, RPC results) are closed unions
// discriminated by a "kind" field. Concrete part types implement the
// unexported isPart marker; UnmarshalPart and UnmarshalResult restore the
// concrete Go type from raw JSON.
package a2a
