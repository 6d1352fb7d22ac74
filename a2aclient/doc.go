// Package a2aclient implements the client side of the A2A protocol: resolving
// agent cards from their well-known location and invoking the JSON-RPC
// methods message/send, message/stream, tasks/get and tasks/cancel.
//
// Design goals:
//   - Mirror the a2asrv wire surface exactly; both sides share the a2a types.
//   - Protocol errors surface as *a2a.Error values so callers can branch on
//     error codes; transport failures stay ordinary wrapped errors.
//   - One pooled HTTP client per remote agent, reused across calls.
package a2aclient
