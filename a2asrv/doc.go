// Package a2asrv implements the server side of the A2A protocol: it exposes
// an agent behind the JSON-RPC methods message/send, message/stream, tasks/get
// and tasks/cancel, plus the well-known agent card endpoint.
//
// Design goals:
//   - Transport and agent logic stay separate: agents implement the small
//     Executor interface and never touch HTTP or JSON-RPC envelopes.
//   - Streaming first: executors emit protocol events through an EventQueue;
//     message/send folds the stream into a final result while message/stream
//     forwards each event over SSE.
//   - Task state is tracked per event in a TaskStore so tasks/get always
//     observes the latest snapshot, including mid-execution.
//   - Executor failures degrade to failed tasks rather than broken streams.
package a2asrv
