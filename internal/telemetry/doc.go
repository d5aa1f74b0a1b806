// Package telemetry emits JSONL observability events for the chat host.
//
// Includes:
//   - Emit: one JSON line per event to .mcpchat/events.jsonl, gated by
//     MCPCHAT_OBSERVE_JSON=1.
//   - Query IDs carried in context so events from one query correlate.
package telemetry
